package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/annel0/blockverse/internal/logging"
	"github.com/annel0/blockverse/internal/vec"
	"github.com/annel0/blockverse/internal/world"
	"github.com/annel0/blockverse/internal/world/block"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

var (
	// ErrNotReady возвращается после закрытия хранилища
	ErrNotReady = errors.New("spill store is not ready")
	// ErrColumnNotFound возвращается при загрузке отсутствующей колонки
	ErrColumnNotFound = errors.New("column not found")
)

// SpillStats счётчики хранилища
type SpillStats struct {
	Columns int   // Колонок в хранилище
	Bytes   int64 // Суммарный сжатый размер
	Saves   uint64
	Loads   uint64
}

// SpillStore временно хранит неактивные колонки мира на диске.
// Каталог принадлежит одной сессии и удаляется при Close.
type SpillStore struct {
	db      *badger.DB
	dir     string
	mutex   sync.RWMutex
	isReady bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	sizes map[vec.Vec2]int
	stats SpillStats

	logger *logging.Logger
}

// OpenSpillStore создаёт новый каталог сессии внутри baseDir и открывает в нём BadgerDB
func OpenSpillStore(baseDir string) (*SpillStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", baseDir, err)
	}
	dir, err := os.MkdirTemp(baseDir, "spill-*")
	if err != nil {
		return nil, fmt.Errorf("ошибка создания каталога сессии: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		db.Close()
		os.RemoveAll(dir)
		return nil, fmt.Errorf("ошибка создания zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		os.RemoveAll(dir)
		return nil, fmt.Errorf("ошибка создания zstd decoder: %w", err)
	}

	return &SpillStore{
		db:      db,
		dir:     dir,
		isReady: true,
		encoder: encoder,
		decoder: decoder,
		sizes:   make(map[vec.Vec2]int),
		logger:  logging.GetStorageLogger(),
	}, nil
}

// Dir возвращает каталог сессии
func (ss *SpillStore) Dir() string {
	return ss.dir
}

// Close закрывает базу и удаляет каталог сессии
func (ss *SpillStore) Close() error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if !ss.isReady {
		return nil
	}
	ss.isReady = false

	ss.encoder.Close()
	ss.decoder.Close()

	err := ss.db.Close()
	if rmErr := os.RemoveAll(ss.dir); rmErr != nil && err == nil {
		err = fmt.Errorf("ошибка удаления каталога %s: %w", ss.dir, rmErr)
	}
	return err
}

func columnKey(coords vec.Vec2) []byte {
	return []byte(fmt.Sprintf("column:%d:%d", coords.X, coords.Z))
}

// encodeColumn упаковывает блоки в little-endian uint16 и сжимает zstd
func (ss *SpillStore) encodeColumn(col *world.Column) []byte {
	raw := make([]byte, 2*len(col.Blocks))
	for i, id := range col.Blocks {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(id))
	}
	return ss.encoder.EncodeAll(raw, nil)
}

func (ss *SpillStore) decodeColumn(coords vec.Vec2, data []byte) (*world.Column, error) {
	raw, err := ss.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки колонки: %w", err)
	}
	if len(raw)%2 != 0 || len(raw)%(2*world.ColumnArea) != 0 {
		return nil, fmt.Errorf("повреждённая колонка: %d байт", len(raw))
	}
	blocks := make([]block.ID, len(raw)/2)
	for i := range blocks {
		blocks[i] = block.ID(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return world.ColumnFromBlocks(coords, blocks), nil
}

// SaveColumn сохраняет колонку
func (ss *SpillStore) SaveColumn(col *world.Column) error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if !ss.isReady {
		return ErrNotReady
	}

	data := ss.encodeColumn(col)
	err := ss.db.Update(func(txn *badger.Txn) error {
		return txn.Set(columnKey(col.Coords), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	ss.stats.Bytes += int64(len(data) - ss.sizes[col.Coords])
	ss.sizes[col.Coords] = len(data)
	ss.stats.Columns = len(ss.sizes)
	ss.stats.Saves++

	ss.logger.Trace("Колонка %v выгружена: %d блоков, %d байт", col.Coords, col.Count(), len(data))
	return nil
}

// LoadColumn загружает колонку
func (ss *SpillStore) LoadColumn(coords vec.Vec2) (*world.Column, error) {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if !ss.isReady {
		return nil, ErrNotReady
	}

	var data []byte
	err := ss.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(columnKey(coords))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%v: %w", coords, ErrColumnNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	col, err := ss.decodeColumn(coords, data)
	if err != nil {
		return nil, fmt.Errorf("колонка %v: %w", coords, err)
	}
	ss.stats.Loads++
	return col, nil
}

// DeleteColumn удаляет колонку
func (ss *SpillStore) DeleteColumn(coords vec.Vec2) error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if !ss.isReady {
		return ErrNotReady
	}

	err := ss.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(columnKey(coords))
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления из BadgerDB: %w", err)
	}

	ss.stats.Bytes -= int64(ss.sizes[coords])
	delete(ss.sizes, coords)
	ss.stats.Columns = len(ss.sizes)
	return nil
}

// Stats возвращает снимок счётчиков
func (ss *SpillStore) Stats() SpillStats {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()
	return ss.stats
}
