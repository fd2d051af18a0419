package world

import (
	"fmt"

	"github.com/annel0/blockverse/internal/logging"
	"github.com/annel0/blockverse/internal/vec"
	"github.com/annel0/blockverse/internal/world/block"
)

// ColumnBackend хранит колонки, временно выгруженные из памяти
type ColumnBackend interface {
	SaveColumn(col *Column) error
	LoadColumn(coords vec.Vec2) (*Column, error)
	DeleteColumn(coords vec.Vec2) error
}

// Store хранит все блоки мира: (x,y,z) -> вид блока, отсутствие означает воздух.
// Проверяется только диапазон y; x и z не ограничены.
// Не потокобезопасен: все изменения выполняются в горутине тика.
type Store struct {
	height  int
	columns map[vec.Vec2]*Column
	evicted map[vec.Vec2]struct{}
	backend ColumnBackend
	blocks  int

	logger *logging.Logger
}

// NewStore создаёт пустое хранилище мира высотой height
func NewStore(height int) *Store {
	return &Store{
		height:  height,
		columns: make(map[vec.Vec2]*Column),
		evicted: make(map[vec.Vec2]struct{}),
		logger:  logging.GetWorldLogger(),
	}
}

// SetBackend подключает хранилище для выгрузки неактивных колонок
func (s *Store) SetBackend(backend ColumnBackend) {
	s.backend = backend
}

// Height возвращает высоту мира
func (s *Store) Height() int {
	return s.height
}

// InBounds проверяет, что y лежит в [0, Height)
func (s *Store) InBounds(y int) bool {
	return y >= 0 && y < s.height
}

// column возвращает колонку чанка. Выгруженная колонка восстанавливается;
// при create == true отсутствующая колонка создаётся.
// Если восстановить не удалось, возвращает nil и колонка остаётся выгруженной.
func (s *Store) column(coords vec.Vec2, create bool) *Column {
	if col, ok := s.columns[coords]; ok {
		return col
	}
	if _, ok := s.evicted[coords]; ok {
		if err := s.Restore(coords); err != nil {
			s.logger.Error("Не удалось восстановить колонку %v: %v", coords, err)
			return nil
		}
		return s.columns[coords]
	}
	if !create {
		return nil
	}
	col := NewColumn(coords, s.height)
	s.columns[coords] = col
	return col
}

// Get возвращает вид блока и true, если позиция занята
func (s *Store) Get(pos vec.Vec3) (block.ID, bool) {
	if !s.InBounds(pos.Y) {
		return block.AirID, false
	}
	col := s.column(pos.ToChunkCoords(), false)
	if col == nil {
		return block.AirID, false
	}
	id := col.Get(pos.LocalInChunk())
	return id, id != block.AirID
}

// Set записывает блок. Запись воздуха равносильна Remove, y вне мира игнорируется.
// Возвращает false, если запись не выполнена: y вне мира или выгруженная
// колонка не восстановилась.
func (s *Store) Set(pos vec.Vec3, id block.ID) bool {
	if !s.InBounds(pos.Y) {
		return false
	}
	if id == block.AirID {
		s.Remove(pos)
		return true
	}
	col := s.column(pos.ToChunkCoords(), true)
	if col == nil {
		s.logger.Warn("Запись %s в %v пропущена: колонка недоступна", id, pos)
		return false
	}
	s.write(col, pos, id)
	return true
}

// SetIfAbsent записывает блок, только если позиция свободна.
// Генерация мира пишет исключительно через этот метод.
func (s *Store) SetIfAbsent(pos vec.Vec3, id block.ID) bool {
	if !s.InBounds(pos.Y) || id == block.AirID {
		return false
	}
	col := s.column(pos.ToChunkCoords(), true)
	if col == nil || col.Get(pos.LocalInChunk()) != block.AirID {
		return false
	}
	s.write(col, pos, id)
	return true
}

// Remove удаляет блок и возвращает удалённый вид
func (s *Store) Remove(pos vec.Vec3) (block.ID, bool) {
	if !s.InBounds(pos.Y) {
		return block.AirID, false
	}
	col := s.column(pos.ToChunkCoords(), false)
	if col == nil {
		return block.AirID, false
	}
	prev := col.Set(pos.LocalInChunk(), block.AirID)
	if prev == block.AirID {
		return block.AirID, false
	}
	s.blocks--
	return prev, true
}

func (s *Store) write(col *Column, pos vec.Vec3, id block.ID) {
	if prev := col.Set(pos.LocalInChunk(), id); prev == block.AirID {
		s.blocks++
	}
}

// IsSolid сообщает, является ли ячейка препятствием для движения
func (s *Store) IsSolid(x, y, z int) bool {
	id, ok := s.Get(vec.Vec3{X: x, Y: y, Z: z})
	return ok && block.IsSolid(id)
}

// ForEachInChunk обходит все непустые блоки чанка
func (s *Store) ForEachInChunk(coords vec.Vec2, fn func(pos vec.Vec3, id block.ID)) {
	if col := s.column(coords, false); col != nil {
		col.ForEach(fn)
	}
}

// HighestSolid возвращает y самого верхнего твёрдого блока в столбце (x, z)
func (s *Store) HighestSolid(x, z int) (int, bool) {
	for y := s.height - 1; y >= 0; y-- {
		if s.IsSolid(x, y, z) {
			return y, true
		}
	}
	return 0, false
}

// BlockCount возвращает количество блоков в памяти
func (s *Store) BlockCount() int {
	return s.blocks
}

// ColumnCount возвращает количество колонок в памяти
func (s *Store) ColumnCount() int {
	return len(s.columns)
}

// EvictedCount возвращает количество выгруженных колонок
func (s *Store) EvictedCount() int {
	return len(s.evicted)
}

// IsEvicted сообщает, выгружена ли колонка
func (s *Store) IsEvicted(coords vec.Vec2) bool {
	_, ok := s.evicted[coords]
	return ok
}

// Evict переносит колонку в подключённое хранилище. Без хранилища ничего не делает.
func (s *Store) Evict(coords vec.Vec2) error {
	col, ok := s.columns[coords]
	if !ok || s.backend == nil {
		return nil
	}
	if err := s.backend.SaveColumn(col); err != nil {
		return fmt.Errorf("выгрузка колонки %v: %w", coords, err)
	}
	delete(s.columns, coords)
	s.evicted[coords] = struct{}{}
	s.blocks -= col.Count()
	return nil
}

// Restore возвращает выгруженную колонку в память
func (s *Store) Restore(coords vec.Vec2) error {
	if _, ok := s.evicted[coords]; !ok {
		return nil
	}
	if s.backend == nil {
		return fmt.Errorf("колонка %v выгружена, но хранилище не подключено", coords)
	}
	col, err := s.backend.LoadColumn(coords)
	if err != nil {
		return fmt.Errorf("загрузка колонки %v: %w", coords, err)
	}
	if col.Height() != s.height {
		return fmt.Errorf("колонка %v: высота %d, ожидалась %d", coords, col.Height(), s.height)
	}
	delete(s.evicted, coords)
	s.columns[coords] = col
	s.blocks += col.Count()

	if err := s.backend.DeleteColumn(coords); err != nil {
		s.logger.Warn("Не удалось удалить выгруженную колонку %v: %v", coords, err)
	}
	return nil
}
