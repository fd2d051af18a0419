package world

import (
	"github.com/annel0/blockverse/internal/vec"
	"github.com/annel0/blockverse/internal/world/block"
)

// ColumnArea количество ячеек в одном горизонтальном срезе колонки
const ColumnArea = vec.ChunkSize * vec.ChunkSize

// Column хранит блоки одного чанка: 16x16xHeight, плотный массив.
// Индекс ячейки: (y*16+z)*16+x, AirID означает отсутствие блока.
type Column struct {
	Coords vec.Vec2   // Координаты чанка в мире
	Blocks []block.ID // len == ColumnArea*height

	count int // Количество непустых ячеек
}

// NewColumn создаёт пустую колонку для указанного чанка
func NewColumn(coords vec.Vec2, height int) *Column {
	return &Column{
		Coords: coords,
		Blocks: make([]block.ID, ColumnArea*height),
	}
}

// ColumnFromBlocks восстанавливает колонку из сохранённого массива
func ColumnFromBlocks(coords vec.Vec2, blocks []block.ID) *Column {
	c := &Column{Coords: coords, Blocks: blocks}
	for _, id := range blocks {
		if id != block.AirID {
			c.count++
		}
	}
	return c
}

func columnIndex(local vec.Vec3) int {
	return (local.Y*vec.ChunkSize+local.Z)*vec.ChunkSize + local.X
}

func localFromIndex(i int) vec.Vec3 {
	return vec.Vec3{
		X: i % vec.ChunkSize,
		Z: (i / vec.ChunkSize) % vec.ChunkSize,
		Y: i / ColumnArea,
	}
}

// Get возвращает блок по локальным координатам
func (c *Column) Get(local vec.Vec3) block.ID {
	return c.Blocks[columnIndex(local)]
}

// Set записывает блок по локальным координатам и возвращает предыдущее значение
func (c *Column) Set(local vec.Vec3, id block.ID) block.ID {
	i := columnIndex(local)
	prev := c.Blocks[i]
	c.Blocks[i] = id

	if prev == block.AirID && id != block.AirID {
		c.count++
	} else if prev != block.AirID && id == block.AirID {
		c.count--
	}
	return prev
}

// Count возвращает количество непустых ячеек
func (c *Column) Count() int {
	return c.count
}

// Height возвращает высоту колонки
func (c *Column) Height() int {
	return len(c.Blocks) / ColumnArea
}

// ForEach вызывает fn для каждого непустого блока в мировых координатах
func (c *Column) ForEach(fn func(pos vec.Vec3, id block.ID)) {
	if c.count == 0 {
		return
	}
	origin := c.Coords.Origin()
	for i, id := range c.Blocks {
		if id == block.AirID {
			continue
		}
		local := localFromIndex(i)
		fn(vec.Vec3{X: origin.X + local.X, Y: local.Y, Z: origin.Z + local.Z}, id)
	}
}
