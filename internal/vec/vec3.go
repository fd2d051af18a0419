package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 представляет целочисленные координаты блока в мире
type Vec3 struct {
	X int
	Y int
	Z int
}

// ToChunkCoords преобразует мировые координаты блока в координаты чанка.
// Арифметический сдвиг корректно округляет отрицательные координаты вниз.
func (v Vec3) ToChunkCoords() Vec2 {
	return Vec2{X: v.X >> ChunkShift, Z: v.Z >> ChunkShift}
}

// LocalInChunk возвращает координаты внутри чанка (Y не меняется)
func (v Vec3) LocalInChunk() Vec3 {
	return Vec3{X: v.X & (ChunkSize - 1), Y: v.Y, Z: v.Z & (ChunkSize - 1)}
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// IsUnitAxis возвращает true для нормали грани: ровно одна компонента равна ±1
func (v Vec3) IsUnitAxis() bool {
	abs := func(a int) int {
		if a < 0 {
			return -a
		}
		return a
	}
	return abs(v.X)+abs(v.Y)+abs(v.Z) == 1
}

// Float возвращает угол блока с минимальными координатами как mgl64.Vec3
func (v Vec3) Float() mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

// Floor возвращает блок, в котором лежит точка p
func Floor(p mgl64.Vec3) Vec3 {
	return Vec3{
		X: int(math.Floor(p.X())),
		Y: int(math.Floor(p.Y())),
		Z: int(math.Floor(p.Z())),
	}
}
