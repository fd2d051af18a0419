package vec

// ChunkShift log2 размера чанка по горизонтали
const ChunkShift = 4

// ChunkSize сторона чанка в блоках (16)
const ChunkSize = 1 << ChunkShift

// Vec2 представляет координаты чанка на горизонтальной плоскости
type Vec2 struct {
	X, Z int
}

// Add возвращает координаты, сдвинутые на (dx, dz)
func (v Vec2) Add(dx, dz int) Vec2 {
	return Vec2{X: v.X + dx, Z: v.Z + dz}
}

// Origin возвращает мировые координаты угла чанка с минимальными X/Z (y = 0)
func (v Vec2) Origin() Vec3 {
	return Vec3{X: v.X << ChunkShift, Y: 0, Z: v.Z << ChunkShift}
}

// ChebyshevDistance возвращает расстояние в чанках по "квадратной" метрике.
// Окно прорисовки радиуса R содержит все чанки с расстоянием <= R.
func (v Vec2) ChebyshevDistance(other Vec2) int {
	dx := v.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dz := v.Z - other.Z
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// Less задаёт детерминированный порядок обхода чанков (сначала X, потом Z)
func (v Vec2) Less(other Vec2) bool {
	if v.X != other.X {
		return v.X < other.X
	}
	return v.Z < other.Z
}
