package physics

import (
	"math"

	"github.com/annel0/blockverse/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// Occupancy отвечает, является ли ячейка мира препятствием
type Occupancy interface {
	IsSolid(x, y, z int) bool
	Height() int
}

// BoxCollider вертикальный параллелепипед, нижняя грань которого стоит в позиции тела
type BoxCollider struct {
	HalfWidth float64 // Половина ширины по X и Z
	Height    float64 // Высота по Y
}

// NewBoxCollider создаёт новый коллайдер с указанными размерами
func NewBoxCollider(halfWidth, height float64) *BoxCollider {
	return &BoxCollider{
		HalfWidth: halfWidth,
		Height:    height,
	}
}

// Bounds возвращает углы коллайдера в позиции pos
func (bc *BoxCollider) Bounds(pos mgl64.Vec3) (min, max mgl64.Vec3) {
	min = mgl64.Vec3{pos.X() - bc.HalfWidth, pos.Y(), pos.Z() - bc.HalfWidth}
	max = mgl64.Vec3{pos.X() + bc.HalfWidth, pos.Y() + bc.Height, pos.Z() + bc.HalfWidth}
	return min, max
}

// cellSpan возвращает диапазон целых ячеек, которые пересекает отрезок [lo, hi).
// Грань ровно на границе ячейки эту ячейку не задевает.
func cellSpan(lo, hi float64) (int, int) {
	return int(math.Floor(lo)), int(math.Ceil(hi)) - 1
}

// Cells возвращает диапазон ячеек под коллайдером; y ограничен [0, worldHeight-1].
// ok == false, если по высоте коллайдер целиком вне мира.
func (bc *BoxCollider) Cells(pos mgl64.Vec3, worldHeight int) (lo, hi vec.Vec3, ok bool) {
	min, max := bc.Bounds(pos)

	lo.X, hi.X = cellSpan(min.X(), max.X())
	lo.Y, hi.Y = cellSpan(min.Y(), max.Y())
	lo.Z, hi.Z = cellSpan(min.Z(), max.Z())

	if lo.Y < 0 {
		lo.Y = 0
	}
	if hi.Y > worldHeight-1 {
		hi.Y = worldHeight - 1
	}
	return lo, hi, lo.Y <= hi.Y
}

// OverlapsCell проверяет, пересекает ли коллайдер в позиции pos ячейку cell
func (bc *BoxCollider) OverlapsCell(pos mgl64.Vec3, cell vec.Vec3) bool {
	min, max := bc.Bounds(pos)
	return min.X() < float64(cell.X+1) && max.X() > float64(cell.X) &&
		min.Y() < float64(cell.Y+1) && max.Y() > float64(cell.Y) &&
		min.Z() < float64(cell.Z+1) && max.Z() > float64(cell.Z)
}

// Intersects проверяет, задевает ли коллайдер в позиции pos хотя бы одно препятствие
func Intersects(occ Occupancy, pos mgl64.Vec3, collider *BoxCollider) bool {
	lo, hi, ok := collider.Cells(pos, occ.Height())
	if !ok {
		return false
	}
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				if occ.IsSolid(x, y, z) {
					return true
				}
			}
		}
	}
	return false
}
