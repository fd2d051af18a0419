package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Body подвижное тело: позиция нижней грани и скорость в блоках за тик
type Body struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Grounded bool
}

// Params параметры интегрирования
type Params struct {
	Gravity float64 // Ускорение вниз, блоков за тик²
}

// StepResult описывает, что произошло за тик
type StepResult struct {
	BlockedX bool
	BlockedZ bool
	Landed   bool // Тело опустилось на опору в этом тике
	HeadBump bool
	FellOut  bool // Нижняя грань ушла ниже y = 0
}

// Step продвигает тело на один тик. Оси обрабатываются по очереди: X, Z, Y.
// На X и Z перемещение при столкновении отменяется целиком, без скольжения.
// Скорость падения не ограничивается.
func Step(occ Occupancy, body *Body, collider *BoxCollider, params Params) StepResult {
	var res StepResult

	candidate := body.Position
	candidate[0] += body.Velocity.X()
	if body.Velocity.X() != 0 {
		if Intersects(occ, candidate, collider) {
			body.Velocity[0] = 0
			res.BlockedX = true
		} else {
			body.Position = candidate
		}
	}

	candidate = body.Position
	candidate[2] += body.Velocity.Z()
	if body.Velocity.Z() != 0 {
		if Intersects(occ, candidate, collider) {
			body.Velocity[2] = 0
			res.BlockedZ = true
		} else {
			body.Position = candidate
		}
	}

	body.Velocity[1] -= params.Gravity
	candidate = body.Position
	candidate[1] += body.Velocity.Y()

	switch {
	case !Intersects(occ, candidate, collider):
		body.Position = candidate
		body.Grounded = false
	case body.Velocity.Y() < 0:
		wasGrounded := body.Grounded
		body.Position[1] = restingHeight(occ, body.Position, collider)
		body.Velocity[1] = 0
		body.Grounded = true
		res.Landed = !wasGrounded
	default:
		body.Velocity[1] = 0
		res.HeadBump = true
	}

	res.FellOut = body.Position.Y() < 0
	return res
}

// restingHeight ищет под телом самое высокое препятствие в пределах площади
// коллайдера, начиная с ячейки ног. Возвращает высоту над ним или 0, если опоры нет.
func restingHeight(occ Occupancy, pos mgl64.Vec3, collider *BoxCollider) float64 {
	min, max := collider.Bounds(pos)
	x0, x1 := cellSpan(min.X(), max.X())
	z0, z1 := cellSpan(min.Z(), max.Z())

	top := int(math.Floor(pos.Y()))
	if top > occ.Height()-1 {
		top = occ.Height() - 1
	}
	for y := top; y >= 0; y-- {
		for x := x0; x <= x1; x++ {
			for z := z0; z <= z1; z++ {
				if occ.IsSolid(x, y, z) {
					return float64(y + 1)
				}
			}
		}
	}
	return 0
}
