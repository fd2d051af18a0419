package input

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrUnknownIntent возвращается при разборе неизвестного типа намерения
var ErrUnknownIntent = errors.New("unknown intent")

// Intent уже интерпретированное действие игрока
type Intent interface {
	intent()
}

// Direction направление движения
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
	Left     Direction = "left"
	Right    Direction = "right"
)

// MoveKey нажатие или отпускание клавиши движения
type MoveKey struct {
	Dir  Direction `json:"dir"`
	Down bool      `json:"down"`
}

// Look поворот камеры вокруг вертикальной оси (радианы)
type Look struct {
	Yaw float64 `json:"yaw"`
}

// Jump прыжок
type Jump struct{}

// SelectSlot выбор ячейки панели быстрого доступа (1..N)
type SelectSlot struct {
	Index int `json:"index"`
}

// PrimaryInteract поставить выбранный блок
type PrimaryInteract struct{}

// SecondaryInteract сломать блок под прицелом
type SecondaryInteract struct{}

// Craft применить рецепт
type Craft struct {
	RecipeID string `json:"recipe"`
}

func (MoveKey) intent()           {}
func (Look) intent()              {}
func (Jump) intent()              {}
func (SelectSlot) intent()        {}
func (PrimaryInteract) intent()   {}
func (SecondaryInteract) intent() {}
func (Craft) intent()             {}

// Envelope — JSON-представление намерения: {"type": "...", "data": {...}}
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Decode преобразует конверт в намерение
func (e Envelope) Decode() (Intent, error) {
	var target Intent
	switch e.Type {
	case "move":
		target = &MoveKey{}
	case "look":
		target = &Look{}
	case "jump":
		return Jump{}, nil
	case "select":
		target = &SelectSlot{}
	case "place":
		return PrimaryInteract{}, nil
	case "break":
		return SecondaryInteract{}, nil
	case "craft":
		target = &Craft{}
	default:
		return nil, fmt.Errorf("%q: %w", e.Type, ErrUnknownIntent)
	}

	if len(e.Data) > 0 {
		if err := json.Unmarshal(e.Data, target); err != nil {
			return nil, fmt.Errorf("разбор намерения %s: %w", e.Type, err)
		}
	}

	switch v := target.(type) {
	case *MoveKey:
		switch v.Dir {
		case Forward, Backward, Left, Right:
		default:
			return nil, fmt.Errorf("направление %q: %w", v.Dir, ErrUnknownIntent)
		}
		return *v, nil
	case *Look:
		return *v, nil
	case *SelectSlot:
		return *v, nil
	case *Craft:
		return *v, nil
	}
	return nil, fmt.Errorf("%q: %w", e.Type, ErrUnknownIntent)
}

// DecodeJSON разбирает одно намерение из JSON
func DecodeJSON(data []byte) (Intent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("разбор конверта: %w", err)
	}
	return env.Decode()
}

// MovementState хранит зажатые клавиши движения
type MovementState struct {
	Forward, Backward, Left, Right bool
}

// Apply учитывает нажатие или отпускание клавиши
func (m *MovementState) Apply(k MoveKey) {
	switch k.Dir {
	case Forward:
		m.Forward = k.Down
	case Backward:
		m.Backward = k.Down
	case Left:
		m.Left = k.Down
	case Right:
		m.Right = k.Down
	}
}

// Vector возвращает нормированное горизонтальное направление движения при
// повороте yaw; ноль, если клавиши не зажаты или гасят друг друга.
func (m MovementState) Vector(yaw float64) mgl64.Vec3 {
	sin, cos := math.Sincos(yaw)
	forward := mgl64.Vec3{-sin, 0, -cos}
	right := mgl64.Vec3{cos, 0, -sin}

	var dir mgl64.Vec3
	if m.Forward {
		dir = dir.Add(forward)
	}
	if m.Backward {
		dir = dir.Sub(forward)
	}
	if m.Right {
		dir = dir.Add(right)
	}
	if m.Left {
		dir = dir.Sub(right)
	}

	if dir.Len() < 1e-9 {
		return mgl64.Vec3{}
	}
	return dir.Normalize()
}
