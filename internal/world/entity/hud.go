package entity

import (
	"github.com/annel0/blockverse/internal/world/block"
	"github.com/go-gl/mathgl/mgl64"
)

// HUD неизменяемый снимок состояния игрока для отображения
type HUD struct {
	Health    int              `json:"health"`
	Hunger    int              `json:"hunger"`
	Selected  block.ID         `json:"selected"`
	Slot      int              `json:"slot"`
	Hotbar    []block.ID       `json:"hotbar"`
	Inventory map[block.ID]int `json:"inventory"`
	Position  mgl64.Vec3       `json:"position"`
	Grounded  bool             `json:"grounded"`
}
