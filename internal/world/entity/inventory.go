package entity

import (
	"github.com/annel0/blockverse/internal/world/block"
)

// Inventory хранит количество ресурсов каждого вида. Счётчики неотрицательны.
type Inventory struct {
	counts map[block.ID]int
}

// NewInventory создаёт инвентарь с начальным набором ресурсов
func NewInventory(start map[block.ID]int) *Inventory {
	inv := &Inventory{counts: make(map[block.ID]int, len(start))}
	for id, n := range start {
		if n > 0 {
			inv.counts[id] = n
		}
	}
	return inv
}

// Count возвращает количество ресурса
func (inv *Inventory) Count(id block.ID) int {
	return inv.counts[id]
}

// Add добавляет n единиц ресурса
func (inv *Inventory) Add(id block.ID, n int) {
	if n <= 0 {
		return
	}
	inv.counts[id] += n
}

// Take забирает n единиц ресурса; при нехватке ничего не меняет
func (inv *Inventory) Take(id block.ID, n int) bool {
	if n <= 0 || inv.counts[id] < n {
		return false
	}
	inv.counts[id] -= n
	if inv.counts[id] == 0 {
		delete(inv.counts, id)
	}
	return true
}

// Covers проверяет, что в инвентаре достаточно всех ресурсов
func (inv *Inventory) Covers(need map[block.ID]int) bool {
	for id, n := range need {
		if inv.counts[id] < n {
			return false
		}
	}
	return true
}

// Apply атомарно применяет рецепт: либо списывает все входы и начисляет
// все выходы, либо не меняет ничего
func (inv *Inventory) Apply(r Recipe) bool {
	if !inv.Covers(r.Inputs) {
		return false
	}
	for id, n := range r.Inputs {
		inv.Take(id, n)
	}
	for id, n := range r.Outputs {
		inv.Add(id, n)
	}
	return true
}

// Snapshot возвращает копию содержимого
func (inv *Inventory) Snapshot() map[block.ID]int {
	out := make(map[block.ID]int, len(inv.counts))
	for id, n := range inv.counts {
		out[id] = n
	}
	return out
}
