package entity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/blockverse/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceRNG возвращает значения по кругу
type sequenceRNG struct {
	values []float64
	i      int
}

func (s *sequenceRNG) Float64() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func TestInventoryTake(t *testing.T) {
	inv := NewInventory(map[block.ID]int{block.DirtID: 2, block.SandID: 0})

	assert.Equal(t, 0, inv.Count(block.SandID))
	assert.False(t, inv.Take(block.DirtID, 3))
	assert.Equal(t, 2, inv.Count(block.DirtID))

	require.True(t, inv.Take(block.DirtID, 2))
	assert.Equal(t, 0, inv.Count(block.DirtID))
	assert.Empty(t, inv.Snapshot(), "Нулевые счётчики не хранятся")

	inv.Add(block.StoneID, -5)
	assert.Equal(t, 0, inv.Count(block.StoneID))
}

func TestInventorySnapshotIsCopy(t *testing.T) {
	inv := NewInventory(map[block.ID]int{block.WoodID: 1})
	snap := inv.Snapshot()
	snap[block.WoodID] = 100

	assert.Equal(t, 1, inv.Count(block.WoodID))
}

func TestApplyAtomic(t *testing.T) {
	inv := NewInventory(map[block.ID]int{block.CoalOreID: 3})
	torch, ok := DefaultRecipes().Get("torch")
	require.True(t, ok)

	assert.False(t, inv.Apply(torch))
	assert.Equal(t, map[block.ID]int{block.CoalOreID: 3}, inv.Snapshot())
}

func TestParseRecipeBook(t *testing.T) {
	data := `
recipes:
  planks:
    inputs: {wood: 1}
    outputs: {planks: 4}
  ladder:
    inputs: {stick: 7}
    outputs: {planks: 1}
`
	book, err := ParseRecipeBook([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"ladder", "planks"}, book.IDs())

	r, ok := book.Get("ladder")
	require.True(t, ok)
	assert.Equal(t, "ladder", r.ID)
	assert.Equal(t, map[block.ID]int{block.StickID: 7}, r.Inputs)
}

func TestParseRecipeBookErrors(t *testing.T) {
	cases := map[string]string{
		"unknown block": "recipes:\n  x:\n    inputs: {diamond: 1}\n    outputs: {planks: 1}\n",
		"zero count":    "recipes:\n  x:\n    inputs: {wood: 0}\n    outputs: {planks: 1}\n",
		"no outputs":    "recipes:\n  x:\n    inputs: {wood: 1}\n",
		"empty":         "recipes: {}\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRecipeBook([]byte(data))
			assert.Error(t, err)
		})
	}

	_, err := ParseRecipeBook([]byte("recipes:\n  x:\n    inputs: {wood: -1}\n    outputs: {planks: 1}\n"))
	assert.ErrorIs(t, err, ErrInvalidRecipe)
}

func TestLoadRecipeBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recipes:\n  sticks:\n    inputs: {planks: 2}\n    outputs: {stick: 4}\n"), 0644))

	book, err := LoadRecipeBook(path)
	require.NoError(t, err)
	_, ok := book.Get("sticks")
	assert.True(t, ok)

	_, err = LoadRecipeBook(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestVitalsBounds(t *testing.T) {
	params := VitalsParams{HungerDecayChance: 0.002, StarveChance: 0.001}
	v := FullVitals()

	// Всегда выпадает: сытость падает до нуля, затем здоровье
	rng := &sequenceRNG{values: []float64{0}}
	died := false
	for i := 0; i < 100 && !died; i++ {
		died = v.Tick(rng, params)
		assert.GreaterOrEqual(t, v.Hunger, 0)
		assert.LessOrEqual(t, v.Hunger, MaxVitals)
		assert.GreaterOrEqual(t, v.Health, 0)
	}
	assert.True(t, died)
	assert.Equal(t, 0, v.Hunger)
	assert.Equal(t, 0, v.Health)
}

func TestVitalsProbabilities(t *testing.T) {
	params := VitalsParams{HungerDecayChance: 0.002, StarveChance: 0.001}

	v := FullVitals()
	assert.False(t, v.Tick(&sequenceRNG{values: []float64{0.0025}}, params))
	assert.Equal(t, MaxVitals, v.Hunger, "0.0025 выше порога голода")

	assert.False(t, v.Tick(&sequenceRNG{values: []float64{0.0015}}, params))
	assert.Equal(t, MaxVitals-1, v.Hunger)
	assert.Equal(t, MaxVitals, v.Health, "Пока сытость не ноль, здоровье не падает")

	v = Vitals{Health: 10, Hunger: 0}
	v.Tick(&sequenceRNG{values: []float64{0.0015}}, params)
	assert.Equal(t, 10, v.Health, "0.0015 выше порога истощения")
	v.Tick(&sequenceRNG{values: []float64{0.0005}}, params)
	assert.Equal(t, 9, v.Health)
}

func TestVitalsDamage(t *testing.T) {
	v := FullVitals()
	assert.False(t, v.Damage(4))
	assert.Equal(t, 16, v.Health)

	assert.True(t, v.Damage(100))
	assert.Equal(t, 0, v.Health)

	v.Reset()
	assert.Equal(t, FullVitals(), v)
}
