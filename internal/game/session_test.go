package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/annel0/blockverse/internal/config"
	"github.com/annel0/blockverse/internal/input"
	"github.com/annel0/blockverse/internal/observability"
	"github.com/annel0/blockverse/internal/render"
	"github.com/annel0/blockverse/internal/vec"
	"github.com/annel0/blockverse/internal/world/block"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// neverRNG не даёт голоду срабатывать
type neverRNG struct{}

func (neverRNG) Float64() float64 { return 1 }

func newTestSession(t *testing.T, cfg *config.Config, opts ...Option) *Session {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	opts = append([]Option{WithRNG(neverRNG{})}, opts...)
	s, err := NewSession(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// sumMetric суммирует значения всех серий метрики
func sumMetric(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
	}
	return total
}

func TestSessionSpawnOnSurface(t *testing.T) {
	s := newTestSession(t, nil)

	top, ok := s.Store().HighestSolid(0, 0)
	require.True(t, ok)
	spawn := mgl64.Vec3{0.5, float64(top + 1), 0.5}
	assert.Equal(t, spawn, s.Player().Spawn())
	assert.Equal(t, spawn, s.Player().Body.Position)

	radius := s.cfg.World.ChunkRadius
	assert.Equal(t, (2*radius+1)*(2*radius+1), s.Chunks().ActiveCount())
	assert.NotEmpty(t, s.ID())

	for i := 0; i < 30; i++ {
		require.NoError(t, s.Tick())
	}
	assert.True(t, s.Player().Body.Grounded, "Игрок стоит на поверхности")
	assert.InDelta(t, spawn.Y(), s.Player().Body.Position.Y(), 1e-9)
	assert.Equal(t, uint64(30), s.Ticks())
}

func TestSessionAdvanceFixedStep(t *testing.T) {
	s := newTestSession(t, nil)

	steps, err := s.Advance(50 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, steps)

	// Секунда задержки ограничена лимитом шагов за вызов
	steps, err = s.Advance(time.Second)
	require.NoError(t, err)
	assert.Equal(t, s.cfg.Physics.MaxStepsPerAdvance, steps)

	steps, err = s.Advance(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0, steps, "Отброшенный остаток не копится")

	assert.Equal(t, uint64(3+s.cfg.Physics.MaxStepsPerAdvance), s.Ticks())
}

func TestSessionIntents(t *testing.T) {
	s := newTestSession(t, nil)

	s.Submit(input.SelectSlot{Index: 3})
	s.Submit(input.SelectSlot{Index: 42})
	s.Submit(input.Craft{RecipeID: "planks"})
	s.Submit(input.Craft{RecipeID: "torch"})
	s.Submit(input.Look{Yaw: 1.5})
	require.NoError(t, s.Tick())

	hud := s.HUD()
	assert.Equal(t, block.StoneID, hud.Selected)
	assert.Equal(t, 3, hud.Slot)
	assert.Equal(t, 31, hud.Inventory[block.WoodID])
	assert.Equal(t, 4, hud.Inventory[block.PlanksID])
	assert.Equal(t, 0, hud.Inventory[block.TorchID], "Без угля и палок факел не создаётся")
	assert.Equal(t, 1.5, s.Player().Yaw)
}

func TestSessionPlaceAndBreak(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := render.NewRecorder()
	aim := &render.StaticAim{}
	s := newTestSession(t, nil,
		WithRenderer(recorder),
		WithAimer(aim),
		WithMetrics(observability.NewMetrics(reg)))

	y, ok := s.Store().HighestSolid(5, 5)
	require.True(t, ok)
	top := vec.Vec3{X: 5, Y: y, Z: 5}
	kind, ok := s.Store().Get(top)
	require.True(t, ok)
	before := s.HUD().Inventory[kind]

	// Без прицела ничего не происходит
	s.Submit(input.SecondaryInteract{})
	require.NoError(t, s.Tick())
	_, ok = s.Store().Get(top)
	assert.True(t, ok)

	aim.Set(render.Aim{Pos: top, Kind: kind, Normal: vec.Vec3{Y: 1}})
	s.Submit(input.SecondaryInteract{})
	require.NoError(t, s.Tick())

	_, ok = s.Store().Get(top)
	assert.False(t, ok, "Блок сломан")
	assert.Equal(t, before+1, s.HUD().Inventory[kind])
	_, drawn := recorder.At(top)
	assert.False(t, drawn)

	below := vec.Vec3{X: 5, Y: y - 1, Z: 5}
	belowKind, _ := s.Store().Get(below)
	aim.Set(render.Aim{Pos: below, Kind: belowKind, Normal: vec.Vec3{Y: 1}})
	s.Submit(input.SelectSlot{Index: 2})
	s.Submit(input.PrimaryInteract{})
	require.NoError(t, s.Tick())

	placed, ok := s.Store().Get(top)
	require.True(t, ok)
	assert.Equal(t, block.DirtID, placed)
	d, drawn := recorder.At(top)
	require.True(t, drawn)
	assert.Equal(t, block.DirtID, d.Kind)
	assert.Equal(t, 63, s.HUD().Inventory[block.DirtID])

	// Клетка занята: повторная установка отклоняется
	s.Submit(input.PrimaryInteract{})
	require.NoError(t, s.Tick())
	assert.Equal(t, 63, s.HUD().Inventory[block.DirtID])

	// 2 ломания, выбор слота, 2 установки
	assert.Equal(t, 5.0, sumMetric(t, reg, "blockverse_actions_total"))
}

func TestSessionMetricsPublished(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newTestSession(t, nil, WithMetrics(observability.NewMetrics(reg)))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Tick())
	}
	assert.Equal(t, 3.0, sumMetric(t, reg, "blockverse_ticks_total"))
	assert.Equal(t, float64(s.Chunks().ActiveCount()), sumMetric(t, reg, "blockverse_chunks_active"))
	assert.Equal(t, float64(s.Store().BlockCount()), sumMetric(t, reg, "blockverse_blocks_stored"))
	assert.Equal(t, 20.0, sumMetric(t, reg, "blockverse_player_health"))
}

func TestSessionPrefetch(t *testing.T) {
	cfg := config.Default()
	cfg.World.Prefetch = true
	s := newTestSession(t, cfg)

	require.NoError(t, s.Tick())
	s.WaitPrefetch()

	ring := cfg.World.ChunkRadius + 1
	outer := (2*ring + 1) * (2*ring + 1)
	inner := (2*ring - 1) * (2*ring - 1)
	assert.Equal(t, outer-inner, s.Chunks().Stats().PlansCached)
	assert.False(t, s.Chunks().IsGenerated(vec.Vec2{X: ring, Z: 0}), "Планирование не пишет в хранилище")
}

func TestSessionSpill(t *testing.T) {
	cfg := config.Default()
	cfg.World.ChunkRadius = 1
	cfg.Storage.SpillDir = t.TempDir()
	s, err := NewSession(cfg, WithRNG(neverRNG{}))
	require.NoError(t, err)

	dir := s.spill.Dir()
	home, _ := s.Store().Get(vec.Vec3{X: 0, Y: 0, Z: 0})

	s.Player().Body.Position = mgl64.Vec3{8*vec.ChunkSize + 0.5, float64(cfg.World.Height - 2), 0.5}
	require.NoError(t, s.Tick())
	assert.True(t, s.Store().IsEvicted(vec.Vec2{}), "Дальний чанк выгружен")
	assert.Greater(t, s.Snapshot().Chunks.Evicted, 0)

	s.Player().Body.Position = mgl64.Vec3{0.5, float64(cfg.World.Height - 2), 0.5}
	require.NoError(t, s.Tick())
	assert.False(t, s.Store().IsEvicted(vec.Vec2{}))
	restored, ok := s.Store().Get(vec.Vec3{X: 0, Y: 0, Z: 0})
	require.True(t, ok)
	assert.Equal(t, home, restored)

	require.NoError(t, s.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestSessionClosed(t *testing.T) {
	s, err := NewSession(config.Default())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Advance(time.Second)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Tick(), ErrClosed)
	assert.NoError(t, s.Close())
}

func TestSessionRecipesFile(t *testing.T) {
	cfg := config.Default()
	cfg.Player.RecipesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := NewSession(cfg)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "recipes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recipes:\n  sand:\n    inputs: {dirt: 2}\n    outputs: {sand: 1}\n"), 0644))
	cfg.Player.RecipesFile = path
	s := newTestSession(t, cfg)

	s.Submit(input.Craft{RecipeID: "sand"})
	s.Submit(input.Craft{RecipeID: "planks"})
	require.NoError(t, s.Tick())
	assert.Equal(t, 62, s.HUD().Inventory[block.DirtID])
	assert.Equal(t, 33, s.HUD().Inventory[block.SandID])
	assert.Equal(t, 0, s.HUD().Inventory[block.PlanksID], "Рецепт по умолчанию заменён файлом")
}

func TestSnapshotCarriesSession(t *testing.T) {
	s := newTestSession(t, nil)
	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.SessionID)
	assert.Equal(t, s.HUD().Health, snap.Health)
	assert.Equal(t, s.Chunks().ActiveCount(), snap.Chunks.Active)
}
