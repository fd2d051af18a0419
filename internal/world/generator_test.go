package world

import (
	"testing"

	"github.com/annel0/blockverse/internal/config"
	"github.com/annel0/blockverse/internal/vec"
	"github.com/annel0/blockverse/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeneratorConfig(seed int64) GeneratorConfig {
	cfg := config.Default()
	cfg.World.Seed = seed
	return GeneratorConfigFrom(cfg)
}

func blocksOf(plan *Plan) map[vec.Vec3]block.ID {
	s := NewStore(64)
	Commit(s, plan)
	m := make(map[vec.Vec3]block.ID)
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			s.ForEachInChunk(plan.Coords.Add(dx, dz), func(pos vec.Vec3, id block.ID) {
				m[pos] = id
			})
		}
	}
	return m
}

func TestGenerationDeterministic(t *testing.T) {
	coords := vec.Vec2{X: 3, Z: -2}

	a := NewGenerator(testGeneratorConfig(42)).Plan(coords)
	b := NewGenerator(testGeneratorConfig(42)).Plan(coords)
	assert.Equal(t, a.Writes, b.Writes, "Один сид — одинаковый план")
	assert.Equal(t, blocksOf(a), blocksOf(b))

	c := NewGenerator(testGeneratorConfig(43)).Plan(coords)
	assert.NotEqual(t, blocksOf(a), blocksOf(c), "Другой сид — другой мир")
}

func TestGenerationDeterministicPerlin(t *testing.T) {
	cfg := testGeneratorConfig(7)
	cfg.Noise = "perlin"

	a := NewGenerator(cfg).Plan(vec.Vec2{X: -1, Z: 4})
	b := NewGenerator(cfg).Plan(vec.Vec2{X: -1, Z: 4})
	assert.Equal(t, a.Writes, b.Writes)
}

func TestColumnLayers(t *testing.T) {
	cfg := testGeneratorConfig(1337)
	gen := NewGenerator(cfg)
	store := NewStore(cfg.Height)

	coords := vec.Vec2{X: 0, Z: 0}
	Commit(store, gen.Plan(coords))

	maxE := cfg.Height - 1 - cfg.TrunkHeight - cfg.CanopyLayers
	for x := 0; x < vec.ChunkSize; x++ {
		for z := 0; z < vec.ChunkSize; z++ {
			e := gen.SurfaceAt(x, z)
			require.GreaterOrEqual(t, e, 1)
			require.LessOrEqual(t, e, maxE)

			top, _ := store.Get(vec.Vec3{X: x, Y: e, Z: z})
			if e <= cfg.SeaLevel+1 {
				assert.Equal(t, block.SandID, top, "(%d,%d) пляж", x, z)
			} else {
				assert.Equal(t, block.GrassID, top, "(%d,%d) трава", x, z)
			}

			for y := e - dirtDepth; y < e; y++ {
				if y < 0 {
					continue
				}
				id, _ := store.Get(vec.Vec3{X: x, Y: y, Z: z})
				assert.Equal(t, block.DirtID, id)
			}

			for y := e - oreBandDepth; y < e-dirtDepth; y++ {
				if y < 0 {
					continue
				}
				id, _ := store.Get(vec.Vec3{X: x, Y: y, Z: z})
				assert.Contains(t, []block.ID{block.StoneID, block.CoalOreID, block.IronOreID}, id)
			}

			for y := 0; y < e-oreBandDepth; y++ {
				id, _ := store.Get(vec.Vec3{X: x, Y: y, Z: z})
				assert.Equal(t, block.StoneID, id)
			}

			for y := e + 1; y <= cfg.SeaLevel; y++ {
				id, _ := store.Get(vec.Vec3{X: x, Y: y, Z: z})
				assert.Equal(t, block.WaterID, id, "Вода до уровня моря")
			}
		}
	}
}

func TestOreDistribution(t *testing.T) {
	cfg := testGeneratorConfig(99)
	cfg.OreChance = 1
	gen := NewGenerator(cfg)

	coal, iron := 0, 0
	for x := 0; x < 64; x++ {
		for y := 0; y < 8; y++ {
			switch gen.oreOrStone(x, y, 0) {
			case block.CoalOreID:
				coal++
			case block.IronOreID:
				iron++
			default:
				t.Fatal("при шансе 1 камень не должен оставаться")
			}
		}
	}
	assert.Greater(t, coal, iron*2, "Угля примерно втрое больше железа")
	assert.Greater(t, iron, 0)
}

func TestTreesNeverOverwrite(t *testing.T) {
	cfg := testGeneratorConfig(5)
	cfg.TreeChance = 1
	cfg.TreeMinElevation = 0
	cfg.SeaLevel = 0
	gen := NewGenerator(cfg)

	coords := vec.Vec2{X: 0, Z: 0}
	plan := gen.Plan(coords)
	store := NewStore(cfg.Height)
	Commit(store, plan)

	for x := 0; x < vec.ChunkSize; x++ {
		for z := 0; z < vec.ChunkSize; z++ {
			e := gen.SurfaceAt(x, z)
			top, _ := store.Get(vec.Vec3{X: x, Y: e, Z: z})
			assert.Contains(t, []block.ID{block.GrassID, block.SandID}, top, "Поверхность не заменена листвой")

			trunk, _ := store.Get(vec.Vec3{X: x, Y: e + 1, Z: z})
			assert.Equal(t, block.WoodID, trunk, "Нижний блок ствола стоит на месте")
		}
	}
}

func TestCommitPreservesExisting(t *testing.T) {
	cfg := testGeneratorConfig(11)
	gen := NewGenerator(cfg)
	store := NewStore(cfg.Height)

	e := gen.SurfaceAt(4, 4)
	edited := vec.Vec3{X: 4, Y: e, Z: 4}
	store.Set(edited, block.PlanksID)

	written := Commit(store, gen.Plan(vec.Vec2{}))
	assert.NotContains(t, written, edited)

	id, _ := store.Get(edited)
	assert.Equal(t, block.PlanksID, id, "Генерация не перезаписывает правки")

	again := Commit(store, gen.Plan(vec.Vec2{}))
	assert.Empty(t, again, "Повторный коммит ничего не пишет")
}

func TestSeamWritesDoNotOverwrite(t *testing.T) {
	cfg := testGeneratorConfig(21)
	cfg.TreeChance = 1
	cfg.TreeMinElevation = 0
	cfg.SeaLevel = 0
	gen := NewGenerator(cfg)
	store := NewStore(cfg.Height)

	left := vec.Vec2{X: 0, Z: 0}
	right := vec.Vec2{X: 1, Z: 0}

	Commit(store, gen.Plan(left))
	before := make(map[vec.Vec3]block.ID)
	store.ForEachInChunk(right, func(pos vec.Vec3, id block.ID) {
		before[pos] = id
	})
	require.NotEmpty(t, before, "Крона левого чанка выходит в правый")

	Commit(store, gen.Plan(right))
	for pos, id := range before {
		got, _ := store.Get(pos)
		assert.Equal(t, id, got, "Блок %v от соседа сохраняется", pos)
	}
}
