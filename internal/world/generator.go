package world

import (
	"math"

	"github.com/annel0/blockverse/internal/config"
	"github.com/annel0/blockverse/internal/vec"
	"github.com/annel0/blockverse/internal/world/block"
)

// Константы слоёв колонки относительно поверхности E
const (
	dirtDepth    = 2 // E-2 <= y < E: земля
	oreBandDepth = 4 // E-4 <= y < E-2: камень с рудой
	canopyRadius = 2 // Радиус кроны по манхэттенской метрике
)

// GeneratorConfig параметры генерации ландшафта
type GeneratorConfig struct {
	Seed             int64
	Height           int
	SeaLevel         int
	Noise            string // "value" или "perlin"
	Baseline         float64
	OreChance        float64
	TreeChance       float64
	TreeMinElevation int
	TrunkHeight      int
	CanopyLayers     int
}

// GeneratorConfigFrom собирает параметры генерации из конфигурации приложения
func GeneratorConfigFrom(cfg *config.Config) GeneratorConfig {
	return GeneratorConfig{
		Seed:             cfg.World.Seed,
		Height:           cfg.World.Height,
		SeaLevel:         cfg.World.SeaLevel,
		Noise:            cfg.Terrain.Noise,
		Baseline:         cfg.Terrain.Baseline,
		OreChance:        cfg.Terrain.OreChance,
		TreeChance:       cfg.Terrain.TreeChance,
		TreeMinElevation: cfg.Terrain.TreeMinElevation,
		TrunkHeight:      cfg.Terrain.TrunkHeight,
		CanopyLayers:     cfg.Terrain.CanopyLayers,
	}
}

// Write одна запись генерации
type Write struct {
	Pos vec.Vec3
	ID  block.ID
}

// Plan содержит полный набор записей для одного чанка. Зависит только от сида
// и координат, поэтому может строиться вне горутины тика.
type Plan struct {
	Coords vec.Vec2
	Writes []Write
}

// Generator генерирует ландшафт мира
type Generator struct {
	cfg    GeneratorConfig
	height HeightSource

	oreSeed     int64
	oreKindSeed int64
	treeSeed    int64
}

// NewGenerator создаёт генератор. Неизвестный тип шума заменяется value-шумом.
func NewGenerator(cfg GeneratorConfig) *Generator {
	var source HeightSource
	if cfg.Noise == "perlin" {
		source = newPerlinNoise(cfg.Seed, cfg.Baseline)
	} else {
		source = newValueNoise(cfg.Seed, cfg.Baseline)
	}
	return &Generator{
		cfg:         cfg,
		height:      source,
		oreSeed:     salted(cfg.Seed, saltOre),
		oreKindSeed: salted(cfg.Seed, saltOreKind),
		treeSeed:    salted(cfg.Seed, saltTree),
	}
}

// Seed возвращает сид генератора
func (g *Generator) Seed() int64 {
	return g.cfg.Seed
}

// SurfaceAt возвращает высоту травяного слоя E в столбце (x, z)
func (g *Generator) SurfaceAt(x, z int) int {
	e := int(math.Floor(g.height.Elevation(x, z)))

	// Дерево на самой высокой поверхности должно помещаться в мир
	maxE := g.cfg.Height - 1 - g.cfg.TrunkHeight - g.cfg.CanopyLayers
	if e > maxE {
		e = maxE
	}
	if e < 1 {
		e = 1
	}
	return e
}

// Plan строит набор записей для чанка: сначала ландшафт всех столбцов, затем деревья
func (g *Generator) Plan(coords vec.Vec2) *Plan {
	plan := &Plan{
		Coords: coords,
		Writes: make([]Write, 0, ColumnArea*(g.cfg.SeaLevel+2)),
	}
	origin := coords.Origin()

	var surface [vec.ChunkSize][vec.ChunkSize]int
	for x := 0; x < vec.ChunkSize; x++ {
		for z := 0; z < vec.ChunkSize; z++ {
			wx, wz := origin.X+x, origin.Z+z
			surface[x][z] = g.SurfaceAt(wx, wz)
			g.planColumn(plan, wx, wz, surface[x][z])
		}
	}

	// Стволы раньше крон: листва соседнего дерева не занимает место ствола
	var trees []vec.Vec3
	for x := 0; x < vec.ChunkSize; x++ {
		for z := 0; z < vec.ChunkSize; z++ {
			wx, wz := origin.X+x, origin.Z+z
			if g.hasTree(wx, wz, surface[x][z]) {
				trees = append(trees, vec.Vec3{X: wx, Y: surface[x][z], Z: wz})
				g.planTrunk(plan, wx, wz, surface[x][z])
			}
		}
	}
	for _, t := range trees {
		g.planCanopy(plan, t.X, t.Z, t.Y)
	}

	return plan
}

func (g *Generator) planColumn(plan *Plan, x, z, e int) {
	add := func(y int, id block.ID) {
		plan.Writes = append(plan.Writes, Write{Pos: vec.Vec3{X: x, Y: y, Z: z}, ID: id})
	}

	for y := 0; y < e; y++ {
		switch {
		case y < e-oreBandDepth:
			add(y, block.StoneID)
		case y < e-dirtDepth:
			add(y, g.oreOrStone(x, y, z))
		default:
			add(y, block.DirtID)
		}
	}

	if e <= g.cfg.SeaLevel+1 {
		add(e, block.SandID)
	} else {
		add(e, block.GrassID)
	}

	for y := e + 1; y <= g.cfg.SeaLevel; y++ {
		add(y, block.WaterID)
	}
}

// oreOrStone заменяет камень рудой; уголь встречается в три раза чаще железа
func (g *Generator) oreOrStone(x, y, z int) block.ID {
	if unitFloat(hash3(g.oreSeed, x, y, z)) >= g.cfg.OreChance {
		return block.StoneID
	}
	if hash3(g.oreKindSeed, x, y, z)%4 == 0 {
		return block.IronOreID
	}
	return block.CoalOreID
}

func (g *Generator) hasTree(x, z, e int) bool {
	if e < g.cfg.TreeMinElevation || e < g.cfg.SeaLevel {
		return false
	}
	return unitFloat(hash2(g.treeSeed, x, z)) < g.cfg.TreeChance
}

func (g *Generator) planTrunk(plan *Plan, x, z, e int) {
	for y := e + 1; y <= e+g.cfg.TrunkHeight; y++ {
		plan.Writes = append(plan.Writes, Write{Pos: vec.Vec3{X: x, Y: y, Z: z}, ID: block.WoodID})
	}
}

// planCanopy добавляет ромбовидную крону. Крона может выходить за пределы
// чанка: такие записи применяются к соседям через SetIfAbsent.
func (g *Generator) planCanopy(plan *Plan, x, z, e int) {
	trunkTop := e + g.cfg.TrunkHeight
	for layer := 0; layer < g.cfg.CanopyLayers; layer++ {
		y := trunkTop - 1 + layer
		for dx := -canopyRadius; dx <= canopyRadius; dx++ {
			for dz := -canopyRadius; dz <= canopyRadius; dz++ {
				if abs(dx)+abs(dz) > canopyRadius {
					continue
				}
				plan.Writes = append(plan.Writes, Write{
					Pos: vec.Vec3{X: x + dx, Y: y, Z: z + dz},
					ID:  block.LeavesID,
				})
			}
		}
	}
}

// Commit применяет план к хранилищу и возвращает фактически записанные позиции.
// Существующие блоки никогда не перезаписываются.
func Commit(store *Store, plan *Plan) []vec.Vec3 {
	written := make([]vec.Vec3, 0, len(plan.Writes))
	for _, w := range plan.Writes {
		if store.SetIfAbsent(w.Pos, w.ID) {
			written = append(written, w.Pos)
		}
	}
	return written
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
