package world

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/blockverse/internal/logging"
	"github.com/annel0/blockverse/internal/render"
	"github.com/annel0/blockverse/internal/vec"
	"github.com/annel0/blockverse/internal/world/block"
	"golang.org/x/sync/errgroup"
)

// Запас колец вокруг окна прорисовки
const (
	prefetchRing = 1 // Планы строятся заранее на расстоянии R+1
	restoreRing  = 1 // Выгруженные колонки возвращаются до входа в R+1
	evictRing    = 2 // Неактивные колонки дальше R+2 выгружаются
	planKeepRing = 3 // Неиспользованные планы дальше R+3 отбрасываются
)

// maxPlanWorkers ограничивает число горутин фонового планирования
const maxPlanWorkers = 4

// ChunkStats снимок счётчиков менеджера чанков
type ChunkStats struct {
	Active      int `json:"active"`
	Generated   int `json:"generated"`
	Evicted     int `json:"evicted"`
	Drawables   int `json:"drawables"`
	PlansCached int `json:"plans_cached"`
}

// activeChunk хранит дескрипторы отрисовки одного активного чанка
type activeChunk struct {
	handles map[vec.Vec3]render.Handle
}

// ChunkManager поддерживает окно активных чанков вокруг игрока:
// генерирует чанки при первом входе в окно и (де)материализует их.
// Деактивация никогда не удаляет блоки.
type ChunkManager struct {
	store     *Store
	generator *Generator
	renderer  render.Renderer
	radius    int
	spill     bool

	generated map[vec.Vec2]struct{}
	active    map[vec.Vec2]*activeChunk
	drawables int

	planMu sync.Mutex
	plans  map[vec.Vec2]*Plan

	logger *logging.Logger
}

// NewChunkManager создаёт менеджер с окном радиуса radius (в чанках).
// При spill == true неактивные колонки выгружаются в хранилище Store.
func NewChunkManager(store *Store, generator *Generator, renderer render.Renderer, radius int, spill bool) *ChunkManager {
	return &ChunkManager{
		store:     store,
		generator: generator,
		renderer:  renderer,
		radius:    radius,
		spill:     spill,
		generated: make(map[vec.Vec2]struct{}),
		active:    make(map[vec.Vec2]*activeChunk),
		plans:     make(map[vec.Vec2]*Plan),
		logger:    logging.GetWorldLogger(),
	}
}

// Radius возвращает радиус окна
func (cm *ChunkManager) Radius() int {
	return cm.radius
}

// window возвращает координаты окна в детерминированном порядке
func window(center vec.Vec2, radius int) []vec.Vec2 {
	coords := make([]vec.Vec2, 0, (2*radius+1)*(2*radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			coords = append(coords, center.Add(dx, dz))
		}
	}
	return coords
}

// Update приводит набор активных чанков к окну вокруг позиции center.
// Повторный вызов с тем же чанком ничего не меняет.
func (cm *ChunkManager) Update(center vec.Vec3) error {
	c := center.ToChunkCoords()

	if cm.spill {
		if err := cm.restoreNear(c); err != nil {
			return err
		}
	}

	inWindow := make(map[vec.Vec2]struct{}, (2*cm.radius+1)*(2*cm.radius+1))
	for _, coords := range window(c, cm.radius) {
		inWindow[coords] = struct{}{}
		if _, ok := cm.active[coords]; ok {
			continue
		}
		cm.ensureGenerated(coords)
		cm.activate(coords)
	}

	for _, coords := range cm.sortedActive() {
		if _, ok := inWindow[coords]; !ok {
			cm.deactivate(coords)
		}
	}

	if cm.spill {
		if err := cm.evictFar(c); err != nil {
			return err
		}
	}
	cm.prunePlans(c)
	return nil
}

// EnsureGenerated генерирует чанк, если он ещё не был сгенерирован
func (cm *ChunkManager) EnsureGenerated(coords vec.Vec2) {
	cm.ensureGenerated(coords)
}

func (cm *ChunkManager) ensureGenerated(coords vec.Vec2) {
	if _, ok := cm.generated[coords]; ok {
		return
	}

	cm.planMu.Lock()
	plan, ok := cm.plans[coords]
	delete(cm.plans, coords)
	cm.planMu.Unlock()

	if !ok {
		plan = cm.generator.Plan(coords)
	}

	written := Commit(cm.store, plan)
	cm.generated[coords] = struct{}{}

	// Крона, вышедшая в уже активный соседний чанк, должна сразу появиться
	spilled := 0
	for _, pos := range written {
		owner := pos.ToChunkCoords()
		if owner == coords {
			continue
		}
		if ac, ok := cm.active[owner]; ok {
			id, _ := cm.store.Get(pos)
			cm.addDrawable(ac, pos, id)
			spilled++
		}
	}

	cm.logger.Debug("Чанк %v сгенерирован: %d блоков (в активные соседи: %d), префетч=%v",
		coords, len(written), spilled, ok)
}

func (cm *ChunkManager) activate(coords vec.Vec2) {
	ac := &activeChunk{handles: make(map[vec.Vec3]render.Handle)}
	cm.store.ForEachInChunk(coords, func(pos vec.Vec3, id block.ID) {
		cm.addDrawable(ac, pos, id)
	})
	cm.active[coords] = ac
}

func (cm *ChunkManager) deactivate(coords vec.Vec2) {
	ac, ok := cm.active[coords]
	if !ok {
		return
	}
	for _, h := range ac.handles {
		cm.renderer.RemoveDrawable(h)
	}
	cm.drawables -= len(ac.handles)
	delete(cm.active, coords)
}

func (cm *ChunkManager) addDrawable(ac *activeChunk, pos vec.Vec3, id block.ID) {
	if old, ok := ac.handles[pos]; ok {
		cm.renderer.RemoveDrawable(old)
		cm.drawables--
	}
	ac.handles[pos] = cm.renderer.AddDrawable(pos, id)
	cm.drawables++
}

// BlockPlaced синхронизирует отрисовку после записи блока игроком
func (cm *ChunkManager) BlockPlaced(pos vec.Vec3, id block.ID) {
	if ac, ok := cm.active[pos.ToChunkCoords()]; ok {
		cm.addDrawable(ac, pos, id)
	}
}

// BlockRemoved синхронизирует отрисовку после удаления блока игроком
func (cm *ChunkManager) BlockRemoved(pos vec.Vec3) {
	ac, ok := cm.active[pos.ToChunkCoords()]
	if !ok {
		return
	}
	if h, ok := ac.handles[pos]; ok {
		cm.renderer.RemoveDrawable(h)
		delete(ac.handles, pos)
		cm.drawables--
	}
}

func (cm *ChunkManager) restoreNear(c vec.Vec2) error {
	for _, coords := range window(c, cm.radius+restoreRing) {
		if !cm.store.IsEvicted(coords) {
			continue
		}
		if err := cm.store.Restore(coords); err != nil {
			return fmt.Errorf("восстановление чанка %v: %w", coords, err)
		}
	}
	return nil
}

func (cm *ChunkManager) evictFar(c vec.Vec2) error {
	for coords := range cm.generated {
		if _, ok := cm.active[coords]; ok {
			continue
		}
		if coords.ChebyshevDistance(c) <= cm.radius+evictRing || cm.store.IsEvicted(coords) {
			continue
		}
		if err := cm.store.Evict(coords); err != nil {
			return fmt.Errorf("выгрузка чанка %v: %w", coords, err)
		}
	}
	return nil
}

// PrefetchTargets возвращает чанки кольца сразу за окном, для которых
// ещё нет ни генерации, ни готового плана. Вызывается в горутине тика.
func (cm *ChunkManager) PrefetchTargets(center vec.Vec3) []vec.Vec2 {
	c := center.ToChunkCoords()
	ring := cm.radius + prefetchRing

	cm.planMu.Lock()
	defer cm.planMu.Unlock()

	var targets []vec.Vec2
	for _, coords := range window(c, ring) {
		if coords.ChebyshevDistance(c) != ring {
			continue
		}
		if _, ok := cm.generated[coords]; ok {
			continue
		}
		if _, ok := cm.plans[coords]; ok {
			continue
		}
		targets = append(targets, coords)
	}
	return targets
}

// PlanAll строит планы для coords в фоне. Планы не трогают хранилище и
// применяются позже в горутине тика, поэтому генерация остаётся однократной.
func (cm *ChunkManager) PlanAll(ctx context.Context, coords []vec.Vec2) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPlanWorkers)

	for _, target := range coords {
		target := target
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plan := cm.generator.Plan(target)

			cm.planMu.Lock()
			cm.plans[target] = plan
			cm.planMu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (cm *ChunkManager) prunePlans(c vec.Vec2) {
	cm.planMu.Lock()
	defer cm.planMu.Unlock()

	for coords := range cm.plans {
		if coords.ChebyshevDistance(c) > cm.radius+planKeepRing {
			delete(cm.plans, coords)
		}
	}
}

// IsActive сообщает, материализован ли чанк
func (cm *ChunkManager) IsActive(coords vec.Vec2) bool {
	_, ok := cm.active[coords]
	return ok
}

// IsGenerated сообщает, был ли чанк сгенерирован
func (cm *ChunkManager) IsGenerated(coords vec.Vec2) bool {
	_, ok := cm.generated[coords]
	return ok
}

// ActiveCount возвращает количество активных чанков
func (cm *ChunkManager) ActiveCount() int {
	return len(cm.active)
}

// ActiveChunks возвращает активные чанки в детерминированном порядке
func (cm *ChunkManager) ActiveChunks() []vec.Vec2 {
	return cm.sortedActive()
}

func (cm *ChunkManager) sortedActive() []vec.Vec2 {
	coords := make([]vec.Vec2, 0, len(cm.active))
	for c := range cm.active {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}

// Stats возвращает снимок счётчиков
func (cm *ChunkManager) Stats() ChunkStats {
	cm.planMu.Lock()
	plans := len(cm.plans)
	cm.planMu.Unlock()

	return ChunkStats{
		Active:      len(cm.active),
		Generated:   len(cm.generated),
		Evicted:     cm.store.EvictedCount(),
		Drawables:   cm.drawables,
		PlansCached: plans,
	}
}
