package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/blockverse/internal/config"
	"github.com/annel0/blockverse/internal/input"
	"github.com/annel0/blockverse/internal/logging"
	"github.com/annel0/blockverse/internal/observability"
	"github.com/annel0/blockverse/internal/render"
	"github.com/annel0/blockverse/internal/storage"
	"github.com/annel0/blockverse/internal/vec"
	"github.com/annel0/blockverse/internal/world"
	"github.com/annel0/blockverse/internal/world/entity"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// ErrClosed возвращается при обращении к закрытой сессии
var ErrClosed = errors.New("session is closed")

// Snapshot снимок сессии для внешних читателей
type Snapshot struct {
	SessionID string `json:"session_id"`
	Tick      uint64 `json:"tick"`
	entity.HUD
	Chunks world.ChunkStats `json:"chunks"`
}

// Option настраивает сессию
type Option func(*Session)

// WithRenderer задаёт рендерер. По умолчанию render.Recorder.
func WithRenderer(r render.Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

// WithAimer задаёт источник прицела. Без него установка и ломание блоков невозможны.
func WithAimer(a render.Aimer) Option {
	return func(s *Session) { s.aimer = a }
}

// WithRNG задаёт источник случайности для голода
func WithRNG(rng entity.RNG) Option {
	return func(s *Session) { s.rng = rng }
}

// WithMetrics задаёт метрики
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// Session представляет одну игровую сессию: мир, менеджер чанков и игрок.
// Все изменения состояния происходят в горутине, вызывающей Advance/Tick.
type Session struct {
	id  string
	cfg *config.Config

	store     *world.Store
	generator *world.Generator
	chunks    *world.ChunkManager
	player    *entity.Player
	spill     *storage.SpillStore

	renderer render.Renderer
	aimer    render.Aimer
	rng      entity.RNG
	metrics  *observability.Metrics
	logger   *logging.Logger

	step        time.Duration
	accumulator time.Duration
	ticks       uint64

	intentsMu sync.Mutex
	intents   []input.Intent

	ctx         context.Context
	cancel      context.CancelFunc
	prefetchWG  sync.WaitGroup
	prefetching atomic.Bool

	closed bool
}

// NewSession создаёт сессию: генерирует область появления и ставит игрока на поверхность
func NewSession(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		step:   time.Second / time.Duration(cfg.Physics.TickRate),
		ctx:    ctx,
		cancel: cancel,
		logger: logging.GetGameLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = render.NewRecorder()
	}
	if s.aimer == nil {
		s.aimer = &render.StaticAim{}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(cfg.World.Seed))
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics(nil)
	}

	recipes := entity.DefaultRecipes()
	if cfg.Player.RecipesFile != "" {
		book, err := entity.LoadRecipeBook(cfg.Player.RecipesFile)
		if err != nil {
			cancel()
			return nil, err
		}
		recipes = book
	}

	s.store = world.NewStore(cfg.World.Height)
	if cfg.Storage.SpillDir != "" {
		spill, err := storage.OpenSpillStore(cfg.Storage.SpillDir)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("хранилище выгрузки: %w", err)
		}
		s.spill = spill
		s.store.SetBackend(spill)
	}

	s.generator = world.NewGenerator(world.GeneratorConfigFrom(cfg))
	s.chunks = world.NewChunkManager(s.store, s.generator, s.renderer, cfg.World.ChunkRadius, s.spill != nil)

	spawn := s.findSpawn()
	s.player = entity.NewPlayer(entity.PlayerConfigFrom(cfg), recipes, spawn)

	if err := s.chunks.Update(vec.Floor(spawn)); err != nil {
		s.Close()
		return nil, err
	}

	s.logger.Info("Сессия %s создана: seed=%d, радиус=%d, точка появления=%v, выгрузка=%v",
		s.id, cfg.World.Seed, cfg.World.ChunkRadius, spawn, s.spill != nil)
	return s, nil
}

// findSpawn генерирует чанк (0,0) и возвращает точку над самым высоким
// твёрдым блоком столбца (0,0)
func (s *Session) findSpawn() mgl64.Vec3 {
	s.chunks.EnsureGenerated(vec.Vec2{})
	y, ok := s.store.HighestSolid(0, 0)
	if !ok {
		y = s.store.Height() - 1
	}
	return mgl64.Vec3{0.5, float64(y + 1), 0.5}
}

// ID возвращает идентификатор сессии
func (s *Session) ID() string {
	return s.id
}

// Store возвращает хранилище мира
func (s *Session) Store() *world.Store {
	return s.store
}

// Chunks возвращает менеджер чанков
func (s *Session) Chunks() *world.ChunkManager {
	return s.chunks
}

// Player возвращает игрока
func (s *Session) Player() *entity.Player {
	return s.player
}

// Ticks возвращает количество выполненных тиков
func (s *Session) Ticks() uint64 {
	return s.ticks
}

// Submit ставит намерение в очередь. Безопасен для вызова из любой горутины.
func (s *Session) Submit(in input.Intent) {
	s.intentsMu.Lock()
	s.intents = append(s.intents, in)
	s.intentsMu.Unlock()
}

func (s *Session) drainIntents() []input.Intent {
	s.intentsMu.Lock()
	defer s.intentsMu.Unlock()
	pending := s.intents
	s.intents = nil
	return pending
}

// Advance продвигает симуляцию на dt фиксированными тиками.
// За вызов выполняется не больше physics.max_steps_per_advance тиков,
// остаток сверх лимита отбрасывается. Возвращает число выполненных тиков.
func (s *Session) Advance(dt time.Duration) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if dt > 0 {
		s.accumulator += dt
	}

	steps := 0
	for s.accumulator >= s.step && steps < s.cfg.Physics.MaxStepsPerAdvance {
		if err := s.Tick(); err != nil {
			return steps, err
		}
		s.accumulator -= s.step
		steps++
	}

	if s.accumulator >= s.step {
		skipped := int(s.accumulator / s.step)
		s.accumulator %= s.step
		s.metrics.AddSkippedTicks(skipped)
		s.logger.Debug("Отброшено %d тиков: превышен лимит %d за вызов", skipped, s.cfg.Physics.MaxStepsPerAdvance)
	}
	return steps, nil
}

// Tick выполняет один тик: намерения, игрок, чанки, фоновое планирование
func (s *Session) Tick() error {
	if s.closed {
		return ErrClosed
	}
	start := time.Now()

	for _, in := range s.drainIntents() {
		s.apply(in)
	}

	res := s.player.Tick(s.store, s.rng)
	switch {
	case res.Died:
		s.metrics.ObserveRespawn("died")
		s.logger.Info("Игрок погиб и возродился в %v", s.player.Spawn())
	case res.FellOut:
		s.metrics.ObserveRespawn("fell_out")
		s.logger.Debug("Игрок выпал из мира, перенос в %v", s.player.Spawn())
	}

	center := vec.Floor(s.player.Body.Position)
	if err := s.chunks.Update(center); err != nil {
		return fmt.Errorf("тик %d: %w", s.ticks, err)
	}
	if s.cfg.World.Prefetch {
		s.prefetch(center)
	}

	s.ticks++
	s.observe(time.Since(start))
	return nil
}

func (s *Session) apply(in input.Intent) {
	switch v := in.(type) {
	case input.MoveKey:
		s.player.ApplyMove(v)
	case input.Look:
		s.player.Yaw = v.Yaw
	case input.Jump:
		s.player.RequestJump()
	case input.SelectSlot:
		ok := s.player.SelectSlot(v.Index)
		s.metrics.ObserveAction("select", ok)
	case input.PrimaryInteract:
		aim, hit := s.aimer.QueryAim()
		ok := hit && s.player.Place(s.store, s.chunks, aim)
		s.metrics.ObserveAction("place", ok)
		if !ok {
			s.logger.Debug("Установка блока отклонена: прицел=%v, выбран=%s", hit, s.player.Selected())
		}
	case input.SecondaryInteract:
		aim, hit := s.aimer.QueryAim()
		ok := hit && s.player.Break(s.store, s.chunks, aim)
		s.metrics.ObserveAction("break", ok)
		if !ok {
			s.logger.Debug("Ломание блока отклонено: прицел=%v", hit)
		}
	case input.Craft:
		ok := s.player.Craft(v.RecipeID)
		s.metrics.ObserveAction("craft", ok)
		if !ok {
			s.logger.Debug("Крафт %q отклонён", v.RecipeID)
		}
	default:
		s.logger.Warn("Неизвестное намерение %T", in)
	}
}

// prefetch запускает фоновое планирование кольца за окном, если
// предыдущий проход уже завершён
func (s *Session) prefetch(center vec.Vec3) {
	if !s.prefetching.CompareAndSwap(false, true) {
		return
	}
	targets := s.chunks.PrefetchTargets(center)
	if len(targets) == 0 {
		s.prefetching.Store(false)
		return
	}

	s.prefetchWG.Add(1)
	go func() {
		defer s.prefetchWG.Done()
		defer s.prefetching.Store(false)

		if err := s.chunks.PlanAll(s.ctx, targets); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("Фоновое планирование прервано: %v", err)
		}
	}()
}

// WaitPrefetch ждёт завершения фонового планирования
func (s *Session) WaitPrefetch() {
	s.prefetchWG.Wait()
}

func (s *Session) observe(d time.Duration) {
	stats := s.chunks.Stats()
	s.metrics.ObserveTick(d)
	s.metrics.SetWorld(observability.WorldSample{
		ChunksActive:    stats.Active,
		ChunksGenerated: stats.Generated,
		ColumnsEvicted:  stats.Evicted,
		BlocksStored:    s.store.BlockCount(),
		Drawables:       stats.Drawables,
	})
	s.metrics.SetVitals(s.player.Vitals.Health, s.player.Vitals.Hunger)
}

// HUD возвращает снимок состояния игрока
func (s *Session) HUD() entity.HUD {
	return s.player.HUD()
}

// Snapshot возвращает снимок сессии
func (s *Session) Snapshot() *Snapshot {
	return &Snapshot{
		SessionID: s.id,
		Tick:      s.ticks,
		HUD:       s.player.HUD(),
		Chunks:    s.chunks.Stats(),
	}
}

// Close останавливает фоновое планирование и удаляет каталог выгрузки
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	s.prefetchWG.Wait()

	if s.spill != nil {
		if err := s.spill.Close(); err != nil {
			return fmt.Errorf("закрытие хранилища выгрузки: %w", err)
		}
	}
	s.logger.Info("Сессия %s закрыта после %d тиков", s.id, s.ticks)
	return nil
}
