package observability

import (
	"errors"
	"time"

	"github.com/annel0/blockverse/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace префикс всех метрик
const Namespace = "blockverse"

// Metrics метрики симуляции.
//
// * tick_duration_seconds — histogram длительности тика
// * ticks_total — counter выполненных тиков
// * ticks_skipped_total — counter тиков, отброшенных ограничением шагов за Advance
// * chunks_active / chunks_generated / columns_evicted — gauge состояния мира
// * blocks_stored / drawables — gauge объёма данных
// * player_health / player_hunger — gauge показателей игрока
// * actions_total{action,result} — counter действий игрока
// * respawns_total{reason} — counter возрождений
type Metrics struct {
	tickDuration    prometheus.Histogram
	ticks           prometheus.Counter
	ticksSkipped    prometheus.Counter
	chunksActive    prometheus.Gauge
	chunksGenerated prometheus.Gauge
	columnsEvicted  prometheus.Gauge
	blocksStored    prometheus.Gauge
	drawables       prometheus.Gauge
	playerHealth    prometheus.Gauge
	playerHunger    prometheus.Gauge
	actions         *prometheus.CounterVec
	respawns        *prometheus.CounterVec
}

// WorldSample значения gauge-метрик мира
type WorldSample struct {
	ChunksActive    int
	ChunksGenerated int
	ColumnsEvicted  int
	BlocksStored    int
	Drawables       int
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// Если метрика уже зарегистрирована (вторая сессия в том же процессе),
// используется существующий коллектор.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика симуляции.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ticks_total",
			Help:      "Общее число выполненных тиков.",
		}),
		ticksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ticks_skipped_total",
			Help:      "Тики, отброшенные ограничением шагов за один Advance.",
		}),
		chunksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "chunks_active",
			Help:      "Количество материализованных чанков.",
		}),
		chunksGenerated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "chunks_generated",
			Help:      "Количество сгенерированных чанков.",
		}),
		columnsEvicted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "columns_evicted",
			Help:      "Количество колонок, выгруженных на диск.",
		}),
		blocksStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "blocks_stored",
			Help:      "Количество блоков в памяти.",
		}),
		drawables: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "drawables",
			Help:      "Количество отрисовываемых блоков.",
		}),
		playerHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "player_health",
			Help:      "Здоровье игрока.",
		}),
		playerHunger: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "player_hunger",
			Help:      "Сытость игрока.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "actions_total",
			Help:      "Действия игрока по типу и результату.",
		}, []string{"action", "result"}),
		respawns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "respawns_total",
			Help:      "Возрождения игрока по причине.",
		}, []string{"reason"}),
	}

	m.tickDuration = register(reg, m.tickDuration)
	m.ticks = register(reg, m.ticks)
	m.ticksSkipped = register(reg, m.ticksSkipped)
	m.chunksActive = register(reg, m.chunksActive)
	m.chunksGenerated = register(reg, m.chunksGenerated)
	m.columnsEvicted = register(reg, m.columnsEvicted)
	m.blocksStored = register(reg, m.blocksStored)
	m.drawables = register(reg, m.drawables)
	m.playerHealth = register(reg, m.playerHealth)
	m.playerHunger = register(reg, m.playerHunger)
	m.actions = register(reg, m.actions)
	m.respawns = register(reg, m.respawns)
	return m
}

// register регистрирует коллектор или возвращает уже зарегистрированный
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		logging.Warn("Не удалось зарегистрировать метрику: %v", err)
	}
	return c
}

// ObserveTick учитывает выполненный тик
func (m *Metrics) ObserveTick(d time.Duration) {
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
}

// AddSkippedTicks учитывает отброшенные тики
func (m *Metrics) AddSkippedTicks(n int) {
	if n > 0 {
		m.ticksSkipped.Add(float64(n))
	}
}

// SetWorld обновляет gauge-метрики мира
func (m *Metrics) SetWorld(s WorldSample) {
	m.chunksActive.Set(float64(s.ChunksActive))
	m.chunksGenerated.Set(float64(s.ChunksGenerated))
	m.columnsEvicted.Set(float64(s.ColumnsEvicted))
	m.blocksStored.Set(float64(s.BlocksStored))
	m.drawables.Set(float64(s.Drawables))
}

// SetVitals обновляет показатели игрока
func (m *Metrics) SetVitals(health, hunger int) {
	m.playerHealth.Set(float64(health))
	m.playerHunger.Set(float64(hunger))
}

// ObserveAction учитывает действие игрока
func (m *Metrics) ObserveAction(action string, ok bool) {
	result := "noop"
	if ok {
		result = "ok"
	}
	m.actions.WithLabelValues(action, result).Inc()
}

// ObserveRespawn учитывает возрождение
func (m *Metrics) ObserveRespawn(reason string) {
	m.respawns.WithLabelValues(reason).Inc()
}
