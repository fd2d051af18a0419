package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/blockverse/internal/game"
	"github.com/annel0/blockverse/internal/input"
	"github.com/annel0/blockverse/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// defaultQueueSize размер очереди намерений по умолчанию
const defaultQueueSize = 256

// HostConfig содержит конфигурацию хоста
type HostConfig struct {
	Port      string        // адрес HTTP сервера, например ":8088"
	TickEvery time.Duration // период вызова Advance
	QueueSize int           // размер очереди намерений
	Registry  *prometheus.Registry
}

// Host запускает сессию в отдельной горутине и обслуживает HTTP API.
// Сессию трогает только горутина цикла; HTTP-обработчики читают
// опубликованный снимок и пишут намерения в канал.
type Host struct {
	session    *game.Session
	restServer *RestServer
	httpServer *http.Server
	listener   net.Listener
	tickEvery  time.Duration

	snapshot atomic.Pointer[game.Snapshot]
	intents  chan input.Intent

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logging.Logger
}

// NewHost создает хост для сессии
func NewHost(session *game.Session, config HostConfig) *Host {
	if config.TickEvery <= 0 {
		config.TickEvery = time.Second / 60
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Host{
		session:   session,
		tickEvery: config.TickEvery,
		intents:   make(chan input.Intent, config.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logging.GetServerLogger(),
	}
	h.snapshot.Store(session.Snapshot())

	h.restServer = NewRestServer(Config{
		Port:     config.Port,
		Source:   h,
		Sink:     h,
		Registry: config.Registry,
	})
	return h
}

// Snapshot возвращает последний опубликованный снимок
func (h *Host) Snapshot() *game.Snapshot {
	return h.snapshot.Load()
}

// Submit ставит намерение в очередь без блокировки
func (h *Host) Submit(in input.Intent) error {
	select {
	case h.intents <- in:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start запускает цикл симуляции и HTTP сервер
func (h *Host) Start() error {
	listener, err := net.Listen("tcp", h.restServer.port)
	if err != nil {
		return fmt.Errorf("не удалось открыть порт %s: %w", h.restServer.port, err)
	}
	h.listener = listener

	h.startLoop()

	h.httpServer = &http.Server{
		Handler:           h.restServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := h.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			h.logger.Error("❌ Ошибка HTTP сервера: %v", err)
		}
	}()

	h.logger.Info("✅ HTTP API запущен на %s", listener.Addr())
	h.logger.Info("📋 Доступные эндпоинты:")
	h.logger.Info("   GET  /health       - Проверка состояния")
	h.logger.Info("   GET  /api/hud      - Снимок состояния игрока")
	h.logger.Info("   GET  /api/server   - Информация о процессе")
	h.logger.Info("   POST /api/intents  - Намерения игрока")
	h.logger.Info("   GET  /metrics      - Метрики Prometheus")
	return nil
}

// Addr возвращает фактический адрес HTTP сервера
func (h *Host) Addr() string {
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

func (h *Host) startLoop() {
	h.wg.Add(1)
	go h.run()
}

// run единственная горутина, изменяющая сессию
func (h *Host) run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.tickEvery)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-h.ctx.Done():
			return
		case in := <-h.intents:
			h.session.Submit(in)
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if _, err := h.session.Advance(dt); err != nil {
				h.logger.Error("Ошибка тика: %v", err)
				continue
			}
			h.snapshot.Store(h.session.Snapshot())
		}
	}
}

// Stop останавливает HTTP сервер и цикл симуляции
func (h *Host) Stop() error {
	h.logger.Info("🛑 Остановка хоста...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	if h.httpServer != nil {
		if shutdownErr := h.httpServer.Shutdown(ctx); shutdownErr != nil {
			h.logger.Error("❌ Ошибка при остановке HTTP сервера: %v", shutdownErr)
			err = shutdownErr
		}
	}

	h.cancel()
	h.wg.Wait()
	return err
}
