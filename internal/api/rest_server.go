package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/annel0/blockverse/internal/game"
	"github.com/annel0/blockverse/internal/input"
	"github.com/annel0/blockverse/internal/logging"
	"github.com/annel0/blockverse/internal/middleware"
	"github.com/annel0/blockverse/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrQueueFull возвращается, когда очередь намерений переполнена
var ErrQueueFull = errors.New("intent queue is full")

// SnapshotSource отдаёт последний опубликованный снимок сессии
type SnapshotSource interface {
	Snapshot() *game.Snapshot
}

// IntentSink принимает намерения игрока
type IntentSink interface {
	Submit(in input.Intent) error
}

// RestServer представляет HTTP API хоста сессии
type RestServer struct {
	router  *gin.Engine
	source  SnapshotSource
	sink    IntentSink
	port    string
	metrics *ServerMetrics
	logger  *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string               // порт для запуска сервера
	Source   SnapshotSource       // источник снимков
	Sink     IntentSink           // приёмник намерений
	Registry *prometheus.Registry // регистр метрик для /metrics
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	logger := logging.GetServerLogger()
	router.Use(middleware.NewRequestLogger(logger).Handler())

	promMw := middleware.NewPrometheusMiddleware(observability.Namespace, config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Registry)

	server := &RestServer{
		router:  router,
		source:  config.Source,
		sink:    config.Sink,
		port:    config.Port,
		metrics: NewServerMetrics(),
		logger:  logger,
	}
	server.setupRoutes()
	return server
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api")
	{
		api.GET("/hud", rs.handleHUD)
		api.GET("/server", rs.handleServerInfo)

		intents := api.Group("/intents")
		intents.Use(limitBodyMiddleware(maxIntentBody), jsonOnlyMiddleware())
		intents.POST("", rs.handleIntents)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// handleHUD возвращает последний снимок сессии
func (rs *RestServer) handleHUD(c *gin.Context) {
	snap := rs.source.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Сессия ещё не готова",
		})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// decodeIntents разбирает одно намерение или массив намерений
func decodeIntents(body []byte) ([]input.Intent, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("пустое тело запроса")
	}

	var envelopes []input.Envelope
	if body[0] == '[' {
		if err := json.Unmarshal(body, &envelopes); err != nil {
			return nil, err
		}
	} else {
		var env input.Envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, err
		}
		envelopes = append(envelopes, env)
	}

	intents := make([]input.Intent, 0, len(envelopes))
	for _, env := range envelopes {
		in, err := env.Decode()
		if err != nil {
			return nil, err
		}
		intents = append(intents, in)
	}
	return intents, nil
}

// handleIntents ставит намерения в очередь сессии
func (rs *RestServer) handleIntents(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, GenericResponse{
			Success: false,
			Message: "Тело запроса слишком большое",
		})
		return
	}

	intents, err := decodeIntents(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Неверное намерение: %v", err),
		})
		return
	}

	accepted := 0
	for _, in := range intents {
		if err := rs.sink.Submit(in); err != nil {
			rs.logger.Warn("Намерение %T отклонено: %v", in, err)
			c.JSON(http.StatusServiceUnavailable, GenericResponse{
				Success: false,
				Message: "Очередь намерений переполнена",
				Data:    gin.H{"accepted": accepted},
			})
			return
		}
		accepted++
	}

	c.JSON(http.StatusAccepted, GenericResponse{
		Success: true,
		Message: "Намерения приняты",
		Data:    gin.H{"accepted": accepted},
	})
}

// handleServerInfo возвращает информацию о процессе хоста
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()

	info := map[string]interface{}{
		"name":        "blockverse",
		"status":      "running",
		"uptime":      rs.metrics.GetUptime(),
		"memory_mb":   fmt.Sprintf("%.1f", memoryMB),
		"cpu_percent": fmt.Sprintf("%.1f", cpuPercent),
		"runtime":     rs.metrics.GetRuntimeStats(),
	}
	if snap := rs.source.Snapshot(); snap != nil {
		info["session_id"] = snap.SessionID
		info["tick"] = snap.Tick
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    info,
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}
