package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/blockverse/internal/api"
	"github.com/annel0/blockverse/internal/config"
	"github.com/annel0/blockverse/internal/game"
	"github.com/annel0/blockverse/internal/logging"
	"github.com/annel0/blockverse/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (по умолчанию $GAME_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	consoleLevel, err := logging.ParseLevel(cfg.Logging.ConsoleLevel)
	if err != nil {
		log.Fatalf("❌ logging.console_level: %v", err)
	}
	fileLevel, err := logging.ParseLevel(cfg.Logging.FileLevel)
	if err != nil {
		log.Fatalf("❌ logging.file_level: %v", err)
	}
	logging.Configure(logging.Settings{
		Dir:          cfg.Logging.Dir,
		ConsoleLevel: consoleLevel,
		FileLevel:    fileLevel,
	})

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🎮 Запуск blockverse: seed=%d, высота=%d, радиус=%d", cfg.World.Seed, cfg.World.Height, cfg.World.ChunkRadius)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if err := observability.RegisterProcessMetrics(reg); err != nil {
		logging.Warn("Метрики процесса недоступны: %v", err)
	}

	session, err := game.NewSession(cfg, game.WithMetrics(observability.NewMetrics(reg)))
	if err != nil {
		logging.Error("❌ Ошибка создания сессии: %v", err)
		os.Exit(1)
	}

	host := api.NewHost(session, api.HostConfig{
		Port:      fmt.Sprintf(":%d", cfg.Server.GetHTTPPort()),
		TickEvery: time.Second / time.Duration(cfg.Physics.TickRate),
		Registry:  reg,
	})
	if err := host.Start(); err != nil {
		logging.Error("❌ Ошибка запуска HTTP API: %v", err)
		session.Close()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	if err := host.Stop(); err != nil {
		logging.Error("❌ Ошибка остановки HTTP API: %v", err)
	}
	if err := session.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия сессии: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}
