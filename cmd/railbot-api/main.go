// Railbot API — управляющий процесс бронирования.
//
// Процесс:
//   - Держит движок бронирования (не более одного workflow)
//   - Отдаёт REST API для UI и CLI
//   - Запускает бронирования по расписанию (Tatkal-окна)
//   - Транслирует события workflow в RabbitMQ (опционально)
//   - Пишет историю тикетов в PostgreSQL (опционально)
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/railbot/internal/api"
	"github.com/shaiso/railbot/internal/config"
	"github.com/shaiso/railbot/internal/engine"
	"github.com/shaiso/railbot/internal/mq"
	"github.com/shaiso/railbot/internal/repo"
	"github.com/shaiso/railbot/internal/scheduler"
	"github.com/shaiso/railbot/internal/telemetry"
	"github.com/shaiso/railbot/internal/workflow"
)

func main() {
	// .env для локальной разработки; отсутствие файла не ошибка.
	_ = godotenv.Load()

	// Structured logging с кольцевым буфером для /api/v1/logs.
	ring := telemetry.NewRing(1000)
	logger := telemetry.SetupLogger(ring)
	logger.Info("starting railbot-api")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dataDir := os.Getenv("RAILBOT_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	// Хранилище конфигурации бронирования.
	configStore, err := config.NewStore(
		filepath.Join(dataDir, "config"),
		os.Getenv("CONFIG_PASSPHRASE"),
		logger,
	)
	if err != nil {
		logger.Error("failed to open config store", "error", err)
		os.Exit(1)
	}

	// PostgreSQL опционален: без DB_URL история тикетов отключена.
	// Интерфейсное поле остаётся nil, пока база недоступна.
	var tickets api.TicketStore
	var accounts *repo.AccountRepo
	var payments *repo.PaymentRepo
	if os.Getenv("DB_URL") != "" {
		pool, err := repo.NewPool(ctx)
		if err != nil {
			logger.Warn("database not available, history disabled", "error", err)
		} else {
			defer pool.Close()
			logger.Info("database connected")
			tickets = repo.NewTicketRepo(pool)
			accounts = repo.NewAccountRepo(pool)
			payments = repo.NewPaymentRepo(pool)
		}
	}

	// Движок бронирования.
	eng, err := engine.New(engine.Config{
		DataDir:  dataDir,
		Workflow: workflow.DefaultConfig(),
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to create engine", "error", err)
		os.Exit(1)
	}
	defer eng.Close()

	// RabbitMQ опционален: без RABBITMQ_URL события остаются локальными.
	if mqURL := os.Getenv("RABBITMQ_URL"); mqURL != "" {
		mqConn, err := mq.NewConnection(mqURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, event publishing disabled", "error", err)
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}

			bridge := mq.NewBridge(mq.NewPublisher(mqConn, logger), eng.Events(), logger)
			go bridge.Run(ctx)
		}
	}

	// Планировщик отложенных запусков.
	sched := scheduler.New(scheduler.Config{
		Starter: eng,
		Logger:  logger,
	})
	sched.Start(ctx)
	defer sched.Stop()

	// API handler.
	handler := api.NewHandler(api.Config{
		Engine:      eng,
		ConfigStore: configStore,
		Scheduler:   sched,
		Ring:        ring,
		Tickets:     tickets,
		Accounts:    accounts,
		Payments:    payments,
		Logger:      logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// Активный workflow останавливается, checkpoint остаётся на диске.
	if err := eng.Stop(); err == nil {
		eng.Wait()
	}

	logger.Info("stopped")
}
