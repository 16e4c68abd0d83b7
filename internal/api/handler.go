package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/railbot/internal/config"
	"github.com/shaiso/railbot/internal/domain"
	"github.com/shaiso/railbot/internal/engine"
	"github.com/shaiso/railbot/internal/repo"
	"github.com/shaiso/railbot/internal/scheduler"
	"github.com/shaiso/railbot/internal/telemetry"
)

// TicketStore — история тикетов. Реализуется repo.TicketRepo.
type TicketStore interface {
	Create(ctx context.Context, t *domain.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	List(ctx context.Context, filter repo.TicketFilter) ([]domain.Ticket, error)
	Update(ctx context.Context, t *domain.Ticket) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler — главный обработчик API с зависимостями.
//
// Репозитории опциональны: без PostgreSQL история тикетов,
// учётные записи и способы оплаты отвечают 503.
type Handler struct {
	engine      *engine.Engine
	configStore *config.Store
	scheduler   *scheduler.Scheduler
	ring        *telemetry.Ring
	tickets     TicketStore
	accounts    *repo.AccountRepo
	payments    *repo.PaymentRepo
	logger      *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Engine      *engine.Engine
	ConfigStore *config.Store
	Scheduler   *scheduler.Scheduler
	Ring        *telemetry.Ring
	Tickets     TicketStore
	Accounts    *repo.AccountRepo
	Payments    *repo.PaymentRepo
	Logger      *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		engine:      cfg.Engine,
		configStore: cfg.ConfigStore,
		scheduler:   cfg.Scheduler,
		ring:        cfg.Ring,
		tickets:     cfg.Tickets,
		accounts:    cfg.Accounts,
		payments:    cfg.Payments,
		logger:      logger,
	}
}
