package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/railbot/internal/domain"
)

const ticketColumns = `id, train_no, source_station, destination_station, travel_date,
       quota, username, status, attempt_count, captcha_failures, last_error,
       request_json, created_at, updated_at`

// TicketRepo — репозиторий истории бронирований.
type TicketRepo struct {
	pool *pgxpool.Pool
}

// NewTicketRepo создаёт новый TicketRepo.
func NewTicketRepo(pool *pgxpool.Pool) *TicketRepo {
	return &TicketRepo{pool: pool}
}

// Create создаёт новый тикет.
func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	query := `
		INSERT INTO tickets (id, train_no, source_station, destination_station, travel_date,
		                     quota, username, status, attempt_count, captcha_failures,
		                     last_error, request_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.TrainNo,
		t.SourceStation,
		t.DestinationStation,
		t.TravelDate,
		t.Quota,
		t.Username,
		t.Status,
		t.AttemptCount,
		t.CaptchaFailures,
		nullString(t.LastError),
		nullString(t.RequestJSON),
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// GetByID возвращает тикет по ID.
func (r *TicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

// TicketFilter — параметры фильтрации тикетов.
type TicketFilter struct {
	Status   domain.TicketStatus
	Username string
	Limit    int
	Offset   int
}

// List возвращает тикеты с фильтрацией, новые первыми.
func (r *TicketRepo) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR username = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Status)),
		nullString(filter.Username),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// Update обновляет изменяемые поля тикета.
func (r *TicketRepo) Update(ctx context.Context, t *domain.Ticket) error {
	query := `
		UPDATE tickets
		SET status = $2, attempt_count = $3, captcha_failures = $4,
		    last_error = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		t.ID,
		t.Status,
		t.AttemptCount,
		t.CaptchaFailures,
		nullString(t.LastError),
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет тикет.
func (r *TicketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanTicket сканирует строку в Ticket.
func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	var lastError, requestJSON *string

	err := row.Scan(
		&t.ID,
		&t.TrainNo,
		&t.SourceStation,
		&t.DestinationStation,
		&t.TravelDate,
		&t.Quota,
		&t.Username,
		&t.Status,
		&t.AttemptCount,
		&t.CaptchaFailures,
		&lastError,
		&requestJSON,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan ticket: %w", err)
	}

	if lastError != nil {
		t.LastError = *lastError
	}
	if requestJSON != nil {
		t.RequestJSON = *requestJSON
	}
	return &t, nil
}

// nullString возвращает nil для пустой строки.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
