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

// PaymentRepo — репозиторий сохранённых способов оплаты.
type PaymentRepo struct {
	pool *pgxpool.Pool
}

// NewPaymentRepo создаёт новый PaymentRepo.
func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// Create создаёт способ оплаты. Новый основной способ снимает флаг
// с предыдущего.
func (r *PaymentRepo) Create(ctx context.Context, p *domain.PaymentOption) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if p.Preferred {
		if _, err := tx.Exec(ctx, `UPDATE payment_options SET preferred = false WHERE preferred`); err != nil {
			return fmt.Errorf("clear preferred: %w", err)
		}
	}

	query := `
		INSERT INTO payment_options (id, name, type, gateway, bank_name, upi_id, preferred, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Type,
		nullString(p.Gateway),
		nullString(p.BankName),
		nullString(p.UpiID),
		p.Preferred,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment option: %w", err)
	}
	return tx.Commit(ctx)
}

// GetByID возвращает способ оплаты по ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentOption, error) {
	query := `
		SELECT id, name, type, gateway, bank_name, upi_id, preferred, created_at
		FROM payment_options
		WHERE id = $1
	`
	return scanPaymentOption(r.pool.QueryRow(ctx, query, id))
}

// GetPreferred возвращает основной способ оплаты.
func (r *PaymentRepo) GetPreferred(ctx context.Context) (*domain.PaymentOption, error) {
	query := `
		SELECT id, name, type, gateway, bank_name, upi_id, preferred, created_at
		FROM payment_options
		WHERE preferred
		LIMIT 1
	`
	return scanPaymentOption(r.pool.QueryRow(ctx, query))
}

// List возвращает все способы оплаты, основной первым.
func (r *PaymentRepo) List(ctx context.Context) ([]domain.PaymentOption, error) {
	query := `
		SELECT id, name, type, gateway, bank_name, upi_id, preferred, created_at
		FROM payment_options
		ORDER BY preferred DESC, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list payment options: %w", err)
	}
	defer rows.Close()

	var options []domain.PaymentOption
	for rows.Next() {
		p, err := scanPaymentOption(rows)
		if err != nil {
			return nil, err
		}
		options = append(options, *p)
	}
	return options, rows.Err()
}

// Delete удаляет способ оплаты.
func (r *PaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM payment_options WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment option: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPaymentOption(row pgx.Row) (*domain.PaymentOption, error) {
	var p domain.PaymentOption
	var gateway, bankName, upiID *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Type,
		&gateway,
		&bankName,
		&upiID,
		&p.Preferred,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment option: %w", err)
	}

	if gateway != nil {
		p.Gateway = *gateway
	}
	if bankName != nil {
		p.BankName = *bankName
	}
	if upiID != nil {
		p.UpiID = *upiID
	}
	return &p, nil
}
