package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/railbot/internal/domain"
)

// AccountRepo — репозиторий учётных записей IRCTC.
type AccountRepo struct {
	pool *pgxpool.Pool
}

// NewAccountRepo создаёт новый AccountRepo.
func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create создаёт учётную запись. Логин уникален.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (id, irctc_id, password, mobile_number, status, created_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (irctc_id) DO NOTHING
	`
	result, err := r.pool.Exec(ctx, query,
		a.ID,
		a.IrctcID,
		a.Password,
		nullString(a.MobileNumber),
		a.Status,
		a.CreatedAt,
		a.LastUsedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// GetByID возвращает учётную запись по ID.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, irctc_id, password, mobile_number, status, created_at, last_used_at
		FROM accounts
		WHERE id = $1
	`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

// GetByIrctcID возвращает учётную запись по логину.
func (r *AccountRepo) GetByIrctcID(ctx context.Context, irctcID string) (*domain.Account, error) {
	query := `
		SELECT id, irctc_id, password, mobile_number, status, created_at, last_used_at
		FROM accounts
		WHERE irctc_id = $1
	`
	return scanAccount(r.pool.QueryRow(ctx, query, irctcID))
}

// List возвращает все учётные записи.
func (r *AccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	query := `
		SELECT id, irctc_id, password, mobile_number, status, created_at, last_used_at
		FROM accounts
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// Update обновляет учётную запись.
func (r *AccountRepo) Update(ctx context.Context, a *domain.Account) error {
	query := `
		UPDATE accounts
		SET password = $2, mobile_number = $3, status = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		a.ID,
		a.Password,
		nullString(a.MobileNumber),
		a.Status,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastUsed обновляет время последнего использования.
func (r *AccountRepo) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE accounts SET last_used_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет учётную запись.
func (r *AccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var mobile *string

	err := row.Scan(
		&a.ID,
		&a.IrctcID,
		&a.Password,
		&mobile,
		&a.Status,
		&a.CreatedAt,
		&a.LastUsedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}

	if mobile != nil {
		a.MobileNumber = *mobile
	}
	return &a, nil
}
