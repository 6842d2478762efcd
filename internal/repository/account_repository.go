package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/meatsafe-api/internal/models"
)

// ErrVersionConflict is returned when a conditional update finds the row changed since it was read.
var ErrVersionConflict = errors.New("version conflict")

const accountColumns = `id, name, email, restaurant_name, role, status, approved_at, approved_by, version, created_at, updated_at`

// AccountRepository provides database access for restaurant accounts.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByID returns an account by identifier. Ids that are not UUIDs match no row.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	key, ok := rowKey(id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	query := `SELECT ` + accountColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return &account, nil
}

// FindByEmail returns the oldest account registered with email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE LOWER(email) = LOWER($1) ORDER BY created_at ASC LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &account, nil
}

// List returns every account, newest first.
func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users ORDER BY created_at DESC`
	accounts := make([]models.Account, 0)
	if err := r.db.SelectContext(ctx, &accounts, query); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Create inserts a new account at version 1.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	account.Version = 1

	const query = `INSERT INTO users (id, name, email, restaurant_name, role, status, approved_at, approved_by, version, created_at, updated_at) VALUES (:id, :name, :email, :restaurant_name, :role, :status, :approved_at, :approved_by, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// UpdateProfile applies patch when the stored version still equals version.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id string, version int, patch models.ProfilePatch) (*models.Account, error) {
	sets := make([]string, 0, len(patch)+2)
	args := []interface{}{id, version}
	for _, field := range models.ProfileFields {
		value, ok := patch[field]
		if !ok {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", field, len(args)))
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("update profile: empty patch")
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)), "version = version + 1")

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 AND version = $2 RETURNING ` + accountColumns
	return r.updateReturning(ctx, "update profile", query, args...)
}

// UpdateStatus records a status transition guarded by version.
func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, version int, change models.StatusChange) (*models.Account, error) {
	query := `UPDATE users SET status = $3, approved_at = $4, approved_by = $5, updated_at = $6, version = version + 1 WHERE id = $1 AND version = $2 RETURNING ` + accountColumns
	return r.updateReturning(ctx, "update status", query, id, version, change.Status, change.ApprovedAt, change.ApprovedBy, time.Now().UTC())
}

// UpdateRole changes the account role guarded by version.
func (r *AccountRepository) UpdateRole(ctx context.Context, id string, version int, role models.AccountRole) (*models.Account, error) {
	query := `UPDATE users SET role = $3, updated_at = $4, version = version + 1 WHERE id = $1 AND version = $2 RETURNING ` + accountColumns
	return r.updateReturning(ctx, "update role", query, id, version, role, time.Now().UTC())
}

func (r *AccountRepository) updateReturning(ctx context.Context, op, query string, args ...interface{}) (*models.Account, error) {
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &account, nil
}

// rowKey canonicalises a caller-supplied primary key. Postgres rejects
// malformed UUID literals with a syntax error, so those never reach a query.
func rowKey(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
