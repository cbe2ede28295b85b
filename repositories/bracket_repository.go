package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Nikman800/GambaGame/models"
	"github.com/lib/pq"
)

var (
	ErrBracketNotFound = errors.New("bracket not found")
	ErrBracketConflict = errors.New("bracket id already exists")
)

// BracketRepository persists whole bracket documents.
type BracketRepository interface {
	Create(ctx context.Context, bracket *models.Bracket) error
	GetByID(ctx context.Context, id string) (*models.Bracket, error)
	Update(ctx context.Context, bracket *models.Bracket) error
	Delete(ctx context.Context, id string) error
	ListByAdmin(ctx context.Context, adminID string) ([]*models.Bracket, error)
	ListOpen(ctx context.Context) ([]*models.Bracket, error)
}

type postgresBracketRepository struct {
	db SQLExecutor
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) Create(ctx context.Context, b *models.Bracket) error {
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode bracket %s: %w", b.ID, err)
	}

	query := `
		INSERT INTO brackets (id, admin_id, name, is_open, status, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		b.ID, b.Admin, b.Name, b.IsOpen, b.Status, string(doc), b.CreatedAt, b.UpdatedAt,
	)
	return r.handleBracketError(err)
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, id string) (*models.Bracket, error) {
	query := `SELECT document FROM brackets WHERE id = $1`

	var doc []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	return decodeBracket(doc)
}

// Update replaces the stored document of b.
func (r *postgresBracketRepository) Update(ctx context.Context, b *models.Bracket) error {
	b.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode bracket %s: %w", b.ID, err)
	}

	query := `
		UPDATE brackets SET
			name = $1,
			is_open = $2,
			status = $3,
			document = $4,
			updated_at = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query, b.Name, b.IsOpen, b.Status, string(doc), b.UpdatedAt, b.ID)
	if err != nil {
		return r.handleBracketError(err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM brackets WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleBracketError(err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) ListByAdmin(ctx context.Context, adminID string) ([]*models.Bracket, error) {
	query := `SELECT document FROM brackets WHERE admin_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, adminID)
}

func (r *postgresBracketRepository) ListOpen(ctx context.Context) ([]*models.Bracket, error) {
	query := `SELECT document FROM brackets WHERE is_open ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *postgresBracketRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Bracket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query brackets: %w", err)
	}
	defer rows.Close()

	brackets := make([]*models.Bracket, 0)
	for rows.Next() {
		var doc []byte
		if scanErr := rows.Scan(&doc); scanErr != nil {
			return nil, fmt.Errorf("failed to scan bracket: %w", scanErr)
		}
		b, decodeErr := decodeBracket(doc)
		if decodeErr != nil {
			return nil, decodeErr
		}
		brackets = append(brackets, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket rows iteration: %w", err)
	}
	return brackets, nil
}

func decodeBracket(doc []byte) (*models.Bracket, error) {
	var b models.Bracket
	if err := json.Unmarshal(doc, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bracket document: %w", err)
	}
	if b.Gamblers == nil {
		b.Gamblers = map[string]int{}
	}
	return &b, nil
}

func (r *postgresBracketRepository) handleBracketError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrBracketConflict
	}
	return err
}
