package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Nikman800/GambaGame/models"
)

type memoryBracketRepository struct {
	mu       sync.RWMutex
	brackets map[string]*models.Bracket
}

// NewMemoryBracketRepository keeps brackets in process memory. Used when no
// database is configured and in tests.
func NewMemoryBracketRepository() BracketRepository {
	return &memoryBracketRepository{brackets: make(map[string]*models.Bracket)}
}

func (r *memoryBracketRepository) Create(_ context.Context, b *models.Bracket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.brackets[b.ID]; exists {
		return ErrBracketConflict
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	r.brackets[b.ID] = b.Clone()
	return nil
}

func (r *memoryBracketRepository) GetByID(_ context.Context, id string) (*models.Bracket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.brackets[id]
	if !ok {
		return nil, ErrBracketNotFound
	}
	return b.Clone(), nil
}

func (r *memoryBracketRepository) Update(_ context.Context, b *models.Bracket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.brackets[b.ID]; !ok {
		return ErrBracketNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	r.brackets[b.ID] = b.Clone()
	return nil
}

func (r *memoryBracketRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.brackets[id]; !ok {
		return ErrBracketNotFound
	}
	delete(r.brackets, id)
	return nil
}

func (r *memoryBracketRepository) ListByAdmin(_ context.Context, adminID string) ([]*models.Bracket, error) {
	return r.filter(func(b *models.Bracket) bool { return b.Admin == adminID }), nil
}

func (r *memoryBracketRepository) ListOpen(_ context.Context) ([]*models.Bracket, error) {
	return r.filter(func(b *models.Bracket) bool { return b.IsOpen }), nil
}

func (r *memoryBracketRepository) filter(keep func(*models.Bracket) bool) []*models.Bracket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Bracket, 0)
	for _, b := range r.brackets {
		if keep(b) {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
