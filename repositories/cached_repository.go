package repositories

import (
	"context"
	"time"

	"github.com/Nikman800/GambaGame/metrics"
	"github.com/Nikman800/GambaGame/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedBracketRepository serves GetByID from an expiring LRU and writes through
// to the wrapped repository. Lists always go to the backing store.
type CachedBracketRepository struct {
	next BracketRepository
	lru  *expirable.LRU[string, *models.Bracket]
}

func NewCachedBracketRepository(next BracketRepository, size int, ttl time.Duration) *CachedBracketRepository {
	return &CachedBracketRepository{
		next: next,
		lru:  expirable.NewLRU[string, *models.Bracket](size, nil, ttl),
	}
}

func (r *CachedBracketRepository) Create(ctx context.Context, b *models.Bracket) error {
	if err := r.next.Create(ctx, b); err != nil {
		return err
	}
	r.lru.Add(b.ID, b.Clone())
	return nil
}

func (r *CachedBracketRepository) GetByID(ctx context.Context, id string) (*models.Bracket, error) {
	if b, ok := r.lru.Get(id); ok {
		metrics.CacheLookups.WithLabelValues(metrics.ResultHit).Inc()
		return b.Clone(), nil
	}
	metrics.CacheLookups.WithLabelValues(metrics.ResultMiss).Inc()

	b, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.lru.Add(id, b.Clone())
	return b, nil
}

func (r *CachedBracketRepository) Update(ctx context.Context, b *models.Bracket) error {
	if err := r.next.Update(ctx, b); err != nil {
		r.lru.Remove(b.ID)
		return err
	}
	r.lru.Add(b.ID, b.Clone())
	return nil
}

// Delete evicts only after the backing row is gone.
func (r *CachedBracketRepository) Delete(ctx context.Context, id string) error {
	err := r.next.Delete(ctx, id)
	r.lru.Remove(id)
	return err
}

func (r *CachedBracketRepository) ListByAdmin(ctx context.Context, adminID string) ([]*models.Bracket, error) {
	return r.next.ListByAdmin(ctx, adminID)
}

func (r *CachedBracketRepository) ListOpen(ctx context.Context) ([]*models.Bracket, error) {
	return r.next.ListOpen(ctx)
}

// Invalidate drops id from the cache.
func (r *CachedBracketRepository) Invalidate(id string) {
	r.lru.Remove(id)
}
