package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Nikman800/GambaGame/brackets"
	"github.com/Nikman800/GambaGame/logger"
	"github.com/Nikman800/GambaGame/metrics"
	"github.com/Nikman800/GambaGame/models"
	"github.com/Nikman800/GambaGame/repositories"
	"github.com/google/uuid"
)

// Broadcaster fans committed events out to subscribers of a bracket.
type Broadcaster interface {
	Publish(bracketID string, events []brackets.Event)
}

// ResultArchiver stores a final results snapshot and returns where it was put.
type ResultArchiver interface {
	ArchiveFinalResult(ctx context.Context, bracketID string, result models.FinalResult) (string, error)
}

type CreateBracketInput struct {
	Name           string
	Description    string
	Type           models.BracketType
	Participants   []string
	StartingPoints int
	IsOpen         bool
}

// UpdateBracketInput carries the editable fields. Nil fields are left untouched.
type UpdateBracketInput struct {
	Name           *string
	Description    *string
	Type           *models.BracketType
	Participants   []string
	StartingPoints *int
}

// BracketView is a bracket with the odds and pool of its pending match.
type BracketView struct {
	*models.Bracket
	Odds   map[string]float64 `json:"odds"`
	Totals map[string]int     `json:"totals"`
}

// BetsView is the betting log of a bracket with its current pool.
type BetsView struct {
	Bets      []models.Bet       `json:"bets"`
	TotalBets map[string]int     `json:"total_bets"`
	Odds      map[string]float64 `json:"odds"`
	Match     *models.Match      `json:"current_match,omitempty"`
}

type BracketService interface {
	CreateBracket(ctx context.Context, adminID string, input CreateBracketInput) (*models.Bracket, error)
	GetBracket(ctx context.Context, bracketID string) (*BracketView, error)
	GetBets(ctx context.Context, bracketID string) (*BetsView, error)
	ListMyBrackets(ctx context.Context, adminID string) ([]*models.Bracket, error)
	ListOpenBrackets(ctx context.Context) ([]*models.Bracket, error)
	UpdateBracket(ctx context.Context, userID, bracketID string, input UpdateBracketInput) (*models.Bracket, error)
	DeleteBracket(ctx context.Context, userID, bracketID string) error
	SetOpen(ctx context.Context, userID, bracketID string, open bool) (*models.Bracket, error)

	StartBracket(ctx context.Context, userID, bracketID string) (*models.Bracket, error)
	StartMatch(ctx context.Context, userID, bracketID string) (*models.Bracket, error)
	SubmitResult(ctx context.Context, userID, bracketID, winner string) (*models.Bracket, error)
	EndBracket(ctx context.Context, userID, bracketID string) (*models.Bracket, error)

	JoinBracket(ctx context.Context, userID, bracketID string) (*models.Bracket, error)
	PlaceBet(ctx context.Context, userID, bracketID, player string, amount int) (*models.Bracket, error)
	GetFinalResults(ctx context.Context, bracketID string) (*models.FinalResult, error)
}

type BracketServiceOptions struct {
	PayoutEnabled bool
	Logger        *slog.Logger
	Now           func() time.Time
}

type bracketService struct {
	repo        repositories.BracketRepository
	locks       *LockManager
	broadcaster Broadcaster
	archiver    ResultArchiver
	payout      brackets.PayoutPolicy
	logger      *slog.Logger
	now         func() time.Time
}

// NewBracketService wires the bracket operations. archiver may be nil.
func NewBracketService(
	repo repositories.BracketRepository,
	broadcaster Broadcaster,
	archiver ResultArchiver,
	opts BracketServiceOptions,
) BracketService {
	s := &bracketService{
		repo:        repo,
		locks:       NewLockManager(),
		broadcaster: broadcaster,
		archiver:    archiver,
		payout:      brackets.PayoutNone,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if opts.PayoutEnabled {
		s.payout = brackets.PayoutOdds
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *bracketService) CreateBracket(ctx context.Context, adminID string, input CreateBracketInput) (*models.Bracket, error) {
	if adminID == "" {
		return nil, ErrUnauthenticated
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if err := validateType(input.Type); err != nil {
		return nil, err
	}
	participants, err := normalizeParticipants(input.Participants)
	if err != nil {
		return nil, err
	}
	if input.StartingPoints < 0 {
		return nil, fmt.Errorf("%w: starting points must not be negative", ErrValidationFailed)
	}

	now := s.now().UTC()
	b := &models.Bracket{
		ID:                   uuid.NewString(),
		Name:                 name,
		Description:          strings.TrimSpace(input.Description),
		Type:                 input.Type,
		OriginalParticipants: participants,
		Participants:         append([]string(nil), participants...),
		Status:               models.BracketStatusCreated,
		MatchResults:         []models.MatchResult{},
		Admin:                adminID,
		Spectators:           []string{},
		Gamblers:             map[string]int{},
		Bets:                 []models.Bet{},
		StartingPoints:       input.StartingPoints,
		IsOpen:               input.IsOpen,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create bracket: %w", classify(err))
	}
	metrics.BracketTransitions.WithLabelValues("create").Inc()
	logger.FromContext(ctx).Info("bracket created",
		slog.String("bracket_id", b.ID), slog.String("admin", adminID), slog.Int("participants", len(participants)))
	return b, nil
}

func (s *bracketService) GetBracket(ctx context.Context, bracketID string) (*BracketView, error) {
	b, err := s.repo.GetByID(ctx, bracketID)
	if err != nil {
		return nil, classify(err)
	}
	return &BracketView{Bracket: b, Odds: brackets.Odds(b), Totals: brackets.Totals(b)}, nil
}

func (s *bracketService) GetBets(ctx context.Context, bracketID string) (*BetsView, error) {
	b, err := s.repo.GetByID(ctx, bracketID)
	if err != nil {
		return nil, classify(err)
	}
	return &BetsView{
		Bets:      b.Bets,
		TotalBets: brackets.Totals(b),
		Odds:      brackets.Odds(b),
		Match:     b.CurrentMatch,
	}, nil
}

func (s *bracketService) ListMyBrackets(ctx context.Context, adminID string) ([]*models.Bracket, error) {
	if adminID == "" {
		return nil, ErrUnauthenticated
	}
	list, err := s.repo.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brackets of %s: %w", adminID, err)
	}
	return list, nil
}

func (s *bracketService) ListOpenBrackets(ctx context.Context) ([]*models.Bracket, error) {
	list, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open brackets: %w", err)
	}
	return list, nil
}

func (s *bracketService) UpdateBracket(ctx context.Context, userID, bracketID string, input UpdateBracketInput) (*models.Bracket, error) {
	return s.mutate(ctx, "update", userID, bracketID, requireAdmin, func(b *models.Bracket) (*models.Bracket, []brackets.Event, error) {
		if b.Status != models.BracketStatusCreated {
			return nil, nil, fmt.Errorf("%w: a bracket can only be edited before it starts", ErrInvalidState)
		}
		nb := b.Clone()
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return nil, nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
			}
			nb.Name = name
		}
		if input.Description != nil {
			nb.Description = strings.TrimSpace(*input.Description)
		}
		if input.Type != nil {
			if err := validateType(*input.Type); err != nil {
				return nil, nil, err
			}
			nb.Type = *input.Type
		}
		if input.Participants != nil {
			participants, err := normalizeParticipants(input.Participants)
			if err != nil {
				return nil, nil, err
			}
			nb.OriginalParticipants = participants
			nb.Participants = append([]string(nil), participants...)
		}
		if input.StartingPoints != nil {
			if *input.StartingPoints < 0 {
				return nil, nil, fmt.Errorf("%w: starting points must not be negative", ErrValidationFailed)
			}
			nb.StartingPoints = *input.StartingPoints
			for g := range nb.Gamblers {
				nb.Gamblers[g] = nb.StartingPoints
			}
		}
		return nb, []brackets.Event{brackets.UpdatedEvent(nb)}, nil
	})
}

func (s *bracketService) DeleteBracket(ctx context.Context, userID, bracketID string) error {
	lock := s.locks.GetLock(bracketID)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.repo.GetByID(ctx, bracketID)
	if err != nil {
		s.forgetIfMissing(bracketID, err)
		return classify(err)
	}
	if err := requireAdmin(b, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, bracketID); err != nil {
		return fmt.Errorf("failed to delete bracket %s: %w", bracketID, classify(err))
	}
	s.locks.Forget(bracketID)
	metrics.BracketTransitions.WithLabelValues("delete").Inc()
	logger.FromContext(ctx).Info("bracket deleted", slog.String("bracket_id", bracketID))
	return nil
}

func (s *bracketService) SetOpen(ctx context.Context, userID, bracketID string, open bool) (*models.Bracket, error) {
	op := "close"
	if open {
		op = "open"
	}
	return s.mutate(ctx, op, userID, bracketID, requireAdmin, func(b *models.Bracket) (*models.Bracket, []brackets.Event, error) {
		if b.IsOpen == open {
			return b, nil, nil
		}
		nb := b.Clone()
		nb.IsOpen = open
		return nb, []brackets.Event{brackets.UpdatedEvent(nb)}, nil
	})
}

func (s *bracketService) StartBracket(ctx context.Context, userID, bracketID string) (*models.Bracket, error) {
	return s.mutate(ctx, "start", userID, bracketID, requireAdmin, brackets.Start)
}

func (s *bracketService) StartMatch(ctx context.Context, userID, bracketID string) (*models.Bracket, error) {
	return s.mutate(ctx, "start_match", userID, bracketID, requireAdmin, brackets.StartMatch)
}

func (s *bracketService) SubmitResult(ctx context.Context, userID, bracketID, winner string) (*models.Bracket, error) {
	winner = strings.TrimSpace(winner)
	return s.mutate(ctx, "submit_result", userID, bracketID, requireAdmin, func(b *models.Bracket) (*models.Bracket, []brackets.Event, error) {
		return brackets.SubmitResult(b, winner, s.payout)
	})
}

func (s *bracketService) EndBracket(ctx context.Context, userID, bracketID string) (*models.Bracket, error) {
	return s.mutate(ctx, "end_early", userID, bracketID, requireAdmin, brackets.EndEarly)
}

func (s *bracketService) JoinBracket(ctx context.Context, userID, bracketID string) (*models.Bracket, error) {
	return s.mutate(ctx, "join", userID, bracketID, nil, func(b *models.Bracket) (*models.Bracket, []brackets.Event, error) {
		return brackets.Join(b, userID)
	})
}

func (s *bracketService) PlaceBet(ctx context.Context, userID, bracketID, player string, amount int) (*models.Bracket, error) {
	player = strings.TrimSpace(player)
	nb, err := s.mutate(ctx, "bet", userID, bracketID, nil, func(b *models.Bracket) (*models.Bracket, []brackets.Event, error) {
		return brackets.PlaceBet(b, userID, player, amount)
	})
	if err != nil {
		return nil, err
	}
	metrics.BetsPlaced.Inc()
	metrics.PointsWagered.Add(float64(amount))
	return nb, nil
}

// GetFinalResults appends a snapshot to a completed bracket and archives it when an archiver is set.
func (s *bracketService) GetFinalResults(ctx context.Context, bracketID string) (*models.FinalResult, error) {
	var result models.FinalResult
	_, err := s.mutate(ctx, "final_results", "", bracketID, nil, func(b *models.Bracket) (*models.Bracket, []brackets.Event, error) {
		nb, r, err := brackets.FinalResults(b, s.now())
		if err != nil {
			return nil, nil, err
		}
		result = r
		return nb, nil, nil
	})
	if err != nil {
		return nil, err
	}

	if s.archiver != nil {
		location, archiveErr := s.archiver.ArchiveFinalResult(ctx, bracketID, result)
		if archiveErr != nil {
			metrics.ArchiveFailures.Inc()
			logger.FromContext(ctx).Warn("failed to archive final results",
				slog.String("bracket_id", bracketID), slog.Any("error", archiveErr))
		} else {
			logger.FromContext(ctx).Info("final results archived",
				slog.String("bracket_id", bracketID), slog.String("location", location))
		}
	}
	return &result, nil
}

type transition func(b *models.Bracket) (*models.Bracket, []brackets.Event, error)

// mutate runs fn under the bracket's lock: load, authorize, transition, persist, broadcast.
// A transition that returns its input unchanged is not persisted.
func (s *bracketService) mutate(
	ctx context.Context,
	op, userID, bracketID string,
	authorize func(b *models.Bracket, userID string) error,
	fn transition,
) (*models.Bracket, error) {
	lock := s.locks.GetLock(bracketID)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.repo.GetByID(ctx, bracketID)
	if err != nil {
		s.forgetIfMissing(bracketID, err)
		return nil, classify(err)
	}
	if authorize != nil {
		if err := authorize(b, userID); err != nil {
			return nil, err
		}
	}

	nb, events, err := fn(b)
	if err != nil {
		return nil, classify(err)
	}
	if nb == b {
		return nb, nil
	}

	if err := s.repo.Update(ctx, nb); err != nil {
		return nil, fmt.Errorf("failed to persist bracket %s after %s: %w", bracketID, op, classify(err))
	}
	metrics.BracketTransitions.WithLabelValues(op).Inc()

	if len(events) > 0 && s.broadcaster != nil {
		s.broadcaster.Publish(bracketID, events)
	}

	logger.FromContext(ctx).Info("bracket updated",
		slog.String("bracket_id", bracketID),
		slog.String("operation", op),
		slog.String("status", string(nb.Status)),
		slog.Int("events", len(events)))
	return nb, nil
}

// forgetIfMissing drops the lock of an id the store does not know. Callers hold the lock.
func (s *bracketService) forgetIfMissing(bracketID string, err error) {
	if errors.Is(err, repositories.ErrBracketNotFound) {
		s.locks.Forget(bracketID)
	}
}

func requireAdmin(b *models.Bracket, userID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if !b.IsAdmin(userID) {
		return fmt.Errorf("%w: only the bracket admin can do this", ErrForbidden)
	}
	return nil
}

func validateType(t models.BracketType) error {
	switch t {
	case models.BracketTypeSingle, models.BracketTypeDouble, models.BracketTypeTriple, models.BracketTypeRoundRobin:
		return nil
	}
	return fmt.Errorf("%w: unknown bracket type %q", ErrValidationFailed, t)
}

// normalizeParticipants trims names and rejects blanks, duplicates and the bye placeholder.
func normalizeParticipants(names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if n == models.Bye {
			return nil, fmt.Errorf("%w: %q is reserved", ErrValidationFailed, models.Bye)
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: duplicate participant %q", ErrValidationFailed, n)
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("%w: at least two participants are required", ErrValidationFailed)
	}
	return out, nil
}
