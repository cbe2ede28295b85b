package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Nikman800/GambaGame/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureBracket(id, admin string, open bool, created time.Time) *models.Bracket {
	return &models.Bracket{
		ID:                   id,
		Name:                 "Cup " + id,
		Type:                 models.BracketTypeSingle,
		OriginalParticipants: []string{"A", "B", "C"},
		Participants:         []string{"A", "B", "C"},
		Status:               models.BracketStatusCreated,
		Admin:                admin,
		Spectators:           []string{},
		Gamblers:             map[string]int{},
		Bets:                 []models.Bet{},
		MatchResults:         []models.MatchResult{},
		StartingPoints:       100,
		IsOpen:               open,
		CreatedAt:            created,
	}
}

func ids(brackets []*models.Bracket) []string {
	out := make([]string, 0, len(brackets))
	for _, b := range brackets {
		out = append(out, b.ID)
	}
	return out
}

// runBracketRepositoryContract exercises behaviour every BracketRepository must share.
func runBracketRepositoryContract(t *testing.T, repo BracketRepository) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Create and GetByID", func(t *testing.T) {
		b := fixtureBracket("c1", "alice", false, base)
		require.NoError(t, repo.Create(ctx, b))
		assert.False(t, b.UpdatedAt.IsZero())

		got, err := repo.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "Cup c1", got.Name)
		assert.Equal(t, []string{"A", "B", "C"}, got.OriginalParticipants)
		assert.Equal(t, "alice", got.Admin)
		assert.NotNil(t, got.Gamblers)

		assert.ErrorIs(t, repo.Create(ctx, fixtureBracket("c1", "alice", false, base)), ErrBracketConflict)
	})

	t.Run("GetByID missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrBracketNotFound)
	})

	t.Run("Update replaces document", func(t *testing.T) {
		b := fixtureBracket("u1", "alice", false, base.Add(time.Minute))
		require.NoError(t, repo.Create(ctx, b))

		b.Status = models.BracketStatusStarted
		b.CurrentMatch = &models.Match{Player1: "A", Player2: "B", Round: 1, Number: 0}
		b.Gamblers["g1"] = 40
		b.Bets = append(b.Bets, models.Bet{Gambler: "g1", Player: "A", Amount: 60, Round: 1})
		b.IsOpen = true
		require.NoError(t, repo.Update(ctx, b))

		got, err := repo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, models.BracketStatusStarted, got.Status)
		assert.Equal(t, b.CurrentMatch, got.CurrentMatch)
		assert.Equal(t, 40, got.Gamblers["g1"])
		assert.Equal(t, b.Bets, got.Bets)

		assert.ErrorIs(t, repo.Update(ctx, fixtureBracket("ghost", "x", false, base)), ErrBracketNotFound)
	})

	t.Run("returned documents are not shared", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "c1")
		require.NoError(t, err)
		got.Gamblers["intruder"] = 1

		again, err := repo.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.NotContains(t, again.Gamblers, "intruder")
	})

	t.Run("ListByAdmin and ListOpen", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, fixtureBracket("l1", "bob", true, base.Add(2*time.Minute))))
		require.NoError(t, repo.Create(ctx, fixtureBracket("l2", "bob", false, base.Add(3*time.Minute))))
		require.NoError(t, repo.Create(ctx, fixtureBracket("l3", "carol", true, base.Add(4*time.Minute))))

		mine, err := repo.ListByAdmin(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"l2", "l1"}, ids(mine))

		open, err := repo.ListOpen(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"l3", "l1", "u1"}, ids(open))

		none, err := repo.ListByAdmin(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "l3"))
		_, err := repo.GetByID(ctx, "l3")
		assert.ErrorIs(t, err, ErrBracketNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "l3"), ErrBracketNotFound)
	})
}

func TestMemoryBracketRepository(t *testing.T) {
	runBracketRepositoryContract(t, NewMemoryBracketRepository())
}

func TestCachedMemoryBracketRepository(t *testing.T) {
	runBracketRepositoryContract(t, NewCachedBracketRepository(NewMemoryBracketRepository(), 16, time.Minute))
}
