package brackets

import (
	"testing"
	"time"

	"github.com/Nikman800/GambaGame/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBracket(participants ...string) *models.Bracket {
	return &models.Bracket{
		ID:                   "b1",
		Name:                 "Friday Cup",
		Type:                 models.BracketTypeSingle,
		OriginalParticipants: participants,
		Participants:         participants,
		Status:               models.BracketStatusCreated,
		Admin:                "admin",
		Gamblers:             map[string]int{},
		StartingPoints:       100,
	}
}

func mustStart(t *testing.T, b *models.Bracket) *models.Bracket {
	t.Helper()
	nb, events, err := Start(b)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventBracketStarted, events[0].Name)
	return nb
}

func mustSubmit(t *testing.T, b *models.Bracket, winner string) (*models.Bracket, []Event) {
	t.Helper()
	nb, events, err := SubmitResult(b, winner, PayoutNone)
	require.NoError(t, err)
	return nb, events
}

func TestTotalRounds(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalRounds(tt.n), "n=%d", tt.n)
	}
}

func TestStart(t *testing.T) {
	b := newBracket("A", "B", "C", "D")
	b.Gamblers["g1"] = 12

	nb := mustStart(t, b)

	assert.Equal(t, models.BracketStatusStarted, nb.Status)
	assert.Equal(t, 1, nb.CurrentRound)
	assert.Equal(t, 1, nb.CurrentMatchNumber)
	assert.Equal(t, &models.Match{Player1: "A", Player2: "B", Round: 1, Number: 0}, nb.CurrentMatch)
	assert.True(t, nb.BettingPhase)
	assert.Equal(t, 1, nb.Runs)
	assert.Equal(t, 12, nb.Gamblers["g1"])
	assert.Empty(t, nb.MatchResults)

	// input is not touched
	assert.Equal(t, models.BracketStatusCreated, b.Status)
	assert.Equal(t, 12, b.Gamblers["g1"])
}

func TestStartRejects(t *testing.T) {
	b := newBracket("A", "B")
	b.Type = models.BracketTypeDouble
	_, _, err := Start(b)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, _, err = Start(newBracket("A"))
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)
}

func TestFourPlayerBracket(t *testing.T) {
	b := mustStart(t, newBracket("A", "B", "C", "D"))

	b, events := mustSubmit(t, b, "A")
	require.Len(t, events, 1)
	ended := events[0].Payload.(MatchEndedPayload)
	assert.Equal(t, "A", ended.Winner)
	assert.Equal(t, &models.Match{Player1: "C", Player2: "D", Round: 1, Number: 1}, ended.NextMatch)
	assert.Equal(t, ended.NextMatch, b.CurrentMatch)

	b, _ = mustSubmit(t, b, "D")
	assert.Equal(t, 2, b.CurrentRound)
	assert.Equal(t, []string{"A", "D"}, b.Participants)
	assert.Equal(t, &models.Match{Player1: "A", Player2: "D", Round: 2, Number: 0}, b.CurrentMatch)

	b, events = mustSubmit(t, b, "A")
	require.Len(t, events, 2)
	assert.Equal(t, EventMatchEnded, events[0].Name)
	assert.Equal(t, EventBracketEnded, events[1].Name)
	assert.Equal(t, "A", events[1].Payload.(BracketEndedPayload).Winner)

	assert.Equal(t, models.BracketStatusCompleted, b.Status)
	assert.Nil(t, b.CurrentMatch)
	assert.False(t, b.BettingPhase)
	assert.Equal(t, []models.MatchResult{
		{Round: 1, Match: 0, Winner: "A"},
		{Round: 1, Match: 1, Winner: "D"},
		{Round: 2, Match: 0, Winner: "A"},
	}, b.MatchResults)
	assert.Equal(t, "A", Winner(b))
}

func TestOddBracketGivesBye(t *testing.T) {
	b := mustStart(t, newBracket("A", "B", "C"))

	b, _ = mustSubmit(t, b, "A")
	require.NotNil(t, b.CurrentMatch)
	assert.True(t, b.CurrentMatch.IsBye())
	assert.Equal(t, "C", b.CurrentMatch.Player1)

	_, _, err := SubmitResult(b, models.Bye, PayoutNone)
	assert.ErrorIs(t, err, ErrInvalidWinner)

	b, _ = mustSubmit(t, b, "C")
	assert.Equal(t, &models.Match{Player1: "A", Player2: "C", Round: 2, Number: 0}, b.CurrentMatch)

	b, _ = mustSubmit(t, b, "C")
	assert.Equal(t, models.BracketStatusCompleted, b.Status)
	assert.Equal(t, "C", Winner(b))
}

func TestEightPlayerBracketPlaysSevenMatches(t *testing.T) {
	b := mustStart(t, newBracket("A", "B", "C", "D", "E", "F", "G", "H"))

	played := 0
	for b.Status == models.BracketStatusStarted {
		b, _ = mustSubmit(t, b, b.CurrentMatch.Player1)
		played++
		require.LessOrEqual(t, played, 7)
	}
	assert.Equal(t, 7, played)
	assert.Equal(t, "A", Winner(b))
}

func TestSubmitResultRejects(t *testing.T) {
	_, _, err := SubmitResult(newBracket("A", "B"), "A", PayoutNone)
	assert.ErrorIs(t, err, ErrNotStarted)

	b := mustStart(t, newBracket("A", "B", "C", "D"))
	_, _, err = SubmitResult(b, "C", PayoutNone)
	assert.ErrorIs(t, err, ErrInvalidWinner)

	dup := b.Clone()
	dup.MatchResults = append(dup.MatchResults, models.MatchResult{Round: 1, Match: 0, Winner: "B"})
	_, _, err = SubmitResult(dup, "A", PayoutNone)
	assert.ErrorIs(t, err, ErrResultAlreadyRecorded)
}

func TestStartMatchClosesBetting(t *testing.T) {
	_, _, err := StartMatch(newBracket("A", "B"))
	assert.ErrorIs(t, err, ErrNotStarted)

	b := mustStart(t, newBracket("A", "B"))
	nb, events, err := StartMatch(b)
	require.NoError(t, err)
	assert.False(t, nb.BettingPhase)
	assert.True(t, b.BettingPhase)
	require.Len(t, events, 1)
	assert.Equal(t, EventMatchStarted, events[0].Name)
}

func TestEndEarlyThenRestart(t *testing.T) {
	b := newBracket("A", "B", "C", "D")
	b, _, err := Join(b, "g1")
	require.NoError(t, err)
	b = mustStart(t, b)
	b, _, err = PlaceBet(b, "g1", "A", 40)
	require.NoError(t, err)
	b, _ = mustSubmit(t, b, "A")

	b, events, err := EndEarly(b)
	require.NoError(t, err)
	require.Len(t, events, 1)
	payload := events[0].Payload.(BracketEndedPayload)
	assert.True(t, payload.Early)
	assert.Empty(t, payload.Winner)

	assert.Equal(t, models.BracketStatusCompleted, b.Status)
	assert.Empty(t, b.MatchResults)
	assert.Empty(t, b.Bets)
	assert.Nil(t, b.CurrentMatch)
	assert.Equal(t, 1, b.CurrentRound)
	assert.Equal(t, 0, b.CurrentMatchNumber)
	assert.Equal(t, 100, b.Gamblers["g1"])
	assert.Equal(t, []string{"A", "B", "C", "D"}, b.Participants)
	assert.Empty(t, Winner(b))

	b = mustStart(t, b)
	assert.Equal(t, &models.Match{Player1: "A", Player2: "B", Round: 1, Number: 0}, b.CurrentMatch)
	assert.Equal(t, 2, b.Runs)
	assert.Equal(t, 100, b.Gamblers["g1"])
}

func TestRestartAfterCompletionKeepsBalances(t *testing.T) {
	b := newBracket("A", "B")
	b, _, err := Join(b, "g1")
	require.NoError(t, err)
	b = mustStart(t, b)
	b, _, err = PlaceBet(b, "g1", "A", 40)
	require.NoError(t, err)
	b, _ = mustSubmit(t, b, "A")
	require.Equal(t, models.BracketStatusCompleted, b.Status)
	require.Equal(t, 60, b.Gamblers["g1"])

	b = mustStart(t, b)
	assert.Equal(t, 60, b.Gamblers["g1"])
	assert.Empty(t, b.Bets)
	assert.Empty(t, b.MatchResults)
	assert.Equal(t, 2, b.Runs)
}

func TestFinalResults(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	_, _, err := FinalResults(newBracket("A", "B"), now)
	assert.ErrorIs(t, err, ErrNotCompleted)

	b := newBracket("A", "B")
	b, _, _ = Join(b, "g1")
	b, _, _ = Join(b, "g2")
	b = mustStart(t, b)
	b, _, err = PlaceBet(b, "g2", "B", 30)
	require.NoError(t, err)
	b, _ = mustSubmit(t, b, "A")

	b, result, err := FinalResults(b, now)
	require.NoError(t, err)
	assert.Equal(t, "A", result.BracketWinner)
	assert.True(t, result.HasSpectators)
	assert.Equal(t, []models.SpectatorResult{
		{Gambler: "g1", Points: 100},
		{Gambler: "g2", Points: 70},
	}, result.SpectatorResults)
	assert.Equal(t, []string{"A", "B"}, result.FinalBracket.Participants)
	assert.Equal(t, now, result.CreatedAt)
	require.Len(t, b.FinalResults, 1)

	b, _, err = FinalResults(b, now)
	require.NoError(t, err)
	assert.Len(t, b.FinalResults, 2)
}

func TestFinalResultsWithoutSpectators(t *testing.T) {
	b := mustStart(t, newBracket("A", "B"))
	b, _, _ = EndEarly(b)

	_, result, err := FinalResults(b, time.Now())
	require.NoError(t, err)
	assert.False(t, result.HasSpectators)
	assert.Empty(t, result.BracketWinner)
	assert.Empty(t, result.SpectatorResults)
}
