package brackets

import (
	"math"
	"time"

	"github.com/Nikman800/GambaGame/models"
)

// PayoutPolicy decides what happens to bets on a decided match.
type PayoutPolicy int

const (
	// PayoutNone leaves escrowed amounts with the house.
	PayoutNone PayoutPolicy = iota
	// PayoutOdds credits winning bets with floor(amount * odds) at the closing odds.
	PayoutOdds
)

// TotalRounds is the number of rounds a single elimination bracket of n participants plays.
func TotalRounds(n int) int {
	if n < 2 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(n))))
}

// Start resets b to its first round and produces the first pairing.
// It is valid from any status and increments Runs. Gambler balances carry over.
func Start(b *models.Bracket) (*models.Bracket, []Event, error) {
	if b.Type != models.BracketTypeSingle {
		return nil, nil, ErrUnsupportedType
	}
	if len(b.OriginalParticipants) < 2 {
		return nil, nil, ErrNotEnoughParticipants
	}

	nb := b.Clone()
	nb.Status = models.BracketStatusStarted
	nb.CurrentRound = 1
	nb.CurrentMatchNumber = 0
	nb.MatchResults = []models.MatchResult{}
	nb.Bets = []models.Bet{}
	nb.Participants = append([]string(nil), nb.OriginalParticipants...)
	nb.Runs++

	next, complete, err := Advance(nb)
	if err != nil {
		return nil, nil, err
	}
	if complete {
		return nil, nil, ErrNotEnoughParticipants
	}
	nb.CurrentMatch = next
	nb.BettingPhase = true

	return nb, []Event{{
		Name: EventBracketStarted,
		Payload: BracketStartedPayload{
			BracketID: nb.ID,
			Name:      nb.Name,
			Round:     nb.CurrentRound,
			Match:     next,
			Runs:      nb.Runs,
		},
	}}, nil
}

// Advance moves b to its next pairing in place. It reports complete once the
// final of the last round has a recorded winner.
func Advance(b *models.Bracket) (*models.Match, bool, error) {
	if b.CurrentRound == 1 && b.CurrentMatchNumber == 0 {
		b.Participants = append([]string(nil), b.OriginalParticipants...)
	}

	matchesPerRound := (len(b.Participants) + 1) / 2
	winners := roundWinners(b, b.CurrentRound)

	if b.CurrentRound == TotalRounds(len(b.OriginalParticipants)) && len(winners) == 1 {
		return nil, true, nil
	}

	if len(winners) == matchesPerRound {
		b.CurrentRound++
		b.CurrentMatchNumber = 0
		b.Participants = winners
	}

	if len(b.Participants) < 2 {
		return nil, true, nil
	}

	i := 2 * b.CurrentMatchNumber
	if i >= len(b.Participants) {
		return nil, false, ErrNoMatchAvailable
	}
	player2 := models.Bye
	if i+1 < len(b.Participants) {
		player2 = b.Participants[i+1]
	}
	m := &models.Match{
		Player1: b.Participants[i],
		Player2: player2,
		Round:   b.CurrentRound,
		Number:  b.CurrentMatchNumber,
	}
	b.CurrentMatchNumber++
	return m, false, nil
}

// StartMatch closes betting on the pending match.
func StartMatch(b *models.Bracket) (*models.Bracket, []Event, error) {
	if b.Status != models.BracketStatusStarted {
		return nil, nil, ErrNotStarted
	}
	if b.CurrentMatch == nil {
		return nil, nil, ErrNoPendingMatch
	}

	nb := b.Clone()
	nb.BettingPhase = false
	return nb, []Event{{
		Name: EventMatchStarted,
		Payload: MatchStartedPayload{
			BracketID: nb.ID,
			Round:     nb.CurrentRound,
			Match:     nb.CurrentMatch,
		},
	}}, nil
}

// SubmitResult records winner for the pending match, settles its bets under
// policy and advances to the next pairing or completes the bracket.
func SubmitResult(b *models.Bracket, winner string, policy PayoutPolicy) (*models.Bracket, []Event, error) {
	if b.Status != models.BracketStatusStarted {
		return nil, nil, ErrNotStarted
	}
	if b.CurrentMatch == nil {
		return nil, nil, ErrNoPendingMatch
	}
	if !b.CurrentMatch.Has(winner) {
		return nil, nil, ErrInvalidWinner
	}
	played := *b.CurrentMatch
	if b.HasResult(played.Round, played.Number) {
		return nil, nil, ErrResultAlreadyRecorded
	}

	nb := b.Clone()
	closing := oddsFor(nb.Bets, played)
	if policy == PayoutOdds {
		settle(nb, played, winner, closing)
	}
	nb.MatchResults = append(nb.MatchResults, models.MatchResult{
		Round:  played.Round,
		Match:  played.Number,
		Winner: winner,
	})

	next, complete, err := Advance(nb)
	if err != nil {
		return nil, nil, err
	}

	events := []Event{{
		Name: EventMatchEnded,
		Payload: MatchEndedPayload{
			BracketID: nb.ID,
			Winner:    winner,
			Round:     played.Round,
			NextMatch: next,
			Odds:      closing,
		},
	}}
	if complete {
		nb.Status = models.BracketStatusCompleted
		nb.CurrentMatch = nil
		nb.BettingPhase = false
		if policy == PayoutOdds {
			events = append(events, UpdatedEvent(nb))
		}
		events = append(events, Event{
			Name: EventBracketEnded,
			Payload: BracketEndedPayload{
				BracketID:    nb.ID,
				Winner:       winner,
				MatchResults: nb.MatchResults,
			},
		})
		return nb, events, nil
	}

	nb.CurrentMatch = next
	nb.BettingPhase = true
	if policy == PayoutOdds {
		events = append(events, UpdatedEvent(nb))
	}
	return nb, events, nil
}

// EndEarly terminates b without a winner. Points, results, bets and the
// working participant list are reset so a later Start begins clean.
func EndEarly(b *models.Bracket) (*models.Bracket, []Event, error) {
	nb := b.Clone()
	resetPoints(nb)
	nb.MatchResults = []models.MatchResult{}
	nb.Bets = []models.Bet{}
	nb.Participants = append([]string(nil), nb.OriginalParticipants...)
	nb.CurrentMatch = nil
	nb.CurrentRound = 1
	nb.CurrentMatchNumber = 0
	nb.BettingPhase = false
	nb.Status = models.BracketStatusCompleted

	return nb, []Event{{
		Name: EventBracketEnded,
		Payload: BracketEndedPayload{
			BracketID:    nb.ID,
			MatchResults: nb.MatchResults,
			Early:        true,
		},
	}}, nil
}

// FinalResults appends a terminal snapshot of a completed bracket and returns it.
func FinalResults(b *models.Bracket, now time.Time) (*models.Bracket, models.FinalResult, error) {
	if b.Status != models.BracketStatusCompleted {
		return nil, models.FinalResult{}, ErrNotCompleted
	}

	nb := b.Clone()
	result := models.FinalResult{
		BracketWinner:    Winner(nb),
		SpectatorResults: nb.Standings(),
		FinalBracket: models.FinalBracket{
			Participants: append([]string(nil), nb.OriginalParticipants...),
			MatchResults: append([]models.MatchResult(nil), nb.MatchResults...),
		},
		HasSpectators: len(nb.Gamblers) > 0,
		CreatedAt:     now.UTC(),
	}
	nb.FinalResults = append(nb.FinalResults, result)
	return nb, result, nil
}

// Winner returns the winner of the final, or "" when the last round was never decided.
func Winner(b *models.Bracket) string {
	if len(b.MatchResults) == 0 {
		return ""
	}
	last := b.MatchResults[len(b.MatchResults)-1]
	if last.Round != TotalRounds(len(b.OriginalParticipants)) {
		return ""
	}
	return last.Winner
}

func roundWinners(b *models.Bracket, round int) []string {
	var winners []string
	for _, r := range b.MatchResults {
		if r.Round == round {
			winners = append(winners, r.Winner)
		}
	}
	return winners
}

func resetPoints(b *models.Bracket) {
	if b.Gamblers == nil {
		b.Gamblers = map[string]int{}
	}
	for g := range b.Gamblers {
		b.Gamblers[g] = b.StartingPoints
	}
}
