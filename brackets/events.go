package brackets

import "github.com/Nikman800/GambaGame/models"

// EventName is the wire name of a push event.
type EventName string

const (
	EventBracketStarted EventName = "bracketStarted"
	EventMatchStarted   EventName = "matchStarted"
	EventMatchEnded     EventName = "matchEnded"
	EventBracketUpdated EventName = "bracketUpdated"
	EventBracketEnded   EventName = "bracketEnded"
)

// Event is emitted by a transition and fanned out after the new state is persisted.
type Event struct {
	Name    EventName
	Payload interface{}
}

type BracketStartedPayload struct {
	BracketID string        `json:"bracket_id"`
	Name      string        `json:"name"`
	Round     int           `json:"round"`
	Match     *models.Match `json:"match"`
	Runs      int           `json:"runs"`
}

type MatchStartedPayload struct {
	BracketID string        `json:"bracket_id"`
	Round     int           `json:"round"`
	Match     *models.Match `json:"match"`
}

type MatchEndedPayload struct {
	BracketID string             `json:"bracket_id"`
	Winner    string             `json:"winner"`
	Round     int                `json:"round"`
	NextMatch *models.Match      `json:"next_match"`
	Odds      map[string]float64 `json:"odds"`
}

// BracketUpdatedPayload carries membership and point changes.
type BracketUpdatedPayload struct {
	BracketID  string             `json:"bracket_id"`
	Spectators []string           `json:"spectators"`
	Gamblers   map[string]int     `json:"gamblers"`
	Bets       []models.Bet       `json:"bets"`
	Odds       map[string]float64 `json:"odds"`
	Totals     map[string]int     `json:"totals"`
}

type BracketEndedPayload struct {
	BracketID    string               `json:"bracket_id"`
	Winner       string               `json:"winner,omitempty"`
	MatchResults []models.MatchResult `json:"match_results"`
	Early        bool                 `json:"early"`
}

// UpdatedEvent snapshots membership, balances and the current pool of b.
func UpdatedEvent(b *models.Bracket) Event {
	return Event{
		Name: EventBracketUpdated,
		Payload: BracketUpdatedPayload{
			BracketID:  b.ID,
			Spectators: b.Spectators,
			Gamblers:   b.Gamblers,
			Bets:       b.Bets,
			Odds:       Odds(b),
			Totals:     Totals(b),
		},
	}
}
