package models

import (
	"sort"
	"time"
)

// BracketStatus mirrors the lifecycle of a bracket.
type BracketStatus string

const (
	BracketStatusCreated   BracketStatus = "created"
	BracketStatusStarted   BracketStatus = "started"
	BracketStatusCompleted BracketStatus = "completed"
)

// BracketType is the elimination format picked at creation.
type BracketType string

const (
	BracketTypeSingle     BracketType = "single"
	BracketTypeDouble     BracketType = "double"
	BracketTypeTriple     BracketType = "triple"
	BracketTypeRoundRobin BracketType = "roundRobin"
)

// Bye is the placeholder opponent of a participant that advances without playing.
const Bye = "BYE"

// Bracket is the root document of one tournament. It is stored and loaded as a whole.
type Bracket struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description,omitempty"`
	Type                 BracketType    `json:"type"`
	OriginalParticipants []string       `json:"original_participants"`
	Participants         []string       `json:"participants"`
	Status               BracketStatus  `json:"status"`
	CurrentRound         int            `json:"current_round"`
	CurrentMatchNumber   int            `json:"current_match_number"`
	CurrentMatch         *Match         `json:"current_match,omitempty"`
	MatchResults         []MatchResult  `json:"match_results"`
	BettingPhase         bool           `json:"betting_phase"`
	Admin                string         `json:"admin"`
	Spectators           []string       `json:"spectators"`
	Gamblers             map[string]int `json:"gamblers"`
	Bets                 []Bet          `json:"bets"`
	StartingPoints       int            `json:"starting_points"`
	FinalResults         []FinalResult  `json:"final_results,omitempty"`
	IsOpen               bool           `json:"is_open"`
	Runs                 int            `json:"runs"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// Match is a pending pairing. Number is the index assigned when the match was produced.
type Match struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Round   int    `json:"round"`
	Number  int    `json:"number"`
}

// IsBye reports whether the second slot is the bye placeholder.
func (m Match) IsBye() bool {
	return m.Player2 == Bye
}

// Has reports whether name plays in the match. The bye placeholder never counts.
func (m Match) Has(name string) bool {
	if name == "" || name == Bye {
		return false
	}
	return name == m.Player1 || name == m.Player2
}

// MatchResult records the winner of one match; (Round, Match) is unique per bracket.
type MatchResult struct {
	Round  int    `json:"round"`
	Match  int    `json:"match"`
	Winner string `json:"winner"`
}

// Bet is an escrowed wager. Round and Match pin it to the match it was placed on.
type Bet struct {
	Gambler string `json:"gambler"`
	Player  string `json:"player"`
	Amount  int    `json:"amount"`
	Round   int    `json:"round"`
	Match   int    `json:"match"`
}

// SpectatorResult is one row of the final standings.
type SpectatorResult struct {
	Gambler string `json:"gambler"`
	Points  int    `json:"points"`
}

// FinalBracket is the shape of the bracket as it ended.
type FinalBracket struct {
	Participants []string      `json:"participants"`
	MatchResults []MatchResult `json:"match_results"`
}

// FinalResult is a terminal snapshot appended every time results are read after completion.
type FinalResult struct {
	BracketWinner    string            `json:"bracket_winner"`
	SpectatorResults []SpectatorResult `json:"spectator_results"`
	FinalBracket     FinalBracket      `json:"final_bracket"`
	HasSpectators    bool              `json:"has_spectators"`
	CreatedAt        time.Time         `json:"created_at"`
}

// IsAdmin reports whether userID administers the bracket.
func (b *Bracket) IsAdmin(userID string) bool {
	return userID != "" && b.Admin == userID
}

// HasSpectator reports whether userID already joined as a spectator.
func (b *Bracket) HasSpectator(userID string) bool {
	for _, s := range b.Spectators {
		if s == userID {
			return true
		}
	}
	return false
}

// HasResult reports whether a result is already recorded for (round, match).
func (b *Bracket) HasResult(round, match int) bool {
	for _, r := range b.MatchResults {
		if r.Round == round && r.Match == match {
			return true
		}
	}
	return false
}

// Standings returns gambler balances ordered by points, highest first.
func (b *Bracket) Standings() []SpectatorResult {
	standings := make([]SpectatorResult, 0, len(b.Gamblers))
	for gambler, points := range b.Gamblers {
		standings = append(standings, SpectatorResult{Gambler: gambler, Points: points})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].Gambler < standings[j].Gambler
	})
	return standings
}

// Clone returns a deep copy so transitions never alias the stored document.
func (b *Bracket) Clone() *Bracket {
	if b == nil {
		return nil
	}
	c := *b
	c.OriginalParticipants = append([]string(nil), b.OriginalParticipants...)
	c.Participants = append([]string(nil), b.Participants...)
	c.MatchResults = append([]MatchResult(nil), b.MatchResults...)
	c.Spectators = append([]string(nil), b.Spectators...)
	c.Bets = append([]Bet(nil), b.Bets...)
	if b.CurrentMatch != nil {
		m := *b.CurrentMatch
		c.CurrentMatch = &m
	}
	if b.Gamblers != nil {
		c.Gamblers = make(map[string]int, len(b.Gamblers))
		for k, v := range b.Gamblers {
			c.Gamblers[k] = v
		}
	}
	if b.FinalResults != nil {
		c.FinalResults = make([]FinalResult, len(b.FinalResults))
		for i, fr := range b.FinalResults {
			fr.SpectatorResults = append([]SpectatorResult(nil), fr.SpectatorResults...)
			fr.FinalBracket.Participants = append([]string(nil), fr.FinalBracket.Participants...)
			fr.FinalBracket.MatchResults = append([]MatchResult(nil), fr.FinalBracket.MatchResults...)
			c.FinalResults[i] = fr
		}
	}
	return &c
}
