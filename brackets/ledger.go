package brackets

import (
	"math"

	"github.com/Nikman800/GambaGame/models"
)

// Join adds userID as a spectator and gambler with the starting balance.
// Joining twice is a no-op and yields no events.
func Join(b *models.Bracket, userID string) (*models.Bracket, []Event, error) {
	if b.IsAdmin(userID) {
		return nil, nil, ErrAdminCannotJoin
	}

	_, gambling := b.Gamblers[userID]
	if gambling && b.HasSpectator(userID) {
		return b, nil, nil
	}

	nb := b.Clone()
	if nb.Gamblers == nil {
		nb.Gamblers = map[string]int{}
	}
	if !nb.HasSpectator(userID) {
		nb.Spectators = append(nb.Spectators, userID)
	}
	if !gambling {
		nb.Gamblers[userID] = nb.StartingPoints
	}
	return nb, []Event{UpdatedEvent(nb)}, nil
}

// PlaceBet escrows amount from gambler on player of the pending match.
func PlaceBet(b *models.Bracket, gambler, player string, amount int) (*models.Bracket, []Event, error) {
	if b.IsAdmin(gambler) {
		return nil, nil, ErrAdminCannotBet
	}
	points, ok := b.Gamblers[gambler]
	if !ok {
		return nil, nil, ErrNotAGambler
	}
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if b.Status != models.BracketStatusStarted || b.CurrentMatch == nil {
		return nil, nil, ErrNoPendingMatch
	}
	if !b.BettingPhase {
		return nil, nil, ErrBettingClosed
	}
	if !b.CurrentMatch.Has(player) {
		return nil, nil, ErrInvalidPlayer
	}
	if amount > points {
		return nil, nil, ErrInsufficientFunds
	}

	nb := b.Clone()
	nb.Gamblers[gambler] = points - amount
	nb.Bets = append(nb.Bets, models.Bet{
		Gambler: gambler,
		Player:  player,
		Amount:  amount,
		Round:   nb.CurrentMatch.Round,
		Match:   nb.CurrentMatch.Number,
	})
	return nb, []Event{UpdatedEvent(nb)}, nil
}

// Odds returns the payout multiplier per player of the pending match.
// A side nobody backed pays 1.
func Odds(b *models.Bracket) map[string]float64 {
	if b.CurrentMatch == nil {
		return map[string]float64{}
	}
	return oddsFor(b.Bets, *b.CurrentMatch)
}

// Totals returns the amount wagered per player of the pending match.
func Totals(b *models.Bracket) map[string]int {
	totals := map[string]int{}
	if b.CurrentMatch == nil {
		return totals
	}
	m := *b.CurrentMatch
	for _, p := range players(m) {
		totals[p] = 0
	}
	for _, bet := range matchBets(b.Bets, m) {
		totals[bet.Player] += bet.Amount
	}
	return totals
}

func oddsFor(bets []models.Bet, m models.Match) map[string]float64 {
	totals := map[string]int{}
	for _, bet := range matchBets(bets, m) {
		totals[bet.Player] += bet.Amount
	}

	odds := map[string]float64{}
	ps := players(m)
	for i, p := range ps {
		own := totals[p]
		other := 0
		if len(ps) == 2 {
			other = totals[ps[1-i]]
		}
		if own > 0 {
			odds[p] = float64(other)/float64(own) + 1
		} else {
			odds[p] = 1
		}
	}
	return odds
}

func settle(b *models.Bracket, m models.Match, winner string, odds map[string]float64) {
	for _, bet := range matchBets(b.Bets, m) {
		if bet.Player != winner {
			continue
		}
		if _, ok := b.Gamblers[bet.Gambler]; !ok {
			continue
		}
		b.Gamblers[bet.Gambler] += int(math.Floor(float64(bet.Amount) * odds[winner]))
	}
}

func matchBets(bets []models.Bet, m models.Match) []models.Bet {
	var out []models.Bet
	for _, bet := range bets {
		if bet.Round == m.Round && bet.Match == m.Number && m.Has(bet.Player) {
			out = append(out, bet)
		}
	}
	return out
}

func players(m models.Match) []string {
	if m.IsBye() {
		return []string{m.Player1}
	}
	return []string{m.Player1, m.Player2}
}
