// Package brackets derives the per-round display structure for the admin
// match list and the web viewer, and pushes live updates over websockets.
// The provider owns the match graph; this package only groups and labels
// what the synchronizer has materialized locally.
package brackets

import (
	"fmt"
	"sort"

	"github.com/cyberarena/tournament-bot/models"
)

// MatchView is one row of a round group with the ready/TBD state resolved.
type MatchView struct {
	Match *models.Match `json:"match"`
	Ready bool          `json:"ready"`
}

type RoundGroup struct {
	Label       string             `json:"label"`
	RoundNumber int                `json:"round_number"`
	BracketType models.BracketType `json:"bracket_type"`
	Matches     []MatchView        `json:"matches"`
}

// GroupMatches produces the ordered grouping used by the list UI for the
// given tournament format.
func GroupMatches(matches []*models.Match, format models.TournamentFormat) []RoundGroup {
	switch format {
	case models.FormatDoubleElimination:
		return groupDoubleElimination(matches)
	case models.FormatRoundRobin:
		return groupByRound(matches, tourLabel(false))
	case models.FormatSwiss:
		return groupByRound(matches, tourLabel(true))
	default:
		return groupSingleElimination(matches)
	}
}

func groupSingleElimination(matches []*models.Match) []RoundGroup {
	groups := groupByRound(matches, nil)
	if len(groups) == 0 {
		return groups
	}
	total := groups[len(groups)-1].RoundNumber
	for i := range groups {
		groups[i].Label = singleElimLabel(groups[i].RoundNumber, total)
	}
	return groups
}

// singleElimLabel names rounds from the tail: the last round is the grand
// final, the one before it the semi-final, and so on.
func singleElimLabel(round, total int) string {
	switch {
	case round == total:
		return "Grand Final"
	case round == total-1:
		return "Semi-final"
	case round == total-2:
		return "Quarter-final"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}

// groupDoubleElimination presents the winner bracket first, then the loser
// bracket, with the round-999 grand final emitted last.
func groupDoubleElimination(matches []*models.Match) []RoundGroup {
	var winner, loser, grandFinal []*models.Match
	for _, m := range matches {
		switch {
		case m.RoundNumber == models.GrandFinalRound:
			grandFinal = append(grandFinal, m)
		case m.BracketType == models.BracketLoser:
			loser = append(loser, m)
		default:
			winner = append(winner, m)
		}
	}

	groups := make([]RoundGroup, 0)
	for _, g := range groupByRound(winner, nil) {
		g.Label = fmt.Sprintf("WB R%d", g.RoundNumber)
		g.BracketType = models.BracketWinner
		groups = append(groups, g)
	}
	for _, g := range groupByRound(loser, nil) {
		g.Label = fmt.Sprintf("LB R%d", g.RoundNumber)
		g.BracketType = models.BracketLoser
		groups = append(groups, g)
	}
	if len(grandFinal) > 0 {
		groups = append(groups, RoundGroup{
			Label:       "Grand Final",
			RoundNumber: models.GrandFinalRound,
			BracketType: models.BracketWinner,
			Matches:     toViews(grandFinal),
		})
	}
	return groups
}

// tourLabel labels rounds "Tour N"; for swiss the last round becomes
// "Final Tour".
func tourLabel(finalTour bool) func(round, total int) string {
	return func(round, total int) string {
		if finalTour && round == total {
			return "Final Tour"
		}
		return fmt.Sprintf("Tour %d", round)
	}
}

func groupByRound(matches []*models.Match, label func(round, total int) string) []RoundGroup {
	byRound := make(map[int][]*models.Match)
	for _, m := range matches {
		byRound[m.RoundNumber] = append(byRound[m.RoundNumber], m)
	}

	rounds := make([]int, 0, len(byRound))
	for r := range byRound {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)

	groups := make([]RoundGroup, 0, len(rounds))
	for _, r := range rounds {
		ms := byRound[r]
		sort.Slice(ms, func(i, j int) bool { return ms[i].MatchNumber < ms[j].MatchNumber })

		g := RoundGroup{RoundNumber: r, Matches: toViews(ms)}
		if len(ms) > 0 {
			g.BracketType = ms[0].BracketType
		}
		if label != nil {
			g.Label = label(r, rounds[len(rounds)-1])
		}
		groups = append(groups, g)
	}
	return groups
}

func toViews(matches []*models.Match) []MatchView {
	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, MatchView{Match: m, Ready: m.Ready()})
	}
	return views
}
