package models

// Player is a roster entry. Nickname and InGameID are each unique across all
// players of one tournament, not just within the team.
type Player struct {
	ID           int    `json:"id" db:"id"`
	TeamID       int    `json:"team_id" db:"team_id"`
	Nickname     string `json:"nickname" db:"nickname"`
	InGameID     string `json:"in_game_id" db:"in_game_id"`
	IsSubstitute bool   `json:"is_substitute" db:"is_substitute"`
	Position     int    `json:"position" db:"position"`
}
