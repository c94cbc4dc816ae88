package models

// Game is an administratively managed discipline referenced by tournaments.
// Roster sizes bound how many players a captain may add to a team.
type Game struct {
	ID                   int    `json:"id" db:"id"`
	Name                 string `json:"name" db:"name"`
	ShortName            string `json:"short_name" db:"short_name"`
	RosterMainSize       int    `json:"roster_main_size" db:"roster_main_size"`
	RosterSubstituteSize int    `json:"roster_substitute_size" db:"roster_substitute_size"`
}
