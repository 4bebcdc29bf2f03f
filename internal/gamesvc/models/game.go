package models

import "time"

// TeamSize is the number of pokemon in a game's initial team.
const TeamSize = 6

type Game struct {
	ID          string    `json:"id"`
	InitialTeam []int     `json:"initial_team"` // fixed at creation
	Sequence    []int     `json:"pokemon_sequence"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Round is the number of rounds already passed.
func (g *Game) Round() int {
	return len(g.Sequence)
}
