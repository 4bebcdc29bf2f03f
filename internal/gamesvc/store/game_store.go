package store

import (
	"context"
	"errors"
	"slices"

	"github.com/avvvet/pokesimon-services/internal/gamesvc/models"
)

var (
	ErrGameNotFound = errors.New("Juego no encontrado")
	// ErrConflict means the stored sequence changed since it was read.
	ErrConflict    = errors.New("la secuencia del juego cambió")
	ErrPersistence = errors.New("persistence error")
)

// GameStore persists games. Implementations must return ErrGameNotFound for
// unknown ids (including ids that are not even well formed) and wrap driver
// failures with ErrPersistence.
type GameStore interface {
	CreateGame(ctx context.Context, initialTeam, sequence []int) (*models.Game, error)
	GetGameByID(ctx context.Context, gameID string) (*models.Game, error)

	// UpdateSequence replaces the sequence only if the stored one still
	// equals expected, otherwise it fails with ErrConflict.
	UpdateSequence(ctx context.Context, gameID string, expected, next []int) (*models.Game, error)
}

// nonNil keeps empty sequences from being persisted as NULL.
func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return slices.Clone(s)
}
