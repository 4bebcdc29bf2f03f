package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/avvvet/pokesimon-services/internal/gamesvc/models"
	"github.com/google/uuid"
)

// MemoryGameStore keeps games in a map. State is lost on restart, so it is
// meant for local runs and tests.
type MemoryGameStore struct {
	mu    sync.RWMutex
	games map[string]*models.Game
}

func NewMemoryGameStore() *MemoryGameStore {
	return &MemoryGameStore{games: make(map[string]*models.Game)}
}

func (s *MemoryGameStore) CreateGame(ctx context.Context, initialTeam, sequence []int) (*models.Game, error) {
	now := time.Now().UTC()
	game := &models.Game{
		ID:          uuid.New().String(),
		InitialTeam: nonNil(initialTeam),
		Sequence:    nonNil(sequence),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game

	return clone(game), nil
}

func (s *MemoryGameStore) GetGameByID(ctx context.Context, gameID string) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	game, ok := s.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return clone(game), nil
}

func (s *MemoryGameStore) UpdateSequence(ctx context.Context, gameID string, expected, next []int) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	if !slices.Equal(game.Sequence, expected) {
		return nil, ErrConflict
	}

	game.Sequence = nonNil(next)
	game.UpdatedAt = time.Now().UTC()

	return clone(game), nil
}

// clone hands out copies so callers cannot mutate stored state.
func clone(g *models.Game) *models.Game {
	c := *g
	c.InitialTeam = slices.Clone(g.InitialTeam)
	c.Sequence = slices.Clone(g.Sequence)
	return &c
}
