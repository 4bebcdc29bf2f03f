package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avvvet/pokesimon-services/internal/gamesvc/models"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/random"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/store"
)

// fakeLookup names every pokemon after its id unless told to fail.
type fakeLookup struct {
	fail  map[int]error
	delay func(id int) time.Duration
	calls atomic.Int32
}

func (f *fakeLookup) GetPokemon(ctx context.Context, id int) (*models.Pokemon, error) {
	f.calls.Add(1)
	if f.delay != nil {
		select {
		case <-time.After(f.delay(id)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.fail[id]; ok {
		return nil, err
	}
	return &models.Pokemon{
		ID:       id,
		Name:     fmt.Sprintf("pokemon-%d", id),
		ImageURL: fmt.Sprintf("url-%d", id),
	}, nil
}

// sequenceSource replays values in order, wrapping around.
type sequenceSource struct {
	mu     sync.Mutex
	values []int
	next   int
}

func newSequenceSource(values ...int) *sequenceSource {
	return &sequenceSource{values: values}
}

func (s *sequenceSource) NextInRange(low, high int) (int, error) {
	if low > high {
		return 0, random.ErrInvalidRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next%len(s.values)]
	s.next++
	return v, nil
}

type failingSource struct{}

func (failingSource) NextInRange(low, high int) (int, error) {
	return 0, random.ErrInvalidRange
}

// scriptedStore wraps a GameStore and lets a test inject failures or run a
// hook between the read and the write of a round.
type scriptedStore struct {
	store.GameStore
	createErr    error
	getErr       error
	updateErr    error
	beforeUpdate func()
	creates      int
}

func (s *scriptedStore) CreateGame(ctx context.Context, initialTeam, sequence []int) (*models.Game, error) {
	s.creates++
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.GameStore.CreateGame(ctx, initialTeam, sequence)
}

func (s *scriptedStore) GetGameByID(ctx context.Context, gameID string) (*models.Game, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.GameStore.GetGameByID(ctx, gameID)
}

func (s *scriptedStore) UpdateSequence(ctx context.Context, gameID string, expected, next []int) (*models.Game, error) {
	if s.beforeUpdate != nil {
		s.beforeUpdate()
	}
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.GameStore.UpdateSequence(ctx, gameID, expected, next)
}

type event struct {
	kind   string
	gameID string
	round  int
	score  int
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) GameCreated(game *models.Game) {
	n.record(event{kind: "created", gameID: game.ID, round: game.Round()})
}

func (n *recordingNotifier) RoundPassed(game *models.Game) {
	n.record(event{kind: "round", gameID: game.ID, round: game.Round()})
}

func (n *recordingNotifier) GameFinished(game *models.Game, score int) {
	n.record(event{kind: "finished", gameID: game.ID, round: game.Round(), score: score})
}

func (n *recordingNotifier) record(e event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}
