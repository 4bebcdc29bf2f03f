package service

import (
	"context"
	"errors"
	"testing"

	"github.com/avvvet/pokesimon-services/internal/gamesvc/models"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/pokeapi"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/random"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	svc    *GameService
	store  *scriptedStore
	lookup *fakeLookup
}

func newHarness(rng random.Source) *harness {
	h := &harness{
		store:  &scriptedStore{GameStore: store.NewMemoryGameStore()},
		lookup: &fakeLookup{fail: map[int]error{}},
	}
	h.svc = NewGameService(h.store, NewTeamService(h.lookup, 0), rng, 0)
	return h
}

// seedGame stores a game whose sequence is already at the given round.
func (h *harness) seedGame(t *testing.T, sequence ...int) string {
	t.Helper()
	game, err := h.store.GameStore.CreateGame(context.Background(), []int{1, 2, 3, 4, 5, 6}, sequence)
	require.NoError(t, err)
	return game.ID
}

func (h *harness) storedSequence(t *testing.T, gameID string) []int {
	t.Helper()
	game, err := h.store.GameStore.GetGameByID(context.Background(), gameID)
	require.NoError(t, err)
	return game.Sequence
}

func TestCreateGame(t *testing.T) {
	h := newHarness(newSequenceSource(25, 1, 805, 25, 150, 7))

	created, err := h.svc.CreateGame(context.Background())
	require.NoError(t, err)
	require.Len(t, created.InitialTeam, models.TeamSize)
	assert.Equal(t, models.Pokemon{ID: 25, Name: "pokemon-25", ImageURL: "url-25"}, created.InitialTeam[0])
	assert.Equal(t, 805, created.InitialTeam[2].ID)

	game, err := h.store.GetGameByID(context.Background(), created.GameID)
	require.NoError(t, err)
	assert.Equal(t, []int{25, 1, 805, 25, 150, 7}, game.InitialTeam)
	assert.Equal(t, []int{}, game.Sequence)
}

func TestCreateGameDrawsWithinCatalog(t *testing.T) {
	h := newHarness(random.NewSeeded(3, 4))

	for i := 0; i < 20; i++ {
		created, err := h.svc.CreateGame(context.Background())
		require.NoError(t, err)
		require.Len(t, created.InitialTeam, models.TeamSize)
		for _, p := range created.InitialTeam {
			assert.GreaterOrEqual(t, p.ID, 1)
			assert.LessOrEqual(t, p.ID, DefaultCatalogSize)
		}
	}
}

func TestCreateGameLookupFailurePersistsNothing(t *testing.T) {
	h := newHarness(newSequenceSource(1, 2, 3, 4, 5, 6))
	h.lookup.fail[4] = pokeapi.ErrTransport

	_, err := h.svc.CreateGame(context.Background())
	assert.ErrorIs(t, err, ErrGameCreationFailed)
	assert.ErrorIs(t, err, pokeapi.ErrTransport)
	assert.Zero(t, h.store.creates)
}

func TestCreateGameStoreFailure(t *testing.T) {
	h := newHarness(newSequenceSource(1))
	h.store.createErr = errors.New("Save failed")

	_, err := h.svc.CreateGame(context.Background())
	assert.ErrorIs(t, err, ErrGameCreationFailed)
	assert.Contains(t, err.Error(), "Save failed")
}

func TestCreateGameRandomFailure(t *testing.T) {
	h := newHarness(failingSource{})

	_, err := h.svc.CreateGame(context.Background())
	assert.ErrorIs(t, err, ErrGameCreationFailed)
	assert.ErrorIs(t, err, random.ErrInvalidRange)
}

func TestSubmitFirstRound(t *testing.T) {
	h := newHarness(newSequenceSource(42))
	gameID := h.seedGame(t)

	outcome, err := h.svc.SubmitSequence(context.Background(), gameID, []int{7})
	require.NoError(t, err)
	assert.Equal(t, ResultContinue, outcome.Result)
	require.Len(t, outcome.Sequence, 1)
	assert.Equal(t, 42, outcome.Sequence[0].ID)
	assert.Equal(t, []int{42}, h.storedSequence(t, gameID))
}

func TestSubmitMatchingPrefixContinues(t *testing.T) {
	h := newHarness(newSequenceSource(9))
	gameID := h.seedGame(t, 1, 2, 3)

	outcome, err := h.svc.SubmitSequence(context.Background(), gameID, []int{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, ResultContinue, outcome.Result)
	require.Len(t, outcome.Sequence, 4)

	ids := make([]int, len(outcome.Sequence))
	for i, p := range outcome.Sequence {
		ids[i] = p.ID
	}
	assert.Equal(t, []int{1, 2, 3, 9}, ids)
	assert.Equal(t, []int{1, 2, 3, 9}, h.storedSequence(t, gameID))
}

func TestSubmitMismatchFinishes(t *testing.T) {
	tests := []struct {
		name      string
		stored    []int
		submitted []int
		score     int
	}{
		{"wrong element, one short", []int{1, 2, 3}, []int{1, 2, 4}, 2},
		{"wrong element, right length", []int{1, 2, 3}, []int{1, 9, 3, 4}, 1},
		{"too long", []int{1, 2, 3}, []int{1, 2, 3, 4, 5}, 3},
		{"replayed without extension", []int{1, 2, 3}, []int{1, 2, 3}, 3},
		{"one short with right prefix", []int{1, 2, 3}, []int{1, 2}, 2},
		{"empty submission", []int{1}, []int{}, 0},
		{"single wrong id", []int{1}, []int{2}, 0},
		{"first id wrong", []int{4, 5, 6}, []int{1, 5, 6, 7}, 0},
		{"first round with two ids", nil, []int{1, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(newSequenceSource(100))
			gameID := h.seedGame(t, tt.stored...)

			outcome, err := h.svc.SubmitSequence(context.Background(), gameID, tt.submitted)
			require.NoError(t, err)
			assert.Equal(t, ResultFinished, outcome.Result)
			assert.Equal(t, tt.score, outcome.Score)
			assert.Nil(t, outcome.Sequence)
			assert.Equal(t, len(tt.stored), len(h.storedSequence(t, gameID)))
		})
	}
}

func TestSubmitFailureIsIdempotent(t *testing.T) {
	h := newHarness(newSequenceSource(100))
	gameID := h.seedGame(t, 5, 6)

	first, err := h.svc.SubmitSequence(context.Background(), gameID, []int{5, 7, 1})
	require.NoError(t, err)
	second, err := h.svc.SubmitSequence(context.Background(), gameID, []int{5, 7, 1})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []int{5, 6}, h.storedSequence(t, gameID))
}

// A finished game is not marked in the store, so a later submission is
// validated against the unchanged stored sequence again.
func TestSubmitAfterFinishRevalidatesStoredSequence(t *testing.T) {
	h := newHarness(newSequenceSource(8))
	gameID := h.seedGame(t, 5, 6)

	outcome, err := h.svc.SubmitSequence(context.Background(), gameID, []int{6, 5, 1})
	require.NoError(t, err)
	require.Equal(t, ResultFinished, outcome.Result)

	outcome, err = h.svc.SubmitSequence(context.Background(), gameID, []int{5, 6, 1})
	require.NoError(t, err)
	assert.Equal(t, ResultContinue, outcome.Result)
	assert.Equal(t, []int{5, 6, 8}, h.storedSequence(t, gameID))
}

func TestSubmitUnknownGame(t *testing.T) {
	h := newHarness(newSequenceSource(1))

	_, err := h.svc.SubmitSequence(context.Background(), "missing", []int{1})
	assert.ErrorIs(t, err, store.ErrGameNotFound)
	assert.NotErrorIs(t, err, ErrSequenceUpdateFailed)
	assert.Contains(t, err.Error(), "Juego no encontrado")
}

func TestSubmitReadFailure(t *testing.T) {
	h := newHarness(newSequenceSource(1))
	h.store.getErr = store.ErrPersistence

	_, err := h.svc.SubmitSequence(context.Background(), "any", []int{1})
	assert.ErrorIs(t, err, ErrSequenceUpdateFailed)
	assert.ErrorIs(t, err, store.ErrPersistence)
}

func TestSubmitConcurrentRoundConflicts(t *testing.T) {
	h := newHarness(newSequenceSource(50))
	gameID := h.seedGame(t, 1)

	// another round lands between our read and our write
	h.store.beforeUpdate = func() {
		h.store.beforeUpdate = nil
		_, err := h.store.GameStore.UpdateSequence(context.Background(), gameID, []int{1}, []int{1, 77})
		require.NoError(t, err)
	}

	_, err := h.svc.SubmitSequence(context.Background(), gameID, []int{1, 2})
	assert.ErrorIs(t, err, ErrSequenceUpdateFailed)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Equal(t, []int{1, 77}, h.storedSequence(t, gameID))
}

func TestSubmitUpdateFailure(t *testing.T) {
	h := newHarness(newSequenceSource(50))
	gameID := h.seedGame(t)
	h.store.updateErr = errors.New("Update failed")

	_, err := h.svc.SubmitSequence(context.Background(), gameID, []int{3})
	assert.ErrorIs(t, err, ErrSequenceUpdateFailed)
	assert.Contains(t, err.Error(), "Update failed")
}

func TestSubmitLookupFailure(t *testing.T) {
	h := newHarness(newSequenceSource(50))
	h.lookup.fail[50] = pokeapi.ErrNotFound
	gameID := h.seedGame(t)

	_, err := h.svc.SubmitSequence(context.Background(), gameID, []int{3})
	assert.ErrorIs(t, err, ErrSequenceUpdateFailed)
	assert.ErrorIs(t, err, pokeapi.ErrNotFound)
}

func TestNotifierSeesLifecycle(t *testing.T) {
	h := newHarness(newSequenceSource(1, 2, 3, 4, 5, 6, 10))
	n := &recordingNotifier{}
	h.svc.SetNotifier(n)

	created, err := h.svc.CreateGame(context.Background())
	require.NoError(t, err)

	_, err = h.svc.SubmitSequence(context.Background(), created.GameID, []int{1})
	require.NoError(t, err)
	_, err = h.svc.SubmitSequence(context.Background(), created.GameID, []int{10})
	require.NoError(t, err)

	assert.Equal(t, []event{
		{kind: "created", gameID: created.GameID, round: 0},
		{kind: "round", gameID: created.GameID, round: 1},
		{kind: "finished", gameID: created.GameID, round: 1, score: 1},
	}, n.events)
}

func TestScore(t *testing.T) {
	tests := []struct {
		expected  []int
		submitted []int
		want      int
	}{
		{nil, nil, 0},
		{[]int{1}, []int{2}, 0},
		{[]int{1}, []int{1}, 1},
		{[]int{1, 2, 3}, []int{1, 2, 4}, 2},
		{[]int{1, 2, 3}, []int{1, 2, 3, 4, 5}, 3},
		{[]int{1, 2, 3}, []int{}, 0},
		{[]int{1, 2, 3}, []int{9, 2, 3, 4}, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.expected, tt.submitted), "expected=%v submitted=%v", tt.expected, tt.submitted)
	}
}

func TestMatchesRound(t *testing.T) {
	tests := []struct {
		expected  []int
		submitted []int
		want      bool
	}{
		{nil, []int{1}, true},
		{[]int{}, []int{805}, true},
		{[]int{1, 2, 3}, []int{1, 2, 3, 4}, true},
		{[]int{1, 2, 3}, []int{1, 2, 3, 3}, true},
		{nil, nil, false},
		{[]int{1, 2, 3}, []int{1, 2, 4}, false},
		{[]int{1, 2, 3}, []int{3, 2, 1, 4}, false},
		{[]int{1}, []int{2}, false},
		{[]int{1}, []int{1, 1, 1}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchesRound(tt.expected, tt.submitted), "expected=%v submitted=%v", tt.expected, tt.submitted)
	}
}
