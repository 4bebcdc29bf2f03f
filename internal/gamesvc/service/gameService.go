package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/avvvet/pokesimon-services/internal/gamesvc/models"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/random"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/store"
)

// DefaultCatalogSize is the number of pokemon ids the game draws from.
const DefaultCatalogSize = 805

var (
	ErrGameCreationFailed   = errors.New("no se pudo crear el juego")
	ErrSequenceUpdateFailed = errors.New("no se pudo actualizar la secuencia")
)

// RoundResult values are sent to clients as is.
type RoundResult string

const (
	ResultContinue RoundResult = "SEGUIR"
	ResultFinished RoundResult = "TERMINADO"
)

type NewGame struct {
	GameID      string
	InitialTeam []models.Pokemon
}

// RoundOutcome carries Sequence when Result is ResultContinue and Score when
// it is ResultFinished.
type RoundOutcome struct {
	Result   RoundResult
	Sequence []models.Pokemon
	Score    int
}

// Notifier is told about game lifecycle changes. Calls must not block.
type Notifier interface {
	GameCreated(game *models.Game)
	RoundPassed(game *models.Game)
	GameFinished(game *models.Game, score int)
}

type GameService struct {
	gameStore   store.GameStore
	teamService *TeamService
	rng         random.Source
	catalogSize int
	notifier    Notifier
}

func NewGameService(gameStore store.GameStore, teamService *TeamService, rng random.Source, catalogSize int) *GameService {
	if catalogSize <= 0 {
		catalogSize = DefaultCatalogSize
	}
	return &GameService{
		gameStore:   gameStore,
		teamService: teamService,
		rng:         rng,
		catalogSize: catalogSize,
	}
}

func (s *GameService) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateGame draws a team of models.TeamSize pokemon (repeats allowed),
// resolves it for display and persists a game with an empty sequence.
// Resolution happens first so a failed lookup leaves nothing behind.
func (s *GameService) CreateGame(ctx context.Context) (*NewGame, error) {
	ids := make([]int, models.TeamSize)
	for i := range ids {
		id, err := s.drawPokemon()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGameCreationFailed, err)
		}
		ids[i] = id
	}

	team, err := s.teamService.Resolve(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGameCreationFailed, err)
	}

	game, err := s.gameStore.CreateGame(ctx, ids, []int{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGameCreationFailed, err)
	}

	if s.notifier != nil {
		s.notifier.GameCreated(game)
	}

	return &NewGame{GameID: game.ID, InitialTeam: team}, nil
}

// SubmitSequence plays one round. A submission that does not pass
// MatchesRound finishes the game with the Score of the submission and leaves
// the stored game untouched, so repeating it yields the same outcome.
func (s *GameService) SubmitSequence(ctx context.Context, gameID string, submitted []int) (*RoundOutcome, error) {
	game, err := s.gameStore.GetGameByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrGameNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSequenceUpdateFailed, err)
	}

	expected := game.Sequence
	if !MatchesRound(expected, submitted) {
		score := Score(expected, submitted)
		if s.notifier != nil {
			s.notifier.GameFinished(game, score)
		}
		return &RoundOutcome{Result: ResultFinished, Score: score}, nil
	}

	id, err := s.drawPokemon()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSequenceUpdateFailed, err)
	}
	next := append(slices.Clone(expected), id)

	updated, err := s.gameStore.UpdateSequence(ctx, gameID, expected, next)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSequenceUpdateFailed, err)
	}

	sequence, err := s.teamService.Resolve(ctx, updated.Sequence)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSequenceUpdateFailed, err)
	}

	if s.notifier != nil {
		s.notifier.RoundPassed(updated)
	}

	return &RoundOutcome{Result: ResultContinue, Sequence: sequence}, nil
}

func (s *GameService) drawPokemon() (int, error) {
	return s.rng.NextInRange(1, s.catalogSize)
}

// MatchesRound reports whether submitted repeats expected exactly and adds
// one more id. The value of the added id is not checked.
func MatchesRound(expected, submitted []int) bool {
	if len(submitted) != len(expected)+1 {
		return false
	}
	return slices.Equal(submitted[:len(expected)], expected)
}

// Score counts the leading ids of submitted that match expected. A submission
// that repeats all of expected scores len(expected).
func Score(expected, submitted []int) int {
	n := 0
	for n < len(expected) && n < len(submitted) && submitted[n] == expected[n] {
		n++
	}
	return n
}
