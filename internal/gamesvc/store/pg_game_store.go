package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/pokesimon-services/internal/gamesvc/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgGameStore struct {
	db *pgxpool.Pool
}

func NewPgGameStore(db *pgxpool.Pool) *PgGameStore {
	return &PgGameStore{db: db}
}

func (s *PgGameStore) CreateGame(ctx context.Context, initialTeam, sequence []int) (*models.Game, error) {
	query := `
		INSERT INTO games (id, initial_team, sequence)
		VALUES ($1, $2, $3)
		RETURNING id, initial_team, sequence, created_at, updated_at
	`

	game, err := scanGame(s.db.QueryRow(ctx, query, uuid.NewString(), nonNil(initialTeam), nonNil(sequence)))
	if err != nil {
		return nil, fmt.Errorf("%w: insert game: %w", ErrPersistence, err)
	}

	return game, nil
}

func (s *PgGameStore) GetGameByID(ctx context.Context, gameID string) (*models.Game, error) {
	id, err := uuid.Parse(gameID)
	if err != nil {
		return nil, ErrGameNotFound
	}

	query := `
		SELECT id, initial_team, sequence, created_at, updated_at
		FROM games
		WHERE id = $1
	`

	game, err := scanGame(s.db.QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("%w: get game by id: %w", ErrPersistence, err)
	}

	return game, nil
}

func (s *PgGameStore) UpdateSequence(ctx context.Context, gameID string, expected, next []int) (*models.Game, error) {
	id, err := uuid.Parse(gameID)
	if err != nil {
		return nil, ErrGameNotFound
	}

	// the sequence predicate makes this a compare-and-swap
	query := `
		UPDATE games
		SET sequence = $3, updated_at = now()
		WHERE id = $1 AND sequence = $2::bigint[]
		RETURNING id, initial_team, sequence, created_at, updated_at
	`

	game, err := scanGame(s.db.QueryRow(ctx, query, id.String(), nonNil(expected), nonNil(next)))
	if err == nil {
		return game, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: update game sequence: %w", ErrPersistence, err)
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, id.String()).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%w: check game: %w", ErrPersistence, err)
	}
	if !exists {
		return nil, ErrGameNotFound
	}
	return nil, ErrConflict
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var game models.Game
	err := row.Scan(
		&game.ID,
		&game.InitialTeam,
		&game.Sequence,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	game.InitialTeam = nonNil(game.InitialTeam)
	game.Sequence = nonNil(game.Sequence)

	return &game, nil
}
