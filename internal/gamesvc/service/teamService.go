package service

import (
	"context"

	"github.com/avvvet/pokesimon-services/internal/gamesvc/models"
	"golang.org/x/sync/errgroup"
)

// DefaultLookupConcurrency bounds the in-flight pokemon lookups per Resolve.
const DefaultLookupConcurrency = 6

// PokemonLookup resolves a pokemon id to its display entry.
type PokemonLookup interface {
	GetPokemon(ctx context.Context, id int) (*models.Pokemon, error)
}

type TeamService struct {
	lookup      PokemonLookup
	concurrency int
}

func NewTeamService(lookup PokemonLookup, concurrency int) *TeamService {
	if concurrency <= 0 {
		concurrency = DefaultLookupConcurrency
	}
	return &TeamService{lookup: lookup, concurrency: concurrency}
}

// Resolve looks up every id and returns the entries in input order. The
// first failed lookup cancels the rest and its error is returned as is, with
// no partial result.
func (s *TeamService) Resolve(ctx context.Context, ids []int) ([]models.Pokemon, error) {
	team := make([]models.Pokemon, len(ids))
	if len(ids) == 0 {
		return team, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			p, err := s.lookup.GetPokemon(ctx, id)
			if err != nil {
				return err
			}
			team[i] = *p // each goroutine owns its slot
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return team, nil
}
