// Package pokeapi resolves pokemon identifiers to display metadata using the
// public PokeAPI (https://pokeapi.co).
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avvvet/pokesimon-services/internal/gamesvc/models"
)

const DefaultBaseURL = "https://pokeapi.co/api/v2"

var (
	ErrNotFound  = errors.New("pokemon not found")
	ErrTransport = errors.New("pokeapi transport error")
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// pokemonResponse is the subset of /pokemon/{id} we read.
type pokemonResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

// GetPokemon fetches a single pokemon. A 404 yields ErrNotFound, anything
// else that keeps us from reading a valid body yields ErrTransport.
func (c *Client) GetPokemon(ctx context.Context, id int) (*models.Pokemon, error) {
	url := fmt.Sprintf("%s/pokemon/%d", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d for pokemon %d", ErrTransport, resp.StatusCode, id)
	}

	var body pokemonResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode pokemon %d: %w", ErrTransport, id, err)
	}

	return &models.Pokemon{
		ID:       body.ID,
		Name:     body.Name,
		ImageURL: body.Sprites.FrontDefault,
	}, nil
}
