package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avvvet/pokesimon-services/internal/comm"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/service"
	"github.com/go-chi/chi/middleware"
	log "github.com/sirupsen/logrus"
)

// GameEngine is the part of service.GameService the transports need.
type GameEngine interface {
	CreateGame(ctx context.Context) (*service.NewGame, error)
	SubmitSequence(ctx context.Context, gameID string, submitted []int) (*service.RoundOutcome, error)
}

type Handler struct {
	engine GameEngine
}

func NewHandler(engine GameEngine) *Handler {
	return &Handler{engine: engine}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

// CreateGameHandler serves GET /api/games/crearJuego.
func (h *Handler) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	game, err := h.engine.CreateGame(r.Context())
	if err != nil {
		log.WithField("request_id", middleware.GetReqID(r.Context())).
			Errorf("Error [GameService.CreateGame] %s", err)
		h.CreateResponse(w, http.StatusInternalServerError, comm.ErrorResponse{Error: comm.CreateGameErrPrefix + err.Error()})
		return
	}

	h.CreateResponse(w, http.StatusOK, comm.CreateGameResponse{
		GameID:      game.GameID,
		InitialTeam: game.InitialTeam,
	})
}

// SubmitSequenceHandler serves POST /api/games/enviarSecuencia. A lost round
// is a 200 with resultado TERMINADO; only malformed bodies (400) and engine
// failures (500) are errors.
func (h *Handler) SubmitSequenceHandler(w http.ResponseWriter, r *http.Request) {
	logger := log.WithField("request_id", middleware.GetReqID(r.Context()))

	req, err := comm.DecodeSequenceRequest(r.Body)
	if err != nil {
		logger.Warnf("rejected sequence request: %s", err)
		h.CreateResponse(w, http.StatusBadRequest, comm.ErrorResponse{Error: comm.InvalidRequestMessage(err)})
		return
	}

	outcome, err := h.engine.SubmitSequence(r.Context(), req.GameID, req.Pokemons)
	if err != nil {
		logger.WithField("game_id", req.GameID).Errorf("Error [GameService.SubmitSequence] %s", err)
		h.CreateResponse(w, http.StatusInternalServerError, comm.ErrorResponse{Error: comm.SubmitErrPrefix + err.Error()})
		return
	}

	h.CreateResponse(w, http.StatusOK, comm.NewSequenceResponse(string(outcome.Result), outcome.Sequence, outcome.Score))
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, http.StatusOK, Response{
		Message: "game service is running",
		Code:    http.StatusOK,
	})
}
