package comm

import (
	"encoding/json"
	"time"

	"github.com/avvvet/pokesimon-services/internal/gamesvc/models"
)

// message types exchanged between socket and game service
const (
	TypeCreateGame         = "crear-juego"
	TypeCreateGameResp     = "crear-juego-response"
	TypeSubmitSequence     = "enviar-secuencia"
	TypeSubmitSequenceResp = "enviar-secuencia-response"
	TypeError              = "error"
)

// NATS subjects
const (
	TopicSocketService = "socket.service"
	TopicGameService   = "game.service"
	TopicGameEvents    = "game.events"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "crear-juego", "enviar-secuencia"
	Data     json.RawMessage `json:"data,omitempty"`
	SocketId string          `json:"socketid,omitempty"`
}

type CreateGameResponse struct {
	GameID      string           `json:"idJuego"`
	InitialTeam []models.Pokemon `json:"equipoInicial"`
}

// SequenceResponse is either a continuation (Sequence set) or a finished
// game (Score set).
type SequenceResponse struct {
	Result   string           `json:"resultado"`
	Sequence []models.Pokemon `json:"pokemonSequence,omitempty"`
	Score    *int             `json:"score,omitempty"`
}

// prefixes of the error messages sent to clients
const (
	CreateGameErrPrefix = "Error iniciando el juego: "
	SubmitErrPrefix     = "Error comparando la secuencia: "
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type GameEvent struct {
	Type      string    `json:"type"` // game-created, round-passed, game-finished
	GameID    string    `json:"idJuego"`
	Round     int       `json:"round"`
	Score     *int      `json:"score,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// round results on the wire
const (
	ResultContinue = "SEGUIR"
	ResultFinished = "TERMINADO"
)

// NewSequenceResponse builds the reply for a played round. score is sent only
// when result is ResultFinished, sequence only otherwise.
func NewSequenceResponse(result string, sequence []models.Pokemon, score int) SequenceResponse {
	if result == ResultFinished {
		return SequenceResponse{Result: result, Score: &score}
	}
	return SequenceResponse{Result: result, Sequence: sequence}
}
