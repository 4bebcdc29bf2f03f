package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avvvet/pokesimon-services/internal/comm"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/models"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/service"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type GameEngine interface {
	CreateGame(ctx context.Context) (*service.NewGame, error)
	SubmitSequence(ctx context.Context, gameID string, submitted []int) (*service.RoundOutcome, error)
}

type publisher interface {
	Publish(subj string, data []byte) error
}

// Broker plays games for socket clients over NATS and announces game
// lifecycle events. It satisfies service.Notifier.
type Broker struct {
	Conn    *nats.Conn
	pub     publisher
	engine  GameEngine
	timeout time.Duration
}

func NewBroker(nc *nats.Conn, engine GameEngine) *Broker {
	return &Broker{
		Conn:    nc,
		pub:     nc,
		engine:  engine,
		timeout: 30 * time.Second,
	}
}

// consume message from socket service
func (b *Broker) SubscribSocketService(topic string) (*nats.Subscription, error) {
	return b.Conn.Subscribe(topic, b.handleMessage)
}

// consume message from socket service, shared among game service instances
func (b *Broker) QueueSubscribSocketService(topic, queueGroup string) (*nats.Subscription, error) {
	return b.Conn.QueueSubscribe(topic, queueGroup, b.handleMessage)
}

func (b *Broker) handleMessage(msgNat *nats.Msg) {
	b.dispatch(msgNat.Data)
}

// dispatch handles one socket message and publishes the reply for it.
func (b *Broker) dispatch(data []byte) {
	msg := &comm.WSMessage{}
	if err := json.Unmarshal(data, msg); err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	switch msg.Type {
	case comm.TypeCreateGame:
		game, err := b.engine.CreateGame(ctx)
		if err != nil {
			log.Errorf("Error [GameService.CreateGame] %s", err)
			b.PublishError(comm.CreateGameErrPrefix+err.Error(), msg.SocketId)
			return
		}

		b.PublishResponse(comm.TypeCreateGameResp, comm.CreateGameResponse{
			GameID:      game.GameID,
			InitialTeam: game.InitialTeam,
		}, msg.SocketId)
	case comm.TypeSubmitSequence:
		req, err := comm.DecodeSequenceData(msg.Data)
		if err != nil {
			log.Warnf("rejected sequence from socket %s: %s", msg.SocketId, err)
			b.PublishError(comm.InvalidRequestMessage(err), msg.SocketId)
			return
		}

		outcome, err := b.engine.SubmitSequence(ctx, req.GameID, req.Pokemons)
		if err != nil {
			log.Errorf("Error [GameService.SubmitSequence] game %s: %s", req.GameID, err)
			b.PublishError(comm.SubmitErrPrefix+err.Error(), msg.SocketId)
			return
		}

		b.PublishResponse(comm.TypeSubmitSequenceResp, comm.NewSequenceResponse(string(outcome.Result), outcome.Sequence, outcome.Score), msg.SocketId)
	default:
		log.Warnf("unknown message type from socket service: %s", msg.Type)
	}
}

func (b *Broker) PublishResponse(msgType string, body interface{}, socketId string) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Errorf("[PublishResponse] unable to marshal %s for socket %s: %s", msgType, socketId, err)
		return
	}

	msg := &comm.WSMessage{
		Type:     msgType,
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.Publish(comm.TopicGameService, payload)
}

func (b *Broker) PublishError(message string, socketId string) {
	b.PublishResponse(comm.TypeError, comm.ErrorResponse{Error: message}, socketId)
}

func (b *Broker) GameCreated(game *models.Game) {
	b.publishEvent("game-created", game, nil)
}

func (b *Broker) RoundPassed(game *models.Game) {
	b.publishEvent("round-passed", game, nil)
}

func (b *Broker) GameFinished(game *models.Game, score int) {
	b.publishEvent("game-finished", game, &score)
}

func (b *Broker) publishEvent(eventType string, game *models.Game, score *int) {
	payload, err := json.Marshal(comm.GameEvent{
		Type:      eventType,
		GameID:    game.ID,
		Round:     game.Round(),
		Score:     score,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Errorf("[publishEvent] unable to marshal %s for game %s: %s", eventType, game.ID, err)
		return
	}

	b.Publish(comm.TopicGameEvents, payload)
}

// Publish never blocks on the network; nats.Conn buffers outgoing messages.
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.pub.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
