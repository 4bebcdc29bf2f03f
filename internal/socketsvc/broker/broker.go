package broker

import (
	"encoding/json"

	"github.com/avvvet/pokesimon-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type Broker struct {
	Conn *nats.Conn
	Send func(socketId string, v interface{}) error
}

func NewBroker(conn *nats.Conn, fncSend func(string, interface{}) error) *Broker {
	return &Broker{
		Conn: conn,
		Send: fncSend,
	}
}

// consume replies from the game service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to game service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

func (b *Broker) handleMessages(msgNats *nats.Msg) {
	b.Relay(msgNats.Data)
}

// Relay sends a game service reply to the socket it is addressed to. Replies
// for sockets owned by another instance are dropped.
func (b *Broker) Relay(data []byte) {
	message := &comm.WSMessage{}
	if err := json.Unmarshal(data, message); err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case comm.TypeCreateGameResp, comm.TypeSubmitSequenceResp, comm.TypeError:
		if err := b.Send(message.SocketId, message); err != nil {
			log.Debugf("not relaying %s to socket %s: %v", message.Type, message.SocketId, err)
		}
	default:
		log.Errorf("Unknown message %s", message.Type)
	}
}
