package ws

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/avvvet/pokesimon-services/internal/comm"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownSocket = errors.New("unknown socket")

// Publisher forwards socket messages to the game service.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// client serializes writes; gorilla connections allow one writer at a time.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

type Ws struct {
	connMap sync.Map // socketId -> *client
	Broker  Publisher
}

func NewWs() *Ws {
	return &Ws{}
}

// SocketMessage handles a message from a web client.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case comm.TypeCreateGame:
		s.forward(socketId, message)
	case comm.TypeSubmitSequence:
		// reject bad payloads here instead of a round trip to the game service
		if _, err := comm.DecodeSequenceData(message.Data); err != nil {
			log.Warnf("invalid sequence from socket %s: %s", socketId, err)
			s.SendError(socketId, comm.InvalidRequestMessage(err))
			return
		}
		s.forward(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
		s.SendError(socketId, "tipo de mensaje desconocido: "+message.Type)
	}
}

func (s *Ws) forward(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	if err := s.Broker.Publish(comm.TopicSocketService, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", comm.TopicSocketService, err)
		s.SendError(socketId, "servicio de juego no disponible")
		return
	}

	log.Debugf("Published %s message for socket %s", msg.Type, socketId)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, &client{conn: conn})
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
}

// Send writes v as JSON to the socket.
func (s *Ws) Send(socketId string, v interface{}) error {
	c, ok := s.connMap.Load(socketId)
	if !ok {
		return ErrUnknownSocket
	}

	cl := c.(*client)
	cl.mu.Lock()
	defer cl.mu.Unlock()

	return cl.conn.WriteJSON(v)
}

func (s *Ws) SendError(socketId string, message string) {
	data, _ := json.Marshal(comm.ErrorResponse{Error: message})
	msg := &comm.WSMessage{Type: comm.TypeError, Data: data, SocketId: socketId}

	if err := s.Send(socketId, msg); err != nil {
		log.Errorf("Failed to send error message to socket %s: %v", socketId, err)
	}
}
