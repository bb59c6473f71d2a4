package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"stacks-trivia-service/internal/domain"
	"stacks-trivia-service/internal/game"
)

type WSHandler struct {
	service  *game.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(service *game.Service) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createPayload struct {
	Secret string `json:"secret"`
}

type joinPayload struct {
	SessionID string `json:"sessionId"`
	Address   string `json:"address"`
}

type startPayload struct {
	SessionID string `json:"sessionId"`
}

type answerPayload struct {
	SessionID   string `json:"sessionId"`
	AnswerIndex int    `json:"answerIndex"`
}

type gameCreated struct {
	SessionID string `json:"sessionId"`
}

type joined struct {
	PlayerID string              `json:"playerId"`
	Players  []domain.PlayerInfo `json:"players"`
}

type started struct {
	TotalQuestions int `json:"totalQuestions"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the game
// engine. Each connection gets an opaque identity that doubles as the host or
// participant id; a connection binds to at most one session, whose broadcasts
// it then receives until it disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID, err := gonanoid.New()
	if err != nil {
		log.Printf("generate connection id: %v", err)
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var pumpDone chan struct{}
	var cancelSub func()

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// subscribe binds the connection to a session and pumps its broadcasts
	// into the writer. At most one subscription per connection.
	subscribe := func(sessionID string) {
		if cancelSub != nil {
			return
		}
		updates, cancel, err := h.service.Subscribe(sessionID)
		if err != nil {
			send <- errMsg(err)
			return
		}
		cancelSub = cancel
		pumpDone = make(chan struct{})
		go func() {
			defer close(pumpDone)
			for {
				select {
				case ev, ok := <-updates:
					if !ok {
						return
					}
					select {
					case send <- outboundMessage[any]{Type: ev.Type, Payload: ev.Payload}:
					case <-closeSignals:
						return
					}
				case <-closeSignals:
					return
				}
			}
		}()
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "create-game":
			var payload createPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg(errInvalidPayload)
				continue
			}
			session, err := h.service.CreateSession(r.Context(), connID, payload.Secret)
			if err != nil {
				send <- errMsg(err)
				continue
			}
			subscribe(session.ID())
			send <- outboundMessage[any]{Type: "game-created", Payload: gameCreated{SessionID: session.ID()}}
		case "join-game":
			var payload joinPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg(errInvalidPayload)
				continue
			}
			roster, err := h.service.Join(payload.SessionID, connID, payload.Address)
			if err != nil {
				send <- errMsg(err)
				continue
			}
			subscribe(payload.SessionID)
			send <- outboundMessage[any]{Type: "joined", Payload: joined{PlayerID: connID, Players: roster}}
		case "start-game":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg(errInvalidPayload)
				continue
			}
			total, err := h.service.Start(payload.SessionID, connID)
			if err != nil {
				send <- errMsg(err)
				continue
			}
			send <- outboundMessage[any]{Type: "started", Payload: started{TotalQuestions: total}}
		case "submit-answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg(errInvalidPayload)
				continue
			}
			result, err := h.service.SubmitAnswer(payload.SessionID, connID, payload.AnswerIndex)
			if err != nil {
				send <- errMsg(err)
				continue
			}
			send <- outboundMessage[any]{Type: "answer-result", Payload: result}
		default:
			send <- errMsg(errUnsupportedType)
		}
	}

	if cancelSub != nil {
		cancelSub()
	}
	close(closeSignals)
	if pumpDone != nil {
		<-pumpDone
	}
	close(send)
	<-writerDone
}

type wsError string

func (e wsError) Error() string { return string(e) }

const (
	errInvalidPayload  = wsError("invalid payload")
	errUnsupportedType = wsError("unsupported message type")
)

func errMsg(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}
