package event

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pusher/pusher-http-go/v5"
	"golang.org/x/exp/slog"

	"github.com/xbtlex/solana-casino/internal/lib/logger/sl"
)

type Message struct {
	Channel string                 `json:"channel"`
	Event   string                 `json:"event"`
	Data    map[string]interface{} `json:"data"`
}

// Publisher fans settlement events out to the surrounding application. Which
// implementation backs it is decided once at startup.
type Publisher interface {
	TriggerEvent(m Message) error
}

// HubPublisher pushes events into the websocket hub process.
type HubPublisher struct {
	log  *slog.Logger
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewHubPublisher(log *slog.Logger, conn *websocket.Conn) *HubPublisher {
	return &HubPublisher{
		log:  log,
		conn: conn,
	}
}

func (p *HubPublisher) TriggerEvent(m Message) error {
	const op = "event.HubPublisher.TriggerEvent"

	msg, err := json.Marshal(m)
	if err != nil {
		p.log.Error("failed to marshal message", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	// gorilla connections allow one concurrent writer.
	p.mu.Lock()
	defer p.mu.Unlock()

	if err = p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		p.log.Error("failed to trigger event", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PusherPublisher delivers events through the hosted pusher service instead
// of the local hub.
type PusherPublisher struct {
	log    *slog.Logger
	pusher *pusher.Client
}

func NewPusherPublisher(log *slog.Logger, pusherClient *pusher.Client) *PusherPublisher {
	return &PusherPublisher{
		log:    log,
		pusher: pusherClient,
	}
}

func (p *PusherPublisher) TriggerEvent(m Message) error {
	const op = "event.PusherPublisher.TriggerEvent"

	if err := p.pusher.Trigger(m.Channel, m.Event, m.Data); err != nil {
		p.log.Error("failed to trigger pusher event", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
