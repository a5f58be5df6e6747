package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"github.com/xbtlex/solana-casino/internal/event"
	"github.com/xbtlex/solana-casino/internal/lib/logger/sl"
)

const subscribeEvent = "subscribe"

type Subscription struct {
	Conn    *websocket.Conn
	Channel string
}

// Hub relays settlement events from the engine to every client subscribed to
// the channel. The engine is just another websocket client here; it publishes
// into the same channels the frontends listen on.
type Hub struct {
	Channels  map[string]map[*websocket.Conn]bool
	Broadcast chan event.Message
	Subscribe chan Subscription
	mutex     sync.RWMutex
	log       *slog.Logger
}

func NewHub(
	log *slog.Logger,
) *Hub {
	return &Hub{
		Channels:  make(map[string]map[*websocket.Conn]bool),
		Broadcast: make(chan event.Message),
		Subscribe: make(chan Subscription),
		log:       log,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (hub *Hub) run() {
	var (
		sub       Subscription
		err       error
		data      []byte
		conn      *websocket.Conn
		receivers map[*websocket.Conn]bool
		ok        bool
	)

	for {
		select {
		case sub = <-hub.Subscribe:
			hub.mutex.Lock()

			if hub.Channels[sub.Channel] == nil {
				hub.Channels[sub.Channel] = make(map[*websocket.Conn]bool)
			}
			hub.Channels[sub.Channel][sub.Conn] = true

			hub.mutex.Unlock()
		case message := <-hub.Broadcast:
			hub.mutex.RLock()
			receivers, ok = hub.Channels[message.Channel]
			hub.mutex.RUnlock()

			if !ok {
				continue
			}

			data, err = json.Marshal(message)
			if err != nil {
				hub.log.Error("failed to marshal message", sl.Err(err))

				continue
			}

			hub.log.Info("broadcasting message", sl.String("channel", message.Channel),
				sl.String("event", message.Event),
				sl.Any("data", message.Data))

			for conn = range receivers {
				if err = conn.WriteMessage(websocket.TextMessage, data); err != nil {
					hub.log.Error("failed to write message", sl.Err(err))
				}
			}
		}
	}
}

func (hub *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	var (
		err     error
		ws      *websocket.Conn
		p       []byte
		message event.Message
	)

	ws, err = upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Error("failed to upgrade connection", sl.Err(err))

		return
	}
	defer func(ws *websocket.Conn) {
		hub.drop(ws)

		err = ws.Close()
		if err != nil {
			hub.log.Error("failed to close connection", sl.Err(err))
		}
	}(ws)

	for {
		_, p, err = ws.ReadMessage()
		if err != nil {
			return
		}

		err = json.Unmarshal(p, &message)
		if err != nil {
			hub.log.Error("failed to unmarshal message", sl.Err(err))

			continue
		}

		if message.Event == subscribeEvent {
			hub.Subscribe <- Subscription{Conn: ws, Channel: message.Channel}

			continue
		}

		hub.Broadcast <- message
	}
}

func (hub *Hub) drop(ws *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for channel, conns := range hub.Channels {
		delete(conns, ws)

		if len(conns) == 0 {
			delete(hub.Channels, channel)
		}
	}
}

func (hub *Hub) RunServer() {
	go hub.run()
}
