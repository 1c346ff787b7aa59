package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"wavefm/core/auth"
	"wavefm/core/player"
	"wavefm/logger"
	"wavefm/model"

	"github.com/gorilla/websocket"
)

var playerUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// playerMessage is the envelope for both directions of the player socket.
// Inbound: transport commands from the client plus audio element events.
// Outbound: audio commands for the client's audio element plus state
// snapshots after every mutation.
type playerMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsAudio drives the browser's audio element over the socket. The engine
// calls it while holding its own lock, so writes only need to be serialized
// against the state broadcasts sharing the connection.
type wsAudio struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (a *wsAudio) send(msgType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn.WriteJSON(playerMessage{Type: msgType, Data: payload})
}

func (a *wsAudio) Load(src string) error {
	return a.send("audio:load", map[string]string{"src": src})
}

func (a *wsAudio) Play() error {
	return a.send("audio:play", nil)
}

func (a *wsAudio) Pause() {
	if err := a.send("audio:pause", nil); err != nil {
		logger.Warn("[Player] pause command failed", logger.ErrorField(err))
	}
}

func (a *wsAudio) Seek(seconds float64) {
	if err := a.send("audio:seek", map[string]float64{"seconds": seconds}); err != nil {
		logger.Warn("[Player] seek command failed", logger.ErrorField(err))
	}
}

func (a *wsAudio) SetVolume(level float64) {
	if err := a.send("audio:volume", map[string]float64{"level": level}); err != nil {
		logger.Warn("[Player] volume command failed", logger.ErrorField(err))
	}
}

// playCommand carries the queue replacement for a play command.
type playCommand struct {
	Song  *model.Song   `json:"song"`
	Queue []*model.Song `json:"queue"`
	Index int           `json:"index"`
}

// PlayerSessionHandler upgrades the connection and runs a playback session
// for its lifetime. Each connection owns its own engine; state snapshots
// are pushed after every command so the client never has to poll.
// Browsers cannot set headers on a socket upgrade, so the token rides in
// the query string.
func (h *APIHandler) PlayerSessionHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}
	claims, err := auth.ParseToken(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	conn, err := playerUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("[Player] websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	audio := &wsAudio{conn: conn}
	engine := player.NewEngine(audio)
	engine.SetOnChange(func(state player.State) {
		if err := audio.send("state", state); err != nil {
			logger.Warn("[Player] state broadcast failed", logger.ErrorField(err))
		}
	})

	logger.Info("[Player] session started", logger.Int64("userId", userID))

	// Initial snapshot so the client can render the idle transport.
	if err := audio.send("state", engine.State()); err != nil {
		logger.Warn("[Player] initial state failed", logger.ErrorField(err))
		return
	}

	for {
		var msg playerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("[Player] session read failed", logger.Int64("userId", userID), logger.ErrorField(err))
			}
			break
		}
		h.dispatchPlayerMessage(engine, msg)
	}

	logger.Info("[Player] session closed", logger.Int64("userId", userID))
}

// dispatchPlayerMessage applies one inbound message to the engine. Unknown
// and malformed messages are dropped; a playback session should survive a
// buggy client.
func (h *APIHandler) dispatchPlayerMessage(engine *player.Engine, msg playerMessage) {
	switch msg.Type {
	case "play":
		var cmd playCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil || cmd.Song == nil {
			return
		}
		engine.Play(cmd.Song, cmd.Queue, cmd.Index)
	case "toggle":
		engine.TogglePlay()
	case "next":
		engine.Next()
	case "previous":
		engine.Previous()
	case "seek":
		var cmd struct {
			Percent float64 `json:"percent"`
		}
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			return
		}
		engine.Seek(cmd.Percent)
	case "volume":
		var cmd struct {
			Level float64 `json:"level"`
		}
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			return
		}
		engine.SetVolume(cmd.Level)
	case "repeat":
		var cmd struct {
			Mode string `json:"mode"`
		}
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			return
		}
		engine.SetRepeatMode(player.RepeatMode(cmd.Mode))
	case "shuffle":
		var cmd struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			return
		}
		engine.SetShuffle(cmd.Enabled)
	case "event:metadata":
		var evt struct {
			Duration float64 `json:"duration"`
		}
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			return
		}
		engine.OnMetadata(evt.Duration)
	case "event:progress":
		var evt struct {
			Elapsed float64 `json:"elapsed"`
		}
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			return
		}
		engine.OnProgress(evt.Elapsed)
	case "event:ended":
		engine.OnEnded()
	case "event:error":
		var evt struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			return
		}
		engine.OnError(fmt.Errorf("client audio error: %s", evt.Message))
	default:
		logger.Debug("[Player] unknown message type", logger.String("type", msg.Type))
	}
}
