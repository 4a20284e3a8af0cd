package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"teamcreate/internal/metrics"
	"teamcreate/internal/models"
	"teamcreate/internal/roomcode"
	"teamcreate/internal/session"
)

// Inbound WebSocket messages are capped at the same 1 MB the JSON body
// limit allows, so a full document update always fits.
const maxMessageSize = 1 << 20

type Handlers struct {
	log   *zap.Logger
	store *session.Store
}

func NewHandlers(log *zap.Logger, store *session.Store) *Handlers {
	return &Handlers{log: log, store: store}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}

func (h *Handlers) CreateRoom(w http.ResponseWriter, _ *http.Request) {
	code := h.store.CreateRoom()
	h.updateGauges()
	h.log.Info("room created", zap.String("room", code))
	writeJSON(w, http.StatusOK, models.CreateRoomResponse{Code: code})
}

func (h *Handlers) Stats(w http.ResponseWriter, _ *http.Request) {
	rooms, sessions := h.store.Counts()
	writeJSON(w, http.StatusOK, models.StatsResponse{Rooms: rooms, Sessions: sessions})
}

// SetSignal stores the request body verbatim in the room's offer or answer
// mailbox. POST and PUT behave identically; re-setting overwrites.
func (h *Handlers) SetSignal(w http.ResponseWriter, r *http.Request) {
	code, typ, ok := h.signalParams(w, r)
	if !ok {
		return
	}
	payload := readPayload(r.Body)
	room := h.store.GetOrCreate(code)
	room.SetSignal(typ, payload)
	h.updateGauges()
	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}

// GetSignal returns the stored payload, or {pending:true} while the peer
// has not posted yet. Polling clients repeat the call.
func (h *Handlers) GetSignal(w http.ResponseWriter, r *http.Request) {
	code, typ, ok := h.signalParams(w, r)
	if !ok {
		return
	}
	room := h.store.GetOrCreate(code)
	h.updateGauges()
	payload, set := room.Signal(typ)
	if !set {
		writeJSON(w, http.StatusOK, models.PendingResponse{Pending: true})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

// signalParams validates the {room} and {type} path segments, writing the
// 400 response itself on failure. Room is checked before type.
func (h *Handlers) signalParams(w http.ResponseWriter, r *http.Request) (string, models.SignalType, bool) {
	code := roomcode.Normalize(chi.URLParam(r, "room"))
	if !roomcode.Valid(code) {
		writeError(w, models.ErrInvalidRoom)
		return "", "", false
	}
	typ, err := models.ParseSignalType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, err)
		return "", "", false
	}
	return code, typ, true
}

/*** Collaboration WebSocket: document sync + cursors + presence ***/

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (h *Handlers) CollabWS(w http.ResponseWriter, r *http.Request) {
	code := roomcode.Normalize(r.URL.Query().Get("room"))
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	if !roomcode.Valid(code) {
		return
	}

	client := session.NewClient(conn)
	room := h.store.GetOrCreate(code)
	room.Join(client)
	h.updateGauges()
	h.log.Info("session joined", zap.String("room", code), zap.String("id", client.ID))
	defer func() {
		room.Leave(client)
		n := room.Broadcast(client, presenceFrame(room))
		metrics.FramesBroadcast(models.FramePresence, n)
		h.updateGauges()
		h.log.Info("session left", zap.String("room", code), zap.String("id", client.ID))
	}()

	client.Send(models.WelcomeFrame{Type: models.FrameWelcome, ID: client.ID, Color: client.Color})
	client.Send(models.InitFrame{Type: models.FrameInit, Code: room.Document()})
	client.Send(presenceFrame(room))
	n := room.Broadcast(client, presenceFrame(room))
	metrics.FramesBroadcast(models.FramePresence, n)

	conn.SetReadLimit(maxMessageSize)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame models.ClientFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			h.drop(code, client.ID, "unparseable")
			continue
		}

		switch frame.Type {
		case models.FrameCode:
			// Decode through a pointer: a JSON null "succeeds" into a plain
			// string and would wipe the document.
			var text *string
			if err := json.Unmarshal(frame.Code, &text); err != nil || text == nil {
				h.drop(code, client.ID, "code_not_string")
				continue
			}
			room.SetDocument(*text)
			n := room.Broadcast(client, models.CodeFrame{Type: models.FrameCode, Code: *text})
			metrics.FramesBroadcast(models.FrameCode, n)

		case models.FrameCursor:
			n := room.Broadcast(client, models.CursorFrame{
				Type:      models.FrameCursor,
				ID:        client.ID,
				Selection: frame.Selection,
			})
			metrics.FramesBroadcast(models.FrameCursor, n)

		case models.FramePing:
			client.Send(presenceFrame(room))

		case models.FrameHello:
			h.log.Debug("hello", zap.String("room", code), zap.String("id", client.ID), zap.String("role", frame.Role))

		default:
			h.drop(code, client.ID, "unknown_type")
		}
	}
}

// drop records a silently discarded client message. The sender gets no
// error and nothing is broadcast.
func (h *Handlers) drop(room, id, reason string) {
	metrics.MessageDropped()
	h.log.Debug("dropped message", zap.String("room", room), zap.String("id", id), zap.String("reason", reason))
}

func (h *Handlers) updateGauges() {
	rooms, sessions := h.store.Counts()
	metrics.SetRooms(rooms)
	metrics.SetSessions(sessions)
}

func presenceFrame(room *session.Room) models.PresenceFrame {
	return models.PresenceFrame{Type: models.FramePresence, Clients: room.Presence()}
}

// readPayload takes a signal body verbatim, falling back to an empty object
// when the body is missing or not JSON.
func readPayload(body io.Reader) json.RawMessage {
	b, err := io.ReadAll(io.LimitReader(body, maxMessageSize))
	if err != nil || !json.Valid(b) {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, models.ErrorResponse{OK: false, Error: err.Error()})
}
