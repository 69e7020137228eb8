package session

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/auth"
	httperrors "github.com/gokatarajesh/ai-quiz/pkg/http/errors"
	ws "github.com/gokatarajesh/ai-quiz/pkg/http/ws"
)

// StreamHandler pushes session snapshots over a WebSocket and accepts
// answers and restarts on the same connection.
type StreamHandler struct {
	registry *Registry
	hub      *ws.Hub
	tokens   auth.TokenValidator
	upgrader *websocket.Upgrader
	logger   zerolog.Logger
}

func NewStreamHandler(registry *Registry, hub *ws.Hub, tokens auth.TokenValidator, upgrader *websocket.Upgrader, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		registry: registry,
		hub:      hub,
		tokens:   tokens,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "session_stream").Logger(),
	}
}

// ServeHTTP handles GET /ws/sessions/{id}. Browsers cannot set headers on the
// upgrade request, so a bearer token may also arrive as ?token=.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return
	}

	ctx := r.Context()
	if token := r.URL.Query().Get("token"); token != "" && h.tokens != nil {
		claims, err := h.tokens.ValidateAccessToken(token)
		if err != nil {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid or expired token")
			return
		}
		ctx = auth.WithClaims(ctx, claims)
	}

	sess, err := h.registry.Get(id, OwnerFromContext(ctx))
	if err != nil {
		respondQuizError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("session_id", id.String()).Msg("websocket upgrade failed")
		return
	}

	logger := h.logger.With().Str("session_id", id.String()).Logger()
	wsConn := ws.NewConnection(conn, logger)
	h.hub.Join(sess.ID, wsConn)
	go wsConn.WritePump()

	if msg, err := ws.NewMessage(ws.TypeSnapshot, sess.View()); err == nil {
		_ = wsConn.Send(msg)
	}

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(sess, wsConn, msg)
	})

	h.hub.Leave(sess.ID, wsConn)
}

func (h *StreamHandler) handleMessage(sess *Session, conn *ws.Connection, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeSelectAnswer:
		var payload ws.SelectAnswerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return sendError(conn, msg.RequestID,
				httperrors.New(http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "Invalid select_answer payload"))
		}
		if err := sess.SelectAnswer(payload.Choice); err != nil {
			return sendError(conn, msg.RequestID, classifyError(err))
		}
		return nil
	case ws.TypeRestart:
		sess.Restart()
		return nil
	case ws.TypePing:
		return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
	default:
		return sendError(conn, msg.RequestID, httperrors.New(http.StatusBadRequest, httperrors.ErrCodeUnknownMessageType,
			fmt.Sprintf("Unknown message type: %s", msg.Type)))
	}
}

func sendError(conn *ws.Connection, requestID string, apiErr *httperrors.Error) error {
	msg, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: apiErr.Code, Message: apiErr.Message})
	if err != nil {
		return err
	}
	msg.RequestID = requestID
	return conn.Send(msg)
}
