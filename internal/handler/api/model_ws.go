package api

import (
	"net/http"
	"time"

	"CoinCast/internal/domain/models"
	"CoinCast/internal/usecase"
	xlogger "CoinCast/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// ModelStreamHandler pushes the current model to WebSocket clients on
// connect and after every install.
type ModelStreamHandler struct {
	logger    *xlogger.Logger
	predictor *usecase.Predictor
	upgrader  websocket.Upgrader
}

func NewModelStreamHandler(logger *xlogger.Logger, predictor *usecase.Predictor) *ModelStreamHandler {
	return &ModelStreamHandler{
		logger:    logger,
		predictor: predictor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

type modelFrame struct {
	Type  string        `json:"type"`
	Model *models.Model `json:"model"`
}

func (h *ModelStreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	updates, cancel := h.predictor.Subscribe()
	defer cancel()

	if m, err := h.predictor.Current(); err == nil {
		if err := h.write(conn, "model.current", m); err != nil {
			return nil
		}
	}

	done := make(chan struct{})
	go h.readPump(conn, done)

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case m := <-updates:
			if err := h.write(conn, models.EventModelTrained, m); err != nil {
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func (h *ModelStreamHandler) write(conn *websocket.Conn, typ string, m *models.Model) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(modelFrame{Type: typ, Model: m})
}

// readPump drains client frames so control messages are processed.
func (h *ModelStreamHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
