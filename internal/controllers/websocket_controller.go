package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/middleware"
	"okr-console/pkg/utils"
	appwebsocket "okr-console/pkg/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketController: канал уведомлений «таблица устарела».
// Токен проверяет Auth (параметр token), сюда приходит готовая сессия.
type WebSocketController struct {
	hub    *appwebsocket.Hub
	logger *zap.Logger
}

func NewWebSocketController(hub *appwebsocket.Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		hub:    hub,
		logger: logger,
	}
}

func (c *WebSocketController) ServeWs(ctx echo.Context) error {
	sc := middleware.SessionFrom(ctx)
	if sc == nil {
		return utils.ErrorResponse(ctx, apperrors.ErrUnauthorized, c.logger)
	}
	user, ok := sc.User()
	if !ok {
		return utils.ErrorResponse(ctx, apperrors.ErrUnauthorized, c.logger)
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("WebSocket: не удалось улучшить соединение", zap.Error(err))
		return err
	}

	client := appwebsocket.NewClient(c.hub, conn, user.ID)
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	c.logger.Info("WebSocket: клиент подключен", zap.String("userID", user.ID))
	return nil
}
