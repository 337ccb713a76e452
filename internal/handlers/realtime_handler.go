package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/HealthQuestBack/internal/middleware"
	"github.com/saeid-a/HealthQuestBack/internal/models"
	"github.com/saeid-a/HealthQuestBack/internal/session"
	statews "github.com/saeid-a/HealthQuestBack/internal/websocket"
	"github.com/saeid-a/HealthQuestBack/pkg/utils"
	"go.uber.org/zap"
)

type RealtimeHandler struct {
	sessionResolver
	hub       *statews.Hub
	jwtSecret string
}

func NewRealtimeHandler(sessions sessionManager, hub *statews.Hub, jwtSecret string, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		sessionResolver: sessionResolver{sessions: sessions, logger: logger},
		hub:             hub,
		jwtSecret:       jwtSecret,
	}
}

func (h *RealtimeHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	middleware.SetClaims(c, claims)
	return c.Next()
}

func (h *RealtimeHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	sessionID, _ := conn.Locals("session_id").(string)
	email, _ := conn.Locals("email").(string)
	expiresAt, _ := conn.Locals("expires_at").(time.Time)
	active := models.ActiveSession{ID: sessionID, UserID: userID, Email: email, ExpiresAt: expiresAt}

	controller, err := h.open(context.Background(), active)
	if err != nil {
		h.logger.Info("websocket rejected", zap.String("session_id", sessionID), zap.Error(err))
		_ = conn.Close()
		return
	}

	client := statews.NewClient(h.hub, conn, userID, sessionID)
	h.hub.Register(client)
	go client.WritePump()

	view := session.NewView(controller.State())
	h.hub.Publish(userID, session.Event{Type: session.EventState, SessionID: sessionID, State: &view})
	client.ReadPump(controller)
}

func (h *RealtimeHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}
