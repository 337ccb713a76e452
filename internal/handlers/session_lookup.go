package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/HealthQuestBack/internal/models"
	"github.com/saeid-a/HealthQuestBack/internal/services"
	"github.com/saeid-a/HealthQuestBack/internal/session"
	"go.uber.org/zap"
)

type sessionManager interface {
	Open(ctx context.Context, active models.ActiveSession) (*session.Controller, error)
	Close(active models.ActiveSession) bool
}

// sessionResolver finds the controller behind the request's token.
type sessionResolver struct {
	sessions sessionManager
	logger   *zap.Logger
}

func activeSession(c *fiber.Ctx) (models.ActiveSession, error) {
	userID, _ := c.Locals("user_id").(string)
	sessionID, _ := c.Locals("session_id").(string)
	email, _ := c.Locals("email").(string)
	expiresAt, _ := c.Locals("expires_at").(time.Time)
	if userID == "" || sessionID == "" {
		return models.ActiveSession{}, session.ErrNotAuthenticated
	}
	return models.ActiveSession{ID: sessionID, UserID: userID, Email: email, ExpiresAt: expiresAt}, nil
}

// resolve returns the session controller. A failed fetch still yields a
// controller; it is marked unsynced, the failure is only logged and the fetch
// is retried on the next request.
func (r sessionResolver) resolve(c *fiber.Ctx) (*session.Controller, error) {
	active, err := activeSession(c)
	if err != nil {
		return nil, err
	}
	return r.open(c.Context(), active)
}

func (r sessionResolver) open(ctx context.Context, active models.ActiveSession) (*session.Controller, error) {
	controller, err := r.sessions.Open(ctx, active)
	if controller == nil {
		return nil, err
	}
	if err == nil && !controller.State().Synced {
		_, err = controller.Hydrate(ctx)
	}
	if err != nil {
		r.logger.Warn("session opened without stored snapshot",
			zap.String("session_id", active.ID),
			zap.Error(err),
		)
	}
	return controller, nil
}

func stateResponse(c *fiber.Ctx, status int, state session.State) error {
	return c.Status(status).JSON(fiber.Map{"state": session.NewView(state)})
}

// mapSessionError translates controller errors. When state is non-nil the
// current (possibly rolled back) state is returned with the error.
func mapSessionError(c *fiber.Ctx, err error, state *session.State) error {
	status, message := sessionErrorStatus(err)
	body := fiber.Map{"error": message}
	if state != nil {
		body["state"] = session.NewView(*state)
	}
	return c.Status(status).JSON(body)
}

func sessionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, session.ErrSessionClosed):
		return fiber.StatusUnauthorized, "Invalid or expired session"
	case errors.Is(err, session.ErrProfileRequired):
		return fiber.StatusConflict, "Onboarding required"
	case errors.Is(err, session.ErrAlreadyOnboarded):
		return fiber.StatusConflict, "Onboarding already completed"
	case errors.Is(err, session.ErrTaskNotFound):
		return fiber.StatusNotFound, "Task not found"
	case errors.Is(err, session.ErrInvalidScreen),
		errors.Is(err, session.ErrUnsupportedLanguage),
		errors.Is(err, session.ErrInvalidTheme),
		errors.Is(err, session.ErrInvalidMeasurement):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrGeneration):
		return fiber.StatusBadGateway, "Failed to generate plan"
	case errors.Is(err, session.ErrFetch):
		return fiber.StatusServiceUnavailable, "Stored data is unavailable, try again"
	case errors.Is(err, session.ErrSave):
		return fiber.StatusServiceUnavailable, "Failed to save changes, try again"
	default:
		return fiber.StatusInternalServerError, "Failed to process request"
	}
}
