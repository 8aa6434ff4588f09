package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/authcore/services/blacklist"
	"github.com/tech-arch1tect/authcore/services/cleanup"
	"github.com/tech-arch1tect/authcore/services/maintenance"
	"github.com/tech-arch1tect/authcore/services/sessions"
	"github.com/tech-arch1tect/authcore/services/token"
)

// AdminHandler exposes the maintenance and session-management operations of
// the trust core on a thin admin route group.
type AdminHandler struct {
	scheduler   cleanup.Scheduler
	coordinator *maintenance.Coordinator
	blacklist   *blacklist.Service
	sessions    sessions.SessionRegistry
	tokens      token.TokenManager
}

func NewAdminHandler(scheduler cleanup.Scheduler, coordinator *maintenance.Coordinator, bl *blacklist.Service, registry sessions.SessionRegistry, tokens token.TokenManager) *AdminHandler {
	return &AdminHandler{
		scheduler:   scheduler,
		coordinator: coordinator,
		blacklist:   bl,
		sessions:    registry,
		tokens:      tokens,
	}
}

func (h *AdminHandler) Register(g *echo.Group) {
	g.POST("/cleanup", h.ManualCleanup)
	g.POST("/process-queue", h.ProcessQueue)
	g.POST("/sync-blacklist", h.SyncBlacklist)
	g.GET("/sessions/:userID", h.ListSessions)
	g.POST("/sessions/:userID/revoke/:sessionID", h.RevokeSession)
	g.DELETE("/sessions/:userID/:sessionID", h.DeleteSession)
	g.POST("/revoke/all/:userID", h.RevokeAll)
}

func (h *AdminHandler) ManualCleanup(c echo.Context) error {
	result, err := h.scheduler.PerformCleanup()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) ProcessQueue(c echo.Context) error {
	processed := h.coordinator.TriggerProcessing()

	return c.JSON(http.StatusOK, map[string]bool{"processed": processed})
}

func (h *AdminHandler) SyncBlacklist(c echo.Context) error {
	pruned, err := h.blacklist.PruneExpiredTokens()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]int64{"pruned": pruned})
}

func (h *AdminHandler) ListSessions(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	active, err := h.sessions.GetActiveSessions(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, active)
}

func (h *AdminHandler) RevokeSession(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.sessions.RevokeSession(userID, c.Param("sessionID"), true); err != nil {
		return mapSessionError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) DeleteSession(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.sessions.DeleteSession(c.Param("sessionID"), userID, true); err != nil {
		return mapSessionError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) RevokeAll(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	count, err := h.tokens.RevokeAllTokens(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}

func parseUserID(c echo.Context) (uint, error) {
	raw := c.Param("userID")
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return uint(parsed), nil
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, sessions.ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, sessions.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, sessions.ErrAlreadyRevoked):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
