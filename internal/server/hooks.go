package server

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/addonhook/internal/actor"
	"github.com/smallbiznis/addonhook/internal/hooks"
	obslogger "github.com/smallbiznis/addonhook/internal/observability/logger"
	"go.uber.org/zap"
)

const HeaderHookToken = "X-Hook-Token"

const maxHookBodyBytes = 1 << 20

type hookActor struct {
	Username string `json:"username"`
	AdminID  int64  `json:"admin_id"`
}

type hookRequest struct {
	EventID string         `json:"event_id"`
	Actor   hookActor      `json:"actor"`
	Vars    map[string]any `json:"vars"`
}

func (s *Server) RegisterHookRoutes(r gin.IRouter) {
	group := r.Group("/hooks", s.hookTokenRequired())
	group.POST("/:point", s.DispatchHook)
}

// hookTokenRequired rejects calls without the shared hook token. An empty
// token disables the check.
func (s *Server) hookTokenRequired() gin.HandlerFunc {
	expected := []byte(strings.TrimSpace(s.cfg.HookToken))
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.Next()
			return
		}
		got := []byte(strings.TrimSpace(c.GetHeader(HeaderHookToken)))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func (s *Server) DispatchHook(c *gin.Context) {
	point := strings.TrimSpace(c.Param("point"))
	if !s.hooks.Has(point) {
		s.observeDispatch(point, "unknown")
		AbortWithError(c, ErrNotFound)
		return
	}

	var req hookRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxHookBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			AbortWithError(c, ErrRequestTooLarge)
			return
		}
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			AbortWithError(c, newValidationError("body", "invalid_json", "request body must be a JSON object"))
			return
		}
	}
	if req.Vars == nil {
		req.Vars = map[string]any{}
	}

	log := obslogger.WithContext(c.Request.Context(), s.log)
	res, err := s.hooks.Dispatch(c.Request.Context(), hooks.Event{
		ID:    strings.TrimSpace(req.EventID),
		Point: point,
		Actor: actor.Actor{Username: strings.TrimSpace(req.Actor.Username), AdminID: snowflake.ID(req.Actor.AdminID)},
		Vars:  req.Vars,
	})
	if err != nil {
		if errors.Is(err, hooks.ErrUnknownPoint) {
			s.observeDispatch(point, "unknown")
		} else {
			s.observeDispatch(point, "error")
		}
		AbortWithError(c, err)
		return
	}

	status := "ok"
	if len(res.Errors) > 0 {
		status = "handler_error"
		log.Warn("hook dispatched with handler errors",
			zap.String("point", point),
			zap.Strings("errors", res.Errors),
		)
	}
	s.observeDispatch(point, status)

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (s *Server) observeDispatch(point, status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDispatch(point, status)
}
