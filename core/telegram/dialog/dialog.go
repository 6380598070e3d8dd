// Package dialog routes updates that belong to an in-progress conversation
// to the handler registered for the user's current stage. Stage storage is
// owned by the application; the router only needs a StageSource.
package dialog

import (
	"sync"

	"github.com/breathebhutan/tashi/core/logger"
	tghelpers "github.com/breathebhutan/tashi/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// StageSource reports the active conversation stage for a user.
// The second return is false when the user has no active conversation.
type StageSource interface {
	Stage(userID int64) (string, bool)
}

// Router dispatches updates to stage handlers.
type Router struct {
	mu       sync.RWMutex
	stages   StageSource
	handlers map[string]tele.HandlerFunc
}

// NewRouter creates a Router backed by the given stage source.
func NewRouter(src StageSource) *Router {
	return &Router{
		stages:   src,
		handlers: make(map[string]tele.HandlerFunc),
	}
}

// Handle associates a conversation stage with its handler.
func (r *Router) Handle(stage string, h tele.HandlerFunc) {
	if stage == "" || h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[stage]; exists {
		logger.TWire.Warn("register.stage.duplicate",
			slog.String("stage", stage),
		)
		return
	}
	r.handlers[stage] = h
}

// InProgress reports whether the user currently has an active conversation.
func (r *Router) InProgress(userID int64) bool {
	if r.stages == nil {
		return false
	}
	_, ok := r.stages.Stage(userID)
	return ok
}

// GetState returns the user's current stage name, or an empty string when idle.
func (r *Router) GetState(userID int64) string {
	if r.stages == nil {
		return ""
	}
	stage, _ := r.stages.Stage(userID)
	return stage
}

// ManagerHandler executes the handler registered for the user's current stage, if any.
func (r *Router) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	stage, active := r.stages.Stage(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "dialog.route",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("stage", stage),
	)
	if !active {
		return nil
	}

	r.mu.RLock()
	handler, ok := r.handlers[stage]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return handler(c)
}
