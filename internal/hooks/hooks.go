// Package hooks dispatches platform events to registered handlers.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/addonhook/internal/actor"
	"github.com/smallbiznis/addonhook/pkg/telemetry/correlation"
	"go.uber.org/zap"
)

const PointAddonCancelled = "AddonCancelled"

var (
	ErrUnknownPoint   = errors.New("unknown_hook_point")
	ErrInvalidVar     = errors.New("invalid_hook_var")
	ErrInvalidHandler = errors.New("invalid_hook_handler")
)

// Event is a single platform event. Vars carries the point-specific payload.
type Event struct {
	ID    string
	Point string
	Actor actor.Actor
	Vars  map[string]any
}

type Handler func(ctx context.Context, evt Event) error

type registration struct {
	name     string
	priority int
	seq      int
	handler  Handler
}

// Result summarises one dispatch.
type Result struct {
	EventID  string   `json:"event_id"`
	Point    string   `json:"point"`
	Handlers int      `json:"handlers"`
	Errors   []string `json:"errors"`
}

type Registry struct {
	log *zap.Logger

	mu     sync.RWMutex
	seq    int
	points map[string][]registration
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		log:    log.Named("hooks"),
		points: map[string][]registration{},
	}
}

// Register adds handler to point. Lower priorities run first; equal
// priorities run in registration order.
func (r *Registry) Register(point string, priority int, name string, handler Handler) error {
	point = strings.TrimSpace(point)
	if point == "" || handler == nil {
		return ErrInvalidHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	regs := append(r.points[point], registration{name: name, priority: priority, seq: r.seq, handler: handler})
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority < regs[j].priority
		}
		return regs[i].seq < regs[j].seq
	})
	r.points[point] = regs
	return nil
}

func (r *Registry) Has(point string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.points[strings.TrimSpace(point)]) > 0
}

// Dispatch runs every handler for evt.Point. Handler errors are collected
// and never stop the remaining handlers.
func (r *Registry) Dispatch(ctx context.Context, evt Event) (Result, error) {
	evt.Point = strings.TrimSpace(evt.Point)

	r.mu.RLock()
	regs, ok := r.points[evt.Point]
	regs = append([]registration(nil), regs...)
	r.mu.RUnlock()
	if !ok || len(regs) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownPoint, evt.Point)
	}

	if evt.ID != "" {
		ctx = correlation.ContextWithCorrelationID(ctx, evt.ID)
	}
	ctx, evt.ID = correlation.EnsureCorrelationID(ctx)

	res := Result{EventID: evt.ID, Point: evt.Point, Handlers: len(regs), Errors: []string{}}
	for _, reg := range regs {
		if err := r.run(ctx, reg, evt); err != nil {
			r.log.Warn("hook handler failed",
				zap.String("point", evt.Point),
				zap.String("handler", reg.name),
				zap.String("event_id", evt.ID),
				zap.Error(err),
			)
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", reg.name, err))
		}
	}
	return res, nil
}

func (r *Registry) run(ctx context.Context, reg registration, evt Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return reg.handler(ctx, evt)
}

// IDVar reads a snowflake id from evt.Vars[key]. JSON numbers, integers and
// decimal strings are accepted.
func (evt Event) IDVar(key string) (snowflake.ID, error) {
	raw, ok := evt.Vars[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: %s missing", ErrInvalidVar, key)
	}

	switch v := raw.(type) {
	case snowflake.ID:
		return v, nil
	case int:
		return snowflake.ID(v), nil
	case int64:
		return snowflake.ID(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("%w: %s not an integer", ErrInvalidVar, key)
		}
		return snowflake.ID(int64(v)), nil
	case interface{ Int64() (int64, error) }:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidVar, key, err)
		}
		return snowflake.ID(n), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidVar, key, err)
		}
		return snowflake.ID(n), nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidVar, key, raw)
	}
}
