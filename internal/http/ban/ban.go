// Package ban blocks clients that keep failing to log in.
package ban

import (
	"context"
	"time"

	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
)

// Store counts failed attempts and remembers active bans. Both expire on
// their own.
type Store interface {
	Strike(ctx context.Context, target string, window time.Duration) (int, error)
	Ban(ctx context.Context, target, route string, strikes int, d time.Duration) error
	IsBanned(ctx context.Context, target string) (bool, error)
	Reset(ctx context.Context, target string) error
}

type Config struct {
	MaxStrikes int
	Window     time.Duration
	Duration   time.Duration
}

func DefaultConfig() Config {
	return Config{MaxStrikes: 5, Window: 15 * time.Minute, Duration: 15 * time.Minute}
}

type Guard struct {
	store  Store
	config Config
	logger *applog.Logger
}

func NewGuard(store Store, config Config, logger *applog.Logger) *Guard {
	if config.MaxStrikes <= 0 {
		config.MaxStrikes = DefaultConfig().MaxStrikes
	}
	if config.Window <= 0 {
		config.Window = DefaultConfig().Window
	}
	if config.Duration <= 0 {
		config.Duration = DefaultConfig().Duration
	}
	if logger == nil {
		logger = applog.Nop()
	}
	return &Guard{store: store, config: config, logger: logger.WithComponent(applog.ComponentBan)}
}

// Banned reports whether target is currently blocked. Store failures let the
// request through.
func (g *Guard) Banned(ctx context.Context, target string) bool {
	banned, err := g.store.IsBanned(ctx, target)
	if err != nil {
		g.logger.Warn("ban lookup failed", applog.FieldError, err.Error())
		return false
	}
	return banned
}

// Fail records a failed attempt and bans target once it reaches the limit.
func (g *Guard) Fail(ctx context.Context, target, route string) {
	strikes, err := g.store.Strike(ctx, target, g.config.Window)
	if err != nil {
		g.logger.Warn("strike not recorded", applog.FieldError, err.Error())
		return
	}
	if strikes < g.config.MaxStrikes {
		return
	}
	if err := g.store.Ban(ctx, target, route, strikes, g.config.Duration); err != nil {
		g.logger.Warn("ban not recorded", applog.FieldError, err.Error())
		return
	}
	g.logger.Warn("client banned",
		applog.FieldClientIP, target,
		applog.FieldPath, route,
		"strikes", strikes,
		"ban_for", g.config.Duration.String(),
	)
}

// Succeed forgets the strikes of target.
func (g *Guard) Succeed(ctx context.Context, target string) {
	if err := g.store.Reset(ctx, target); err != nil {
		g.logger.Warn("strike reset failed", applog.FieldError, err.Error())
	}
}
