package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rogerio-castellano/finance-tracker/internal/events"
	"github.com/rogerio-castellano/finance-tracker/internal/http/ban"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
	"github.com/rogerio-castellano/finance-tracker/internal/repo"
)

// TokenGenerator issues a bearer token for a user id.
type TokenGenerator interface {
	Generate(userID int) (string, error)
}

// LoginGuard throttles repeated failed logins. It may be nil.
type LoginGuard interface {
	Banned(ctx context.Context, target string) bool
	Fail(ctx context.Context, target, route string)
	Succeed(ctx context.Context, target string)
}

type Deps struct {
	Users        repo.UserRepository
	Transactions repo.TransactionRepository
	Tokens       TokenGenerator
	Guard        LoginGuard
	Events       events.Publisher
	Logger       *applog.Logger
}

type Handlers struct {
	users        repo.UserRepository
	transactions repo.TransactionRepository
	tokens       TokenGenerator
	guard        LoginGuard
	events       events.Publisher
	logger       *applog.Logger
	now          func() time.Time
}

func New(d Deps) *Handlers {
	h := &Handlers{
		users:        d.Users,
		transactions: d.Transactions,
		tokens:       d.Tokens,
		guard:        d.Guard,
		events:       d.Events,
		logger:       d.Logger,
		now:          time.Now,
	}
	if h.events == nil {
		h.events = events.NopPublisher{}
	}
	if h.logger == nil {
		h.logger = applog.Nop()
	}
	h.logger = h.logger.WithComponent(applog.ComponentHTTP)
	if h.guard == nil {
		h.guard = noGuard{}
	}
	return h
}

// Health godoc
// @Summary Service health
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	})
}

type noGuard struct{}

func (noGuard) Banned(context.Context, string) bool  { return false }
func (noGuard) Fail(context.Context, string, string) {}
func (noGuard) Succeed(context.Context, string)      {}

var _ LoginGuard = (*ban.Guard)(nil)
