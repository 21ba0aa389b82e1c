// Package store holds the authoritative client-side cache of a user's
// transactions. Every mutation goes through the persistence gateway first and
// reaches the cache only after the server acknowledged it.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/finance-tracker/internal/aggregate"
	"github.com/rogerio-castellano/finance-tracker/internal/apperrors"
	"github.com/rogerio-castellano/finance-tracker/internal/filter"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/rogerio-castellano/finance-tracker/internal/session"
	"golang.org/x/sync/singleflight"
)

// Gateway is the transaction half of the persistence service.
type Gateway interface {
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id int) error
	ImportTransactions(ctx context.Context, filename string, csv io.Reader) (models.ImportResult, error)
}

// Session is what the store needs from the auth session.
type Session interface {
	Active() bool
	End(reason session.EndReason)
	OnEnd(fn func(session.EndReason)) func()
}

type Store struct {
	gateway   Gateway
	session   Session
	logger    *applog.Logger
	dashboard aggregate.Options

	mu          sync.RWMutex
	state       State
	epoch       uint64
	subscribers map[int]func(State)
	nextSub     int

	// gate is held exclusively by Load and shared by entity mutations, so a
	// reload never interleaves with a write whose result it would overwrite.
	gate  sync.RWMutex
	locks *keyedMutex
	loads singleflight.Group

	unsubscribe func()
}

type Option func(*Store)

func WithLogger(l *applog.Logger) Option {
	return func(s *Store) {
		s.logger = l.WithComponent(applog.ComponentStore)
	}
}

func WithDashboardOptions(opts aggregate.Options) Option {
	return func(s *Store) {
		s.dashboard = opts
	}
}

// New builds a store bound to sess. The cache is cleared whenever the
// session ends.
func New(gw Gateway, sess Session, opts ...Option) *Store {
	s := &Store{
		gateway:     gw,
		session:     sess,
		logger:      applog.Nop(),
		dashboard:   aggregate.DefaultOptions(),
		state:       InitialState(),
		subscribers: map[int]func(State){},
		locks:       newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = sess.OnEnd(func(reason session.EndReason) {
		s.logger.Info("session ended, clearing cache", "reason", string(reason))
		s.endSession()
	})
	return s
}

// Close detaches the store from its session.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Load replaces the cache with the server's transaction list, keeping the
// active filter. Concurrent calls share one request. The shared request is
// not cancelled with any single caller's ctx; a caller whose ctx ends stops
// waiting and gets a network error while the others keep theirs.
func (s *Store) Load(ctx context.Context) error {
	shared := context.WithoutCancel(ctx)
	ch := s.loads.DoChan("load", func() (any, error) {
		return nil, s.load(shared)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return apperrors.Wrap(apperrors.KindNetwork, "store.Load", ctx.Err())
	}
}

func (s *Store) load(ctx context.Context) error {
	const op = "store.Load"

	s.gate.Lock()
	defer s.gate.Unlock()

	epoch, err := s.begin(op)
	if err != nil {
		return err
	}
	s.dispatchIn(epoch, LoadStarted{})

	txs, err := s.gateway.ListTransactions(ctx)
	if err != nil {
		appErr := s.fail(op, err)
		s.dispatchIn(epoch, LoadFailed{Err: appErr})
		return appErr
	}
	if !s.dispatchIn(epoch, Loaded{Transactions: txs}) {
		return sessionEnded(op)
	}
	s.logger.Debug("transactions loaded", applog.FieldCount, len(txs))
	return nil
}

// Add validates draft locally, creates it on the server and appends the
// server's record to the cache.
func (s *Store) Add(ctx context.Context, draft models.TransactionDraft) (models.Transaction, error) {
	const op = "store.Add"

	tx, err := draft.Transaction()
	if err != nil {
		return models.Transaction{}, validationError(op, err)
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	epoch, err := s.begin(op)
	if err != nil {
		return models.Transaction{}, err
	}

	created, err := s.gateway.CreateTransaction(ctx, tx)
	if err != nil {
		return models.Transaction{}, s.fail(op, err)
	}
	if !s.dispatchIn(epoch, Added{Transaction: created}) {
		return models.Transaction{}, sessionEnded(op)
	}
	return created, nil
}

// Update merges patch into the cached record id and sends the merged record
// to the server. Fields absent from patch keep their values.
func (s *Store) Update(ctx context.Context, id int, patch models.TransactionPatch) (models.Transaction, error) {
	const op = "store.Update"

	s.gate.RLock()
	defer s.gate.RUnlock()
	unlock := s.locks.Lock(id)
	defer unlock()

	current, ok := s.find(id)
	if !ok {
		return models.Transaction{}, notFound(op, id)
	}
	merged, err := patch.Apply(current)
	if err != nil {
		return models.Transaction{}, validationError(op, err)
	}

	epoch, err := s.begin(op)
	if err != nil {
		return models.Transaction{}, err
	}

	updated, err := s.gateway.UpdateTransaction(ctx, merged)
	if err != nil {
		return models.Transaction{}, s.fail(op, err)
	}
	if !s.dispatchIn(epoch, Updated{Transaction: updated}) {
		return models.Transaction{}, sessionEnded(op)
	}
	return updated, nil
}

// Remove deletes id on the server, then drops it from the cache.
func (s *Store) Remove(ctx context.Context, id int) error {
	const op = "store.Remove"

	s.gate.RLock()
	defer s.gate.RUnlock()
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, ok := s.find(id); !ok {
		return notFound(op, id)
	}

	epoch, err := s.begin(op)
	if err != nil {
		return err
	}

	if err := s.gateway.DeleteTransaction(ctx, id); err != nil {
		return s.fail(op, err)
	}
	if !s.dispatchIn(epoch, Removed{ID: id}) {
		return sessionEnded(op)
	}
	return nil
}

// Import uploads a CSV file and appends every row the server stored. Rows it
// rejected come back in the result and leave the cache alone.
func (s *Store) Import(ctx context.Context, filename string, csv io.Reader) (models.ImportResult, error) {
	const op = "store.Import"

	s.gate.RLock()
	defer s.gate.RUnlock()

	epoch, err := s.begin(op)
	if err != nil {
		return models.ImportResult{}, err
	}

	res, err := s.gateway.ImportTransactions(ctx, filename, csv)
	if err != nil {
		return models.ImportResult{}, s.fail(op, err)
	}
	for _, t := range res.Transactions {
		if !s.dispatchIn(epoch, Added{Transaction: t}) {
			return models.ImportResult{}, sessionEnded(op)
		}
	}
	s.logger.Info("transactions imported",
		applog.FieldOperation, applog.OpImport,
		applog.FieldCount, res.Imported,
		"rejected", len(res.Errors),
	)
	return res, nil
}

// ApplyFilter sets the active criteria. No request is made.
func (s *Store) ApplyFilter(c filter.Criteria) error {
	if err := c.Validate(); err != nil {
		return validationError("store.ApplyFilter", err)
	}
	s.dispatch(FilterSet{Criteria: c})
	return nil
}

func (s *Store) ClearFilter() {
	s.dispatch(FilterCleared{})
}

// AddCategory extends the catalogue. Names are unique within a type.
func (s *Store) AddCategory(name string, typ models.TransactionType, color string) (models.Category, error) {
	const op = "store.AddCategory"

	name = strings.TrimSpace(name)
	errs := models.ValidationErrors{}
	if name == "" {
		errs = errs.Add("name", "Name is required")
	}
	if !typ.Valid() {
		errs = errs.Add("type", "Type must be income or expense")
	}
	if len(errs) == 0 {
		for _, c := range s.Categories() {
			if c.Type == typ && c.Name == name {
				errs = errs.Add("name", fmt.Sprintf("Category %q already exists", name))
				break
			}
		}
	}
	if len(errs) > 0 {
		return models.Category{}, validationError(op, errs)
	}

	if color == "" {
		color = models.FallbackColor
	}
	c := models.Category{ID: uuid.New().String(), Name: name, Type: typ, Color: color}
	s.dispatch(CategoryAdded{Category: c})
	return c, nil
}

func (s *Store) SetCategories(categories []models.Category) {
	s.dispatch(CategoriesSet{Categories: categories})
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Store) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTransactions(s.state.All)
}

func (s *Store) Visible() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTransactions(s.state.Visible)
}

func (s *Store) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCategories(s.state.Categories)
}

// Summary aggregates the visible transactions.
func (s *Store) Summary() aggregate.Summary {
	return aggregate.Summarize(s.Visible())
}

// Dashboard builds every dashboard figure from the visible transactions.
// Monthly buckets end with the month containing now.
func (s *Store) Dashboard(now time.Time) aggregate.Dashboard {
	return s.DashboardWith(now, s.dashboard)
}

// DashboardWith is Dashboard with the window sizes given per call.
func (s *Store) DashboardWith(now time.Time, opts aggregate.Options) aggregate.Dashboard {
	snap := s.Snapshot()
	return aggregate.BuildDashboard(snap.Visible, snap.Categories, now, opts)
}

// Subscribe calls fn with a copy of the state after every transition. fn
// runs synchronously on the goroutine that caused the transition, often while
// a Load, Add, Update, Remove or Import is still in progress, so it must not
// call those methods itself or it deadlocks. Hand work off to another
// goroutine instead.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) find(id int) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.state.All {
		if t.ID == id {
			return t, true
		}
	}
	return models.Transaction{}, false
}

// begin checks the session and returns the epoch the operation belongs to.
func (s *Store) begin(op string) (uint64, error) {
	if !s.session.Active() {
		s.unauthorized()
		return 0, apperrors.New(apperrors.KindUnauthorized, op, "no active session")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch, nil
}

// fail classifies a gateway error. Unauthorized ends the session.
func (s *Store) fail(op string, err error) *apperrors.Error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.KindServer, op, err)
	}
	s.logger.Warn("gateway call failed",
		applog.FieldOperation, op,
		applog.FieldErrorKind, appErr.Kind.String(),
		applog.FieldError, appErr.Error(),
	)
	if appErr.Kind == apperrors.KindUnauthorized {
		s.unauthorized()
	}
	return appErr
}

func (s *Store) unauthorized() {
	s.session.End(session.ReasonUnauthorized)
	// The session only notifies when it was active; clear regardless.
	s.endSession()
}

func (s *Store) endSession() {
	s.mu.Lock()
	s.epoch++
	s.state = Reduce(s.state, SessionEnded{})
	subs, snap := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, snap)
}

func (s *Store) dispatch(m Mutation) {
	s.mu.Lock()
	s.state = Reduce(s.state, m)
	subs, snap := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, snap)
}

// dispatchIn applies m only if the session has not ended since epoch was
// taken. Late completions from an ended session are dropped.
func (s *Store) dispatchIn(epoch uint64, m Mutation) bool {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return false
	}
	s.state = Reduce(s.state, m)
	subs, snap := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, snap)
	return true
}

func (s *Store) subscribersLocked() ([]func(State), State) {
	if len(s.subscribers) == 0 {
		return nil, State{}
	}
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs, s.state.Clone()
}

func notify(subs []func(State), snap State) {
	for _, fn := range subs {
		fn(snap.Clone())
	}
}

func validationError(op string, err error) *apperrors.Error {
	var verr models.ValidationErrors
	if errors.As(err, &verr) {
		e := apperrors.Validation(op, verr.Fields())
		e.Err = verr
		return e
	}
	return apperrors.Wrap(apperrors.KindValidation, op, err)
}

func notFound(op string, id int) *apperrors.Error {
	return apperrors.New(apperrors.KindNotFound, op, fmt.Sprintf("transaction %d not found", id))
}

func sessionEnded(op string) *apperrors.Error {
	return apperrors.New(apperrors.KindUnauthorized, op, "session ended before the server answered")
}
