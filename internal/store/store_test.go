package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rogerio-castellano/finance-tracker/internal/apperrors"
	"github.com/rogerio-castellano/finance-tracker/internal/filter"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/rogerio-castellano/finance-tracker/internal/session"
	"github.com/shopspring/decimal"
)

type fakeGateway struct {
	mu      sync.Mutex
	txs     []models.Transaction
	nextID  int
	calls   map[string]int
	fail    map[string]error
	block   chan struct{}
	started chan struct{}

	inFlight    map[int]int
	maxInFlight int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		txs:      models.SeedTransactions(1),
		nextID:   7,
		calls:    map[string]int{},
		fail:     map[string]error{},
		inFlight: map[int]int{},
	}
}

func (g *fakeGateway) enter(ctx context.Context, op string, id int) error {
	g.mu.Lock()
	g.calls[op]++
	g.inFlight[id]++
	if g.inFlight[id] > g.maxInFlight {
		g.maxInFlight = g.inFlight[id]
	}
	err := g.fail[op]
	block, started := g.block, g.started
	g.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	g.mu.Lock()
	g.inFlight[id]--
	g.mu.Unlock()
	return err
}

func (g *fakeGateway) count(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *fakeGateway) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	if err := g.enter(ctx, "list", 0); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Transaction, len(g.txs))
	copy(out, g.txs)
	return out, nil
}

func (g *fakeGateway) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if err := g.enter(ctx, "create", 0); err != nil {
		return models.Transaction{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	t.ID = g.nextID
	t.OwnerID = 1
	g.nextID++
	g.txs = append(g.txs, t)
	return t, nil
}

func (g *fakeGateway) UpdateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if err := g.enter(ctx, "update", t.ID); err != nil {
		return models.Transaction{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.txs {
		if g.txs[i].ID == t.ID {
			g.txs[i] = t
			return t, nil
		}
	}
	return models.Transaction{}, apperrors.New(apperrors.KindNotFound, "gateway.UpdateTransaction", "Transaction not found")
}

func (g *fakeGateway) DeleteTransaction(ctx context.Context, id int) error {
	if err := g.enter(ctx, "delete", id); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.txs {
		if g.txs[i].ID == id {
			g.txs = append(g.txs[:i], g.txs[i+1:]...)
			return nil
		}
	}
	return apperrors.New(apperrors.KindNotFound, "gateway.DeleteTransaction", "Transaction not found")
}

// ImportTransactions stores one expense per non-empty line after the header,
// using the line as description. Lines starting with "!" are rejected.
func (g *fakeGateway) ImportTransactions(ctx context.Context, filename string, csv io.Reader) (models.ImportResult, error) {
	if err := g.enter(ctx, "import", 0); err != nil {
		return models.ImportResult{}, err
	}
	raw, err := io.ReadAll(csv)
	if err != nil {
		return models.ImportResult{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	res := models.ImportResult{}
	for i, line := range strings.Split(strings.TrimSpace(string(raw)), "\n")[1:] {
		if strings.HasPrefix(line, "!") {
			res.Errors = append(res.Errors, models.ImportRowError{Row: i + 2, Message: "rejected"})
			continue
		}
		t := models.Transaction{
			ID: g.nextID, Amount: decimal.NewFromInt(10), Type: models.Expense, Category: "Food",
			Description: line, Date: models.NewDate(2025, time.January, 28), OwnerID: 1,
		}
		g.nextID++
		g.txs = append(g.txs, t)
		res.Transactions = append(res.Transactions, t)
	}
	res.Imported = len(res.Transactions)
	return res, nil
}

func activeSession(t *testing.T) *session.Session {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 1, "exp": time.Now().Add(time.Hour).Unix()})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	s := session.New(nil)
	if err := s.Begin(signed, &models.User{ID: 1, Name: models.DemoUserName, Email: models.DemoUserEmail}); err != nil {
		t.Fatalf("begin session: %v", err)
	}
	return s
}

func loadedStore(t *testing.T) (*Store, *fakeGateway, *session.Session) {
	t.Helper()
	gw := newFakeGateway()
	sess := activeSession(t)
	s := New(gw, sess)
	t.Cleanup(s.Close)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s, gw, sess
}

func TestLoad(t *testing.T) {
	s, gw, _ := loadedStore(t)

	snap := s.Snapshot()
	if len(snap.All) != 6 || len(snap.Visible) != 6 || snap.Loading || snap.LastError != nil {
		t.Fatalf("unexpected state after load: %+v", snap)
	}
	sum := s.Summary()
	if !sum.TotalIncome.Equal(decimal.NewFromInt(2800)) || !sum.TotalExpense.Equal(decimal.NewFromInt(950)) {
		t.Errorf("unexpected summary %+v", sum)
	}
	if gw.count("list") != 1 {
		t.Errorf("expected 1 list call, got %d", gw.count("list"))
	}
}

func TestLoadCallerCancellationDoesNotFailOthers(t *testing.T) {
	s, gw, _ := loadedStore(t)
	gw.mu.Lock()
	gw.block = make(chan struct{})
	gw.started = make(chan struct{}, 2)
	gw.mu.Unlock()

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() { firstErr <- s.Load(first) }()
	<-gw.started

	secondErr := make(chan error, 1)
	go func() { secondErr <- s.Load(context.Background()) }()
	// Give the second caller time to join the request already in flight.
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) || !errors.Is(err, apperrors.ErrNetwork) {
			t.Errorf("expected cancelled caller to get a network error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(gw.block)
	select {
	case err := <-secondErr:
		if err != nil {
			t.Errorf("expected second caller to succeed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("second caller never returned")
	}
	if n := gw.count("list"); n != 2 {
		t.Errorf("expected the callers to share one request, got %d list calls in total", n)
	}
	if snap := s.Snapshot(); snap.Loading || len(snap.All) != 6 {
		t.Errorf("unexpected state after shared load: %+v", snap)
	}
}

func TestAdd(t *testing.T) {
	s, _, _ := loadedStore(t)
	before := s.Summary().TotalExpense

	created, err := s.Add(context.Background(), models.TransactionDraft{
		Amount:      decimal.NewFromInt(500),
		Type:        models.Expense,
		Category:    "Food",
		Description: "Groceries",
		Date:        "2025-01-03",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	for _, tx := range models.SeedTransactions(1) {
		if tx.ID == created.ID {
			t.Fatalf("expected a fresh id, got %d", created.ID)
		}
	}
	if got := s.Summary().TotalExpense; !got.Sub(before).Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected total expense to grow by 500 from %s, got %s", before, got)
	}
	if len(s.Transactions()) != 7 {
		t.Errorf("expected 7 transactions, got %d", len(s.Transactions()))
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name  string
		draft models.TransactionDraft
		field string
	}{
		{"zero amount", models.TransactionDraft{Amount: decimal.Zero, Type: models.Expense, Category: "Food", Description: "x", Date: "2025-01-01"}, "amount"},
		{"negative amount", models.TransactionDraft{Amount: decimal.NewFromInt(-3), Type: models.Expense, Category: "Food", Description: "x", Date: "2025-01-01"}, "amount"},
		{"empty description", models.TransactionDraft{Amount: decimal.NewFromInt(3), Type: models.Expense, Category: "Food", Description: "  ", Date: "2025-01-01"}, "description"},
		{"empty category", models.TransactionDraft{Amount: decimal.NewFromInt(3), Type: models.Expense, Description: "x", Date: "2025-01-01"}, "category"},
		{"bad date", models.TransactionDraft{Amount: decimal.NewFromInt(3), Type: models.Expense, Category: "Food", Description: "x", Date: "2025-13-40"}, "date"},
		{"bad type", models.TransactionDraft{Amount: decimal.NewFromInt(3), Type: "refund", Category: "Food", Description: "x", Date: "2025-01-01"}, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, gw, _ := loadedStore(t)

			_, err := s.Add(context.Background(), tt.draft)
			var appErr *apperrors.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := appErr.Fields[tt.field]; !ok {
				t.Errorf("expected field %q in %v", tt.field, appErr.Fields)
			}
			if gw.count("create") != 0 {
				t.Error("validation failures must not reach the gateway")
			}
			if len(s.Transactions()) != 6 {
				t.Error("cache must be unchanged")
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	s, _, _ := loadedStore(t)

	amount := decimal.NewFromInt(600)
	updated, err := s.Update(context.Background(), 2, models.TransactionPatch{Amount: &amount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Category != "Food" || updated.Description != "Grocery shopping" || !updated.Amount.Equal(amount) {
		t.Errorf("patch must keep unspecified fields, got %+v", updated)
	}
	if got := s.Summary().TotalExpense; !got.Equal(decimal.NewFromInt(1050)) {
		t.Errorf("expected total expense 1050, got %s", got)
	}

	if _, err := s.Update(context.Background(), 99, models.TransactionPatch{Amount: &amount}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	bad := decimal.Zero
	if _, err := s.Update(context.Background(), 2, models.TransactionPatch{Amount: &bad}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	s, gw, _ := loadedStore(t)

	if err := s.Remove(context.Background(), 3); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(context.Background(), 3); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found on second remove, got %v", err)
	}
	if gw.count("delete") != 1 {
		t.Errorf("expected 1 delete call, got %d", gw.count("delete"))
	}
	for _, tx := range s.Transactions() {
		if tx.ID == 3 {
			t.Error("transaction 3 should be gone")
		}
	}
}

func TestRemoveKeepsCacheOnFailure(t *testing.T) {
	s, gw, _ := loadedStore(t)
	gw.fail["delete"] = apperrors.New(apperrors.KindServer, "gateway.DeleteTransaction", "Server error")

	if err := s.Remove(context.Background(), 3); !errors.Is(err, apperrors.ErrServer) {
		t.Fatalf("expected server error, got %v", err)
	}
	if len(s.Transactions()) != 6 {
		t.Error("a failed delete must leave the cache alone")
	}
}

func TestUnauthorizedDuringLoadEndsSession(t *testing.T) {
	gw := newFakeGateway()
	gw.fail["list"] = apperrors.New(apperrors.KindUnauthorized, "gateway.ListTransactions", "Invalid or expired token")
	sess := activeSession(t)
	s := New(gw, sess)
	defer s.Close()

	var reasons []session.EndReason
	cancel := sess.OnEnd(func(r session.EndReason) { reasons = append(reasons, r) })
	defer cancel()

	err := s.Load(context.Background())
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if sess.Active() {
		t.Error("session should have ended")
	}
	if len(reasons) != 1 || reasons[0] != session.ReasonUnauthorized {
		t.Errorf("expected one unauthorized end, got %v", reasons)
	}
	snap := s.Snapshot()
	if len(snap.All) != 0 || snap.Loading || snap.LastError != nil {
		t.Errorf("expected cleared state, got %+v", snap)
	}
}

func TestLoadFailureKeepsCache(t *testing.T) {
	s, gw, sess := loadedStore(t)
	gw.fail["list"] = apperrors.New(apperrors.KindNetwork, "gateway.ListTransactions", "connection refused")

	if err := s.Load(context.Background()); !errors.Is(err, apperrors.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	snap := s.Snapshot()
	if len(snap.All) != 6 {
		t.Errorf("cache must survive a failed load, got %d", len(snap.All))
	}
	if snap.LastError == nil || snap.LastError.Kind != apperrors.KindNetwork || snap.Loading {
		t.Errorf("expected last error recorded, got %+v", snap.LastError)
	}
	if !sess.Active() {
		t.Error("network errors must not end the session")
	}
}

func TestLoadWithoutSession(t *testing.T) {
	gw := newFakeGateway()
	s := New(gw, session.New(nil))
	defer s.Close()

	if err := s.Load(context.Background()); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if gw.count("list") != 0 {
		t.Error("no request should be made without a session")
	}
}

func TestFilterSurvivesReload(t *testing.T) {
	s, _, _ := loadedStore(t)

	if err := s.ApplyFilter(filter.Criteria{Search: "gas"}); err != nil {
		t.Fatalf("apply filter: %v", err)
	}
	if v := s.Visible(); len(v) != 1 || v[0].ID != 3 {
		t.Fatalf("expected [3], got %+v", v)
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if v := s.Visible(); len(v) != 1 || v[0].ID != 3 {
		t.Errorf("filter lost on reload, visible %+v", v)
	}
	if s.Snapshot().Criteria.Search != "gas" {
		t.Error("criteria lost on reload")
	}

	s.ClearFilter()
	if len(s.Visible()) != 6 {
		t.Errorf("expected all 6 after clear, got %d", len(s.Visible()))
	}
	if err := s.ApplyFilter(filter.Criteria{Type: "transfer"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSessionEndClearsStore(t *testing.T) {
	s, _, sess := loadedStore(t)
	_ = s.ApplyFilter(filter.Criteria{Type: "income"})

	sess.End(session.ReasonLogout)

	snap := s.Snapshot()
	if len(snap.All) != 0 || len(snap.Visible) != 0 || !snap.Criteria.IsEmpty() {
		t.Errorf("expected cleared state, got %+v", snap)
	}
	if len(snap.Categories) != len(models.DefaultCategories()) {
		t.Error("catalogue should reset to the defaults")
	}
}

func TestLateCompletionAfterSessionEndIsDropped(t *testing.T) {
	s, gw, sess := loadedStore(t)
	gw.mu.Lock()
	gw.block = make(chan struct{})
	gw.started = make(chan struct{}, 1)
	gw.mu.Unlock()

	errc := make(chan error, 1)
	go func() {
		_, err := s.Add(context.Background(), models.TransactionDraft{
			Amount: decimal.NewFromInt(10), Type: models.Expense, Category: "Food", Description: "Coffee", Date: "2025-01-26",
		})
		errc <- err
	}()

	<-gw.started
	sess.End(session.ReasonLogout)
	close(gw.block)

	if err := <-errc; !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for a late completion, got %v", err)
	}
	if n := len(s.Transactions()); n != 0 {
		t.Errorf("late completion leaked into the cache: %d transactions", n)
	}
}

func TestSameIDIsSerialized(t *testing.T) {
	s, gw, _ := loadedStore(t)
	gw.mu.Lock()
	gw.block = make(chan struct{})
	gw.started = make(chan struct{}, 2)
	gw.mu.Unlock()

	var wg sync.WaitGroup
	for _, v := range []int64{600, 700} {
		amount := decimal.NewFromInt(v)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Update(context.Background(), 2, models.TransactionPatch{Amount: &amount}); err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}

	<-gw.started
	select {
	case <-gw.started:
		t.Error("second update on the same id reached the gateway while the first was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(gw.block)
	wg.Wait()

	if gw.maxInFlight != 1 {
		t.Errorf("expected at most one in-flight call per id, got %d", gw.maxInFlight)
	}
	if s.locks.size() != 0 {
		t.Errorf("expected keyed locks to be released, %d left", s.locks.size())
	}
}

func TestDistinctIDsRunConcurrently(t *testing.T) {
	s, gw, _ := loadedStore(t)
	gw.mu.Lock()
	gw.block = make(chan struct{})
	gw.started = make(chan struct{}, 2)
	gw.mu.Unlock()

	var wg sync.WaitGroup
	for _, id := range []int{2, 3} {
		amount := decimal.NewFromInt(42)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Update(context.Background(), id, models.TransactionPatch{Amount: &amount}); err != nil {
				t.Errorf("update %d: %v", id, err)
			}
		}()
	}

	for range 2 {
		select {
		case <-gw.started:
		case <-time.After(2 * time.Second):
			t.Fatal("updates on distinct ids should be in flight together")
		}
	}
	close(gw.block)
	wg.Wait()
}

func TestAddCategory(t *testing.T) {
	s, _, _ := loadedStore(t)

	c, err := s.AddCategory("Pets", models.Expense, "")
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	if c.ID == "" || c.Color != models.FallbackColor {
		t.Errorf("unexpected category %+v", c)
	}
	if _, err := s.AddCategory("Pets", models.Expense, "#000000"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected duplicate to be rejected, got %v", err)
	}
	if _, err := s.AddCategory("Pets", models.Income, "#000000"); err != nil {
		t.Errorf("same name under another type should be allowed: %v", err)
	}
	if _, err := s.AddCategory(" ", models.Income, ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected empty name to be rejected, got %v", err)
	}
	if n := len(s.Categories()); n != len(models.DefaultCategories())+2 {
		t.Errorf("expected %d categories, got %d", len(models.DefaultCategories())+2, n)
	}

	s.SetCategories([]models.Category{c})
	if got := s.Categories(); len(got) != 1 || got[0].Name != "Pets" {
		t.Errorf("expected catalogue to be replaced, got %+v", got)
	}
}

func TestSubscribe(t *testing.T) {
	s, _, _ := loadedStore(t)

	var mu sync.Mutex
	var seen []int
	cancel := s.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, len(st.Visible))
		mu.Unlock()
	})

	_ = s.ApplyFilter(filter.Criteria{Type: "income"})
	s.ClearFilter()
	cancel()
	_ = s.ApplyFilter(filter.Criteria{Type: "expense"})

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != 2 || seen[1] != 6 {
		t.Errorf("unexpected notifications %v", seen)
	}
}

func TestSubscriberReloadsFromAnotherGoroutine(t *testing.T) {
	s, gw, _ := loadedStore(t)

	reloaded := make(chan error, 1)
	var once sync.Once
	cancel := s.Subscribe(func(st State) {
		if len(st.All) != 7 {
			return
		}
		once.Do(func() {
			go func() { reloaded <- s.Load(context.Background()) }()
		})
	})
	defer cancel()

	if _, err := s.Add(context.Background(), models.TransactionDraft{
		Amount: decimal.NewFromInt(5), Type: models.Expense, Category: "Food", Description: "Snack", Date: "2025-01-04",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	select {
	case err := <-reloaded:
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("reload started by a subscriber never finished")
	}
	if n := gw.count("list"); n != 2 {
		t.Errorf("expected 2 list calls, got %d", n)
	}
}

func TestDashboard(t *testing.T) {
	s, _, _ := loadedStore(t)
	now := time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC)

	d := s.Dashboard(now)
	if len(d.Monthly) != 6 || d.Monthly[5].Label != "Jan 2025" {
		t.Fatalf("unexpected monthly buckets %+v", d.Monthly)
	}
	if !d.Monthly[5].Expense.Equal(decimal.NewFromInt(950)) {
		t.Errorf("expected January expense 950, got %s", d.Monthly[5].Expense)
	}
	if len(d.Recent) != 5 || d.Recent[0].ID != 6 {
		t.Errorf("unexpected recent list %+v", d.Recent)
	}
	if len(d.Categories) != 4 || d.Categories[0].Name != "Food" {
		t.Errorf("unexpected breakdown %+v", d.Categories)
	}
}

func TestImport(t *testing.T) {
	s, gw, _ := loadedStore(t)
	if err := s.ApplyFilter(filter.Criteria{Search: "lunch"}); err != nil {
		t.Fatalf("filter: %v", err)
	}

	res, err := s.Import(context.Background(), "jan.csv", strings.NewReader("header\nlunch\n!broken\nlunch again\n"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 2 || len(res.Errors) != 1 || res.Errors[0].Row != 3 {
		t.Errorf("unexpected result %+v", res)
	}
	if got := len(s.Transactions()); got != 8 {
		t.Errorf("expected 8 cached transactions, got %d", got)
	}
	if got := s.Visible(); len(got) != 2 || got[0].ID != 7 || got[1].ID != 8 {
		t.Errorf("imported rows should pass through the active filter, got %+v", got)
	}
	if gw.count("import") != 1 {
		t.Errorf("expected one import call, got %d", gw.count("import"))
	}
}

func TestImportUnauthorizedEndsSession(t *testing.T) {
	s, gw, sess := loadedStore(t)
	gw.fail["import"] = apperrors.New(apperrors.KindUnauthorized, "gateway.ImportTransactions", "Invalid or expired token")

	_, err := s.Import(context.Background(), "jan.csv", strings.NewReader("header\nlunch\n"))
	if !apperrors.IsKind(err, apperrors.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if sess.Active() {
		t.Error("session should have ended")
	}
	if len(s.Transactions()) != 0 {
		t.Error("cache should be cleared")
	}
}
