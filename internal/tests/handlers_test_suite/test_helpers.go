package handlers_test_suite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/rogerio-castellano/finance-tracker/internal/auth"
	"github.com/rogerio-castellano/finance-tracker/internal/events"
	"github.com/rogerio-castellano/finance-tracker/internal/http/ban"
	handler "github.com/rogerio-castellano/finance-tracker/internal/http/handlers"
	"github.com/rogerio-castellano/finance-tracker/internal/http/router"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/rogerio-castellano/finance-tracker/internal/repo"
)

const testSecret = "handlers-test-secret"

var (
	token  string
	issuer = auth.NewTokenIssuer(testSecret, time.Hour)
)

func init() {
	env := newTestEnv()

	var err error
	token, err = generateToken(env.router, models.DemoUserEmail, models.DemoUserPassword)
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
}

// testEnv is a router over freshly seeded in-memory repositories. The demo
// user always gets id 1, so the package token stays valid across envs.
type testEnv struct {
	router       http.Handler
	users        *repo.InMemoryUserRepository
	transactions *repo.InMemoryTransactionRepository
	events       *recordingPublisher
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:        repo.NewInMemoryUserRepository(),
		transactions: repo.NewInMemoryTransactionRepository(),
		events:       &recordingPublisher{},
	}
	if _, err := repo.Seed(context.Background(), env.users, env.transactions); err != nil {
		panic(fmt.Sprintf("error seeding repositories: %v", err))
	}

	guard := ban.NewGuard(ban.NewMemoryStore(), ban.Config{MaxStrikes: 3}, nil)
	h := handler.New(handler.Deps{
		Users:        env.users,
		Transactions: env.transactions,
		Tokens:       issuer,
		Guard:        guard,
		Events:       env.events,
	})
	env.router = router.NewRouter(h, issuer, router.Config{})
	return env
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) kinds() []events.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Kind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

func generateToken(r http.Handler, email, password string) (string, error) {
	w := login(r, email, password)
	if w.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", w.Code)
	}

	var resp models.AuthResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Token, nil
}

func login(r http.Handler, email, password string) *httptest.ResponseRecorder {
	return send(r, http.MethodPost, "/api/auth/login", "", handler.LoginRequest{Email: email, Password: password})
}

// send serves one request. body is JSON encoded unless it is already a string.
func send(r http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTransaction(r http.Handler, t handler.TransactionRequest) *httptest.ResponseRecorder {
	return send(r, http.MethodPost, "/api/transactions", token, t)
}

func updateTransaction(r http.Handler, id int, patch any) *httptest.ResponseRecorder {
	return send(r, http.MethodPut, fmt.Sprintf("/api/transactions/%d", id), token, patch)
}

func deleteTransaction(r http.Handler, id int) *httptest.ResponseRecorder {
	return send(r, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", id), token, nil)
}

func listTransactions(r http.Handler, bearer string) ([]models.Transaction, *httptest.ResponseRecorder) {
	w := send(r, http.MethodGet, "/api/transactions", bearer, nil)
	var txs []models.Transaction
	if w.Code == http.StatusOK {
		_ = json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&txs)
	}
	return txs, w
}

func decodeError(w *httptest.ResponseRecorder) handler.ErrorResponse {
	var resp handler.ErrorResponse
	_ = json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp)
	return resp
}

func fieldNames(resp handler.ErrorResponse) map[string]bool {
	out := map[string]bool{}
	for _, e := range resp.Errors {
		out[e.Field] = true
	}
	return out
}

func importCSV(r http.Handler, csvContent string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "transactions.csv")
	part.Write([]byte(csvContent))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
