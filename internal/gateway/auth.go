package gateway

import (
	"context"
	"net/http"

	"github.com/rogerio-castellano/finance-tracker/internal/apperrors"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. A duplicate email is reported as KindConflict.
func (c *Client) Register(ctx context.Context, name, email, password string) (models.AuthResult, error) {
	var out models.AuthResult
	err := c.do(ctx, request{
		op:         "gateway.Register",
		method:     http.MethodPost,
		path:       "/api/auth/register",
		body:       registerBody{Name: name, Email: email, Password: password},
		wantStatus: http.StatusCreated,
		out:        &out,
		badRequest: apperrors.KindConflict,
	})
	return out, err
}

// Login exchanges credentials for a token. Bad credentials come back as
// KindUnauthorized with the server's message.
func (c *Client) Login(ctx context.Context, email, password string) (models.AuthResult, error) {
	var out models.AuthResult
	err := c.do(ctx, request{
		op:         "gateway.Login",
		method:     http.MethodPost,
		path:       "/api/auth/login",
		body:       loginBody{Email: email, Password: password},
		wantStatus: http.StatusOK,
		out:        &out,
		badRequest: apperrors.KindUnauthorized,
	})
	return out, err
}

func (c *Client) CurrentUser(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.do(ctx, request{
		op:         "gateway.CurrentUser",
		method:     http.MethodGet,
		path:       "/api/users/me",
		auth:       true,
		wantStatus: http.StatusOK,
		out:        &out,
	})
	return out, err
}
