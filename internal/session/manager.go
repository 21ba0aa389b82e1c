package session

import (
	"context"

	"github.com/rogerio-castellano/finance-tracker/internal/apperrors"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

// AuthGateway is the part of the persistence service that owns identity.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (models.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (models.AuthResult, error)
	CurrentUser(ctx context.Context) (models.User, error)
}

// Manager runs the sign-in flows and feeds their result into a Session.
type Manager struct {
	session *Session
	gateway AuthGateway
}

func NewManager(s *Session, gw AuthGateway) *Manager {
	return &Manager{session: s, gateway: gw}
}

func (m *Manager) Session() *Session {
	return m.session
}

func (m *Manager) Login(ctx context.Context, email, password string) (models.User, error) {
	res, err := m.gateway.Login(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	if err := m.session.Begin(res.Token, &res.User); err != nil {
		return models.User{}, err
	}
	return res.User, nil
}

func (m *Manager) Register(ctx context.Context, name, email, password string) (models.User, error) {
	res, err := m.gateway.Register(ctx, name, email, password)
	if err != nil {
		return models.User{}, err
	}
	if err := m.session.Begin(res.Token, &res.User); err != nil {
		return models.User{}, err
	}
	return res.User, nil
}

// Resume restores a stored session and confirms it with the server. A token
// the server rejects ends the session; a transport failure keeps it so the
// next attempt can succeed.
func (m *Manager) Resume(ctx context.Context) (models.User, bool, error) {
	ok, err := m.session.Restore()
	if err != nil || !ok {
		return models.User{}, false, err
	}

	user, err := m.gateway.CurrentUser(ctx)
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindUnauthorized, apperrors.KindNotFound:
			m.session.End(ReasonInvalid)
			return models.User{}, false, nil
		}
		return models.User{}, false, err
	}
	m.session.SetUser(user)
	return user, true, nil
}

func (m *Manager) Logout() {
	m.session.End(ReasonLogout)
}
