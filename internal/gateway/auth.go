package gateway

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/api/transport"
	"github.com/fastygo/taskdesk/domain"
)

// Signup registers an account. Tokens are persisted when the backend returns
// a session; a confirmation-pending signup returns a nil session.
func (g *Gateway) Signup(ctx context.Context, email, password string) (*transport.AuthResponse, error) {
	var resp transport.AuthResponse
	if err := g.request(ctx, http.MethodPost, "/auth/signup", transport.CredentialsRequest{Email: email, Password: password}, false, &resp); err != nil {
		return nil, err
	}
	if err := g.saveSession(ctx, resp.Session); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signin exchanges credentials for a session and persists its tokens.
func (g *Gateway) Signin(ctx context.Context, email, password string) (*transport.AuthResponse, error) {
	var resp transport.AuthResponse
	if err := g.request(ctx, http.MethodPost, "/auth/signin", transport.CredentialsRequest{Email: email, Password: password}, false, &resp); err != nil {
		return nil, err
	}
	if err := g.saveSession(ctx, resp.Session); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signout always drops the persisted credentials, whatever the backend answers.
func (g *Gateway) Signout(ctx context.Context) error {
	status, payload, err := g.do(ctx, http.MethodPost, "/auth/signout", nil, true)
	if clearErr := g.creds.Clear(ctx); clearErr != nil {
		g.logger.Error("failed to clear credentials on signout", zap.Error(clearErr))
	}
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		g.notifyUnauthorized(ctx)
		return domain.ErrAuthExpired
	}
	return decode(status, payload, nil)
}

// CurrentUser resolves the identity behind the persisted token.
func (g *Gateway) CurrentUser(ctx context.Context) (*domain.User, error) {
	var resp transport.UserResponse
	if err := g.request(ctx, http.MethodGet, "/auth/me", nil, true, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, domain.NewError(domain.ErrCodeHTTP, "response carried no user")
	}
	return resp.User, nil
}

// RefreshSession exchanges refreshToken for a new session and persists it.
func (g *Gateway) RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error) {
	var resp transport.SessionResponse
	if err := g.request(ctx, http.MethodPost, "/auth/refresh", transport.RefreshRequest{RefreshToken: refreshToken}, false, &resp); err != nil {
		return nil, err
	}
	if resp.Session == nil {
		return nil, domain.NewError(domain.ErrCodeHTTP, "response carried no session")
	}
	if err := g.saveSession(ctx, resp.Session); err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// ForgotPassword asks the backend to mail a reset token and returns its message.
func (g *Gateway) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp transport.MessageResponse
	if err := g.request(ctx, http.MethodPost, "/auth/forgot-password", transport.ForgotPasswordRequest{Email: email}, false, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResetPassword sets a new password with a mailed token.
func (g *Gateway) ResetPassword(ctx context.Context, email, token, newPassword string) (string, error) {
	var resp transport.MessageResponse
	body := transport.ResetPasswordRequest{Email: email, Token: token, NewPassword: newPassword}
	if err := g.request(ctx, http.MethodPost, "/auth/reset-password", body, false, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
