// Package gateway is the single point of contact with the task backend. It
// owns request shaping, bearer-token attachment, response decoding and the
// credential invalidation that follows a 401.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/api/transport"
	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/pkg/httpcontext"
	appLogger "github.com/fastygo/taskdesk/pkg/logger"
	"github.com/fastygo/taskdesk/repository"
	"github.com/fastygo/taskdesk/usecase"
)

// Config controls the underlying fasthttp client.
type Config struct {
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxConns     int
	// Dial overrides connection setup; tests use it to reach an in-memory listener.
	Dial fasthttp.DialFunc
}

// UnauthorizedFunc is notified after a 401 cleared the persisted credentials.
type UnauthorizedFunc = usecase.UnauthorizedFunc

var (
	_ usecase.AuthGateway     = (*Gateway)(nil)
	_ usecase.TaskGateway     = (*Gateway)(nil)
	_ usecase.CategoryGateway = (*Gateway)(nil)
)

// Gateway issues every backend call and owns the persisted credentials.
type Gateway struct {
	baseURL string
	client  *fasthttp.Client
	creds   repository.CredentialRepository
	logger  *zap.Logger

	mu           sync.RWMutex
	unauthorized []UnauthorizedFunc
}

// New creates a gateway over a fasthttp client. creds is read fresh on every call.
func New(cfg Config, creds repository.CredentialRepository, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := &fasthttp.Client{
		Name:            "taskdesk",
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		MaxConnsPerHost: cfg.MaxConns,
		Dial:            cfg.Dial,
	}
	return &Gateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		creds:   creds,
		logger:  logger,
	}
}

// OnUnauthorized registers fn to run whenever the backend answers 401.
func (g *Gateway) OnUnauthorized(fn UnauthorizedFunc) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unauthorized = append(g.unauthorized, fn)
}

// IsAuthenticated reports whether an access token is persisted. It does not
// check the token with the backend.
func (g *Gateway) IsAuthenticated(ctx context.Context) bool {
	creds, err := g.creds.Get(ctx)
	if err != nil {
		g.logger.Warn("failed to read credentials", zap.Error(err))
		return false
	}
	return !creds.Empty()
}

// Credentials returns the persisted token pair.
func (g *Gateway) Credentials(ctx context.Context) (domain.Credentials, error) {
	return g.creds.Get(ctx)
}

// ClearCredentials forgets the persisted token pair without calling the backend.
func (g *Gateway) ClearCredentials(ctx context.Context) error {
	return g.creds.Clear(ctx)
}

func (g *Gateway) saveSession(ctx context.Context, session *domain.Session) error {
	if session == nil || session.AccessToken == "" {
		return nil
	}
	if err := g.creds.Save(ctx, session.Credentials()); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}
	return nil
}

// requireToken fails fast when no token is persisted.
func (g *Gateway) requireToken(ctx context.Context) error {
	if !g.IsAuthenticated(ctx) {
		return domain.ErrAuthRequired
	}
	return nil
}

// request performs one exchange and decodes a successful body into out.
func (g *Gateway) request(ctx context.Context, method, path string, body interface{}, auth bool, out interface{}) error {
	status, payload, err := g.do(ctx, method, path, body, auth)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		g.expire(ctx)
		return domain.ErrAuthExpired
	}
	return decode(status, payload, out)
}

// do sends the request and returns the status and a copy of the response body.
func (g *Gateway) do(ctx context.Context, method, path string, body interface{}, auth bool) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, domain.WrapError(domain.ErrCodeNetwork, "request cancelled", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	requestID := appLogger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	req.SetRequestURI(g.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set(httpcontext.HeaderRequestID, requestID)

	if auth {
		creds, err := g.creds.Get(ctx)
		if err != nil {
			return 0, nil, fmt.Errorf("read credentials: %w", err)
		}
		if creds.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
		}
	}

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		req.SetBodyRaw(encoded)
	}

	log := appLogger.WithRequestID(appLogger.ContextWithRequestID(ctx, requestID), g.logger)
	start := time.Now()

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = g.client.DoDeadline(req, resp, deadline)
	} else {
		err = g.client.Do(req, resp)
	}
	if err != nil {
		log.Debug("backend call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return 0, nil, domain.WrapError(domain.ErrCodeNetwork, "backend unreachable", err)
	}

	status := resp.StatusCode()
	log.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)))

	payload := append([]byte(nil), resp.Body()...)
	return status, payload, nil
}

// expire clears persisted credentials and notifies listeners.
func (g *Gateway) expire(ctx context.Context) {
	if err := g.creds.Clear(ctx); err != nil {
		g.logger.Error("failed to clear credentials after 401", zap.Error(err))
	}
	g.notifyUnauthorized(ctx)
}

func (g *Gateway) notifyUnauthorized(ctx context.Context) {
	g.mu.RLock()
	listeners := append([]UnauthorizedFunc(nil), g.unauthorized...)
	g.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx)
	}
}

func decode(status int, payload []byte, out interface{}) error {
	if status < 200 || status >= 300 {
		return domain.NewHTTPError(status, transport.ParseError(payload))
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return domain.WrapError(domain.ErrCodeHTTP, "invalid response body", err)
	}
	return nil
}
