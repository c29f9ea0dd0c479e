package httpcontext

import (
	"context"
	"time"

	"github.com/google/uuid"

	appLogger "github.com/fastygo/taskdesk/pkg/logger"
)

// HeaderRequestID carries the per-call correlation id to the backend.
const HeaderRequestID = "X-Request-ID"

// Adapter prepares the context of an outbound backend call: it assigns a
// request id and, when configured, a deadline.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter. A non-positive timeout leaves calls
// bounded only by the caller's context.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout < 0 {
		timeout = 0
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach derives the call context. An existing request id on ctx is kept, and
// a caller deadline earlier than the adapter timeout wins.
func (a *Adapter) Attach(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	if appLogger.RequestID(ctx) == "" {
		ctx = appLogger.ContextWithRequestID(ctx, uuid.NewString())
	}

	if a == nil || a.timeout == 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
