package repository

import (
	"context"

	"github.com/fastygo/taskdesk/domain"
)

// Storage keys of the persisted token pair.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// CredentialRepository persists the process-wide token pair. Both values are
// written and removed together; Get returns empty Credentials when nothing is stored.
type CredentialRepository interface {
	Get(ctx context.Context) (domain.Credentials, error)
	Save(ctx context.Context, creds domain.Credentials) error
	Clear(ctx context.Context) error
	Close() error
}
