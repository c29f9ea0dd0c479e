package memory

import (
	"context"
	"sync"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
)

// CredentialRepository keeps the token pair in process memory. It backs
// ephemeral CLI sessions and tests.
type CredentialRepository struct {
	mu     sync.RWMutex
	creds  domain.Credentials
	clears int
}

// NewCredentialRepository returns an empty repository.
func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{}
}

var _ repository.CredentialRepository = (*CredentialRepository)(nil)

func (r *CredentialRepository) Get(ctx context.Context) (domain.Credentials, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.creds, nil
}

func (r *CredentialRepository) Save(ctx context.Context, creds domain.Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds = creds
	return nil
}

func (r *CredentialRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds = domain.Credentials{}
	r.clears++
	return nil
}

// Clears returns how many times Clear was called.
func (r *CredentialRepository) Clears() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clears
}

func (r *CredentialRepository) Close() error {
	return nil
}
