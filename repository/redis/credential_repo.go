package redis

import (
	"context"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
)

type credentialRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewCredentialRepository creates a Redis-backed credential repository. Both
// tokens live in one hash so they are written and removed together. A ttl of
// zero keeps the credentials until they are cleared.
func NewCredentialRepository(client *redislib.Client, prefix string, ttl time.Duration) repository.CredentialRepository {
	if prefix == "" {
		prefix = "taskdesk:"
	}
	return &credentialRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *credentialRepository) Get(ctx context.Context) (domain.Credentials, error) {
	values, err := r.client.HMGet(ctx, r.key(), repository.KeyAccessToken, repository.KeyRefreshToken).Result()
	if err != nil {
		return domain.Credentials{}, err
	}

	var creds domain.Credentials
	if v, ok := values[0].(string); ok {
		creds.AccessToken = v
	}
	if v, ok := values[1].(string); ok {
		creds.RefreshToken = v
	}
	return creds, nil
}

func (r *credentialRepository) Save(ctx context.Context, creds domain.Credentials) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, r.key())
		pipe.HSet(ctx, r.key(),
			repository.KeyAccessToken, creds.AccessToken,
			repository.KeyRefreshToken, creds.RefreshToken,
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key(), r.ttl)
		}
		return nil
	})
	return err
}

func (r *credentialRepository) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key()).Err()
}

func (r *credentialRepository) Close() error {
	return r.client.Close()
}

func (r *credentialRepository) key() string {
	return r.prefix + "credentials"
}
