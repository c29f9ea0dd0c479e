package bolt

import (
	"context"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
)

const defaultBucket = "credentials"

type credentialRepository struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the credentials bucket exists.
func Open(path string, bucket string) (repository.CredentialRepository, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &credentialRepository{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

func (r *credentialRepository) Get(ctx context.Context) (domain.Credentials, error) {
	if r == nil || r.db == nil {
		return domain.Credentials{}, bolt.ErrDatabaseNotOpen
	}
	var creds domain.Credentials
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		creds.AccessToken = string(b.Get([]byte(repository.KeyAccessToken)))
		creds.RefreshToken = string(b.Get([]byte(repository.KeyRefreshToken)))
		return nil
	})
	return creds, err
}

// Save overwrites both tokens in a single transaction.
func (r *credentialRepository) Save(ctx context.Context, creds domain.Credentials) error {
	if r == nil || r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if err := b.Put([]byte(repository.KeyAccessToken), []byte(creds.AccessToken)); err != nil {
			return err
		}
		return b.Put([]byte(repository.KeyRefreshToken), []byte(creds.RefreshToken))
	})
}

// Clear removes both tokens in a single transaction.
func (r *credentialRepository) Clear(ctx context.Context) error {
	if r == nil || r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if err := b.Delete([]byte(repository.KeyAccessToken)); err != nil {
			return err
		}
		return b.Delete([]byte(repository.KeyRefreshToken))
	})
}

func (r *credentialRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
