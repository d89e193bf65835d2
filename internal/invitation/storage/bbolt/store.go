// Package bbolt provides a BoltDB-backed invitation store for device-local
// durable storage.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/twinup/pairlink/internal/invitation/domain"
	"github.com/twinup/pairlink/internal/invitation/storage"
)

const invitationBucket = "invitation"

// Store provides a BoltDB-backed invitation store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put persists an invitation record.
func (s *Store) Put(ctx context.Context, invitation domain.Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(invitation.ID) == "" {
		return fmt.Errorf("invitation id is required")
	}

	payload, err := json.Marshal(invitation)
	if err != nil {
		return fmt.Errorf("marshal invitation: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invitationBucket))
		if bucket == nil {
			return fmt.Errorf("invitation bucket is missing")
		}
		return bucket.Put([]byte(invitation.ID), payload)
	})
}

// Get fetches an invitation record by ID.
func (s *Store) Get(ctx context.Context, invitationID string) (domain.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Invitation{}, err
	}
	if s == nil || s.db == nil {
		return domain.Invitation{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(invitationID) == "" {
		return domain.Invitation{}, fmt.Errorf("invitation id is required")
	}

	var invitation domain.Invitation
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invitationBucket))
		if bucket == nil {
			return fmt.Errorf("invitation bucket is missing")
		}
		payload := bucket.Get([]byte(invitationID))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &invitation); err != nil {
			return fmt.Errorf("unmarshal invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Invitation{}, err
	}
	return invitation, nil
}

// FindByToken fetches an invitation record by its secret token. Tokens are
// assumed to be already validated by the caller.
func (s *Store) FindByToken(ctx context.Context, token string) (domain.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Invitation{}, err
	}
	if s == nil || s.db == nil {
		return domain.Invitation{}, fmt.Errorf("storage is not configured")
	}

	var found *domain.Invitation
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invitationBucket))
		if bucket == nil {
			return fmt.Errorf("invitation bucket is missing")
		}
		return bucket.ForEach(func(_, payload []byte) error {
			var invitation domain.Invitation
			if err := json.Unmarshal(payload, &invitation); err != nil {
				return fmt.Errorf("unmarshal invitation: %w", err)
			}
			if invitation.Token == token {
				found = &invitation
			}
			return nil
		})
	})
	if err != nil {
		return domain.Invitation{}, err
	}
	if found == nil {
		return domain.Invitation{}, storage.ErrNotFound
	}
	return *found, nil
}

// List returns every stored invitation record.
func (s *Store) List(ctx context.Context) ([]domain.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var records []domain.Invitation
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invitationBucket))
		if bucket == nil {
			return fmt.Errorf("invitation bucket is missing")
		}
		return bucket.ForEach(func(_, payload []byte) error {
			var invitation domain.Invitation
			if err := json.Unmarshal(payload, &invitation); err != nil {
				return fmt.Errorf("unmarshal invitation: %w", err)
			}
			records = append(records, invitation)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateStatus sets the record's status and stamps LastAttemptAt. Missing
// records are a no-op.
func (s *Store) UpdateStatus(ctx context.Context, invitationID string, status domain.Status, at time.Time) error {
	return s.mutate(ctx, invitationID, func(invitation *domain.Invitation) {
		invitation.Status = status
		invitation.LastAttemptAt = at.UTC()
	})
}

// IncrementAttempt bumps the record's delivery attempt counter and stamps
// LastAttemptAt. Missing records are a no-op.
func (s *Store) IncrementAttempt(ctx context.Context, invitationID string, at time.Time) error {
	return s.mutate(ctx, invitationID, func(invitation *domain.Invitation) {
		invitation.AttemptCount++
		invitation.LastAttemptAt = at.UTC()
	})
}

func (s *Store) mutate(ctx context.Context, invitationID string, apply func(*domain.Invitation)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invitationBucket))
		if bucket == nil {
			return fmt.Errorf("invitation bucket is missing")
		}
		payload := bucket.Get([]byte(invitationID))
		if payload == nil {
			return nil
		}
		var invitation domain.Invitation
		if err := json.Unmarshal(payload, &invitation); err != nil {
			return fmt.Errorf("unmarshal invitation: %w", err)
		}
		apply(&invitation)
		updated, err := json.Marshal(invitation)
		if err != nil {
			return fmt.Errorf("marshal invitation: %w", err)
		}
		return bucket.Put([]byte(invitationID), updated)
	})
}

// CountCreatedSince counts records created at or after cutoff.
func (s *Store) CountCreatedSince(ctx context.Context, cutoff time.Time) (int, error) {
	records, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, record := range records {
		if !record.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

// Prune expires pending records past their deadline, then drops records
// older than the retention window. It reports how many records were
// expired and how many were removed.
func (s *Store) Prune(ctx context.Context, now time.Time) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if s == nil || s.db == nil {
		return 0, 0, fmt.Errorf("storage is not configured")
	}

	now = now.UTC()
	expired := 0
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invitationBucket))
		if bucket == nil {
			return fmt.Errorf("invitation bucket is missing")
		}

		// The bucket must not be mutated mid-iteration; collect first.
		type pendingWrite struct {
			key     []byte
			payload []byte
		}
		var writes []pendingWrite
		var stale [][]byte
		err := bucket.ForEach(func(key, payload []byte) error {
			var invitation domain.Invitation
			if err := json.Unmarshal(payload, &invitation); err != nil {
				return fmt.Errorf("unmarshal invitation: %w", err)
			}

			if invitation.Status == domain.StatusPending && now.After(invitation.ExpiresAt) {
				invitation.Status = domain.StatusExpired
				invitation.LastAttemptAt = now
				updated, err := json.Marshal(invitation)
				if err != nil {
					return fmt.Errorf("marshal invitation: %w", err)
				}
				writes = append(writes, pendingWrite{
					key:     append([]byte(nil), key...),
					payload: updated,
				})
			}

			if now.Sub(invitation.CreatedAt) > domain.RetentionWindow {
				stale = append(stale, append([]byte(nil), key...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, write := range writes {
			if err := bucket.Put(write.key, write.payload); err != nil {
				return err
			}
			expired++
		}
		for _, key := range stale {
			if err := bucket.Delete(key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return expired, removed, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(invitationBucket))
		if err != nil {
			return fmt.Errorf("create invitation bucket: %w", err)
		}
		return nil
	})
}
