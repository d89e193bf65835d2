// Package sqlite provides a SQLite-backed invitation store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/twinup/pairlink/internal/invitation/domain"
	"github.com/twinup/pairlink/internal/invitation/storage"
	"github.com/twinup/pairlink/internal/invitation/storage/sqlite/migrations"
	sqlitemigrate "github.com/twinup/pairlink/internal/platform/storage/sqlitemigrate"
)

// Store persists invitation state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite invitation store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put upserts an invitation record.
func (s *Store) Put(ctx context.Context, invitation domain.Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(invitation.ID) == "" {
		return fmt.Errorf("invitation id is required")
	}

	metadata, err := marshalMetadata(invitation.Metadata)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO invitations (
		   id,
		   token,
		   inviter_name,
		   recipient_email,
		   recipient_phone,
		   status,
		   created_at,
		   expires_at,
		   attempt_count,
		   last_attempt_at,
		   twin_type,
		   accent_color,
		   deep_link,
		   metadata
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   token = excluded.token,
		   inviter_name = excluded.inviter_name,
		   recipient_email = excluded.recipient_email,
		   recipient_phone = excluded.recipient_phone,
		   status = excluded.status,
		   created_at = excluded.created_at,
		   expires_at = excluded.expires_at,
		   attempt_count = excluded.attempt_count,
		   last_attempt_at = excluded.last_attempt_at,
		   twin_type = excluded.twin_type,
		   accent_color = excluded.accent_color,
		   deep_link = excluded.deep_link,
		   metadata = excluded.metadata`,
		invitation.ID,
		invitation.Token,
		invitation.InviterName,
		invitation.RecipientEmail,
		invitation.RecipientPhone,
		string(invitation.Status),
		toMillis(invitation.CreatedAt),
		toMillis(invitation.ExpiresAt),
		invitation.AttemptCount,
		toMillis(invitation.LastAttemptAt),
		invitation.TwinType,
		invitation.AccentColor,
		invitation.DeepLink,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("put invitation: %w", err)
	}
	return nil
}

// Get returns one invitation by ID.
func (s *Store) Get(ctx context.Context, invitationID string) (domain.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Invitation{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Invitation{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(invitationID) == "" {
		return domain.Invitation{}, fmt.Errorf("invitation id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		selectColumns+` FROM invitations WHERE id = ?`,
		invitationID,
	)
	return scanInvitation(row)
}

// FindByToken returns one invitation by its secret token.
func (s *Store) FindByToken(ctx context.Context, token string) (domain.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Invitation{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Invitation{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		selectColumns+` FROM invitations WHERE token = ?`,
		token,
	)
	return scanInvitation(row)
}

// List returns every stored invitation, newest first.
func (s *Store) List(ctx context.Context) ([]domain.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		selectColumns+` FROM invitations ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.Invitation
	for rows.Next() {
		record, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return records, nil
}

// UpdateStatus sets the record's status and stamps LastAttemptAt. Missing
// records are a no-op.
func (s *Store) UpdateStatus(ctx context.Context, invitationID string, status domain.Status, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE invitations SET status = ?, last_attempt_at = ? WHERE id = ?`,
		string(status),
		toMillis(at),
		invitationID,
	)
	if err != nil {
		return fmt.Errorf("update invitation status: %w", err)
	}
	return nil
}

// IncrementAttempt bumps the delivery attempt counter and stamps
// LastAttemptAt. Missing records are a no-op.
func (s *Store) IncrementAttempt(ctx context.Context, invitationID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE invitations SET attempt_count = attempt_count + 1, last_attempt_at = ? WHERE id = ?`,
		toMillis(at),
		invitationID,
	)
	if err != nil {
		return fmt.Errorf("increment invitation attempt: %w", err)
	}
	return nil
}

// CountCreatedSince counts records created at or after cutoff.
func (s *Store) CountCreatedSince(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM invitations WHERE created_at >= ?`,
		toMillis(cutoff),
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count invitations: %w", err)
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
	if s == nil || s.sqlDB == nil {
		return 0, 0, fmt.Errorf("storage is not configured")
	}

	nowMillis := toMillis(now.UTC())

	expireResult, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE invitations SET status = ?, last_attempt_at = ?
		 WHERE status = ? AND expires_at < ?`,
		string(domain.StatusExpired),
		nowMillis,
		string(domain.StatusPending),
		nowMillis,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("expire invitations: %w", err)
	}
	expired, err := expireResult.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("expire invitations rows: %w", err)
	}

	cutoff := toMillis(now.UTC().Add(-domain.RetentionWindow))
	dropResult, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM invitations WHERE created_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("drop stale invitations: %w", err)
	}
	removed, err := dropResult.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("drop stale invitations rows: %w", err)
	}

	return int(expired), int(removed), nil
}

const selectColumns = `SELECT
  id,
  token,
  inviter_name,
  recipient_email,
  recipient_phone,
  status,
  created_at,
  expires_at,
  attempt_count,
  last_attempt_at,
  twin_type,
  accent_color,
  deep_link,
  metadata`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row rowScanner) (domain.Invitation, error) {
	var (
		invitation    domain.Invitation
		status        string
		createdAt     int64
		expiresAt     int64
		lastAttemptAt int64
		metadata      string
	)
	err := row.Scan(
		&invitation.ID,
		&invitation.Token,
		&invitation.InviterName,
		&invitation.RecipientEmail,
		&invitation.RecipientPhone,
		&status,
		&createdAt,
		&expiresAt,
		&invitation.AttemptCount,
		&lastAttemptAt,
		&invitation.TwinType,
		&invitation.AccentColor,
		&invitation.DeepLink,
		&metadata,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Invitation{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("scan invitation: %w", err)
	}

	invitation.Status = domain.Status(status)
	invitation.CreatedAt = fromMillis(createdAt)
	invitation.ExpiresAt = fromMillis(expiresAt)
	invitation.LastAttemptAt = fromMillis(lastAttemptAt)
	if metadata != "" && metadata != "{}" {
		if err := json.Unmarshal([]byte(metadata), &invitation.Metadata); err != nil {
			return domain.Invitation{}, fmt.Errorf("unmarshal invitation metadata: %w", err)
		}
	}
	return invitation, nil
}

func marshalMetadata(metadata map[string]string) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshal invitation metadata: %w", err)
	}
	return string(payload), nil
}
