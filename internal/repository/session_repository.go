package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benfiola/devtools/internal/domain"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const (
	// SessionSchemaVersion defines the current schema version for session files
	SessionSchemaVersion = "1.0.0"
	// SessionFilePermissions defines the permissions for session files
	SessionFilePermissions = 0600
	// SessionDirPermissions defines the permissions for the session directory
	SessionDirPermissions = 0700
	// LockTimeout defines the maximum time to wait for a lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval defines the interval between lock retry attempts
	LockRetryInterval = 100 * time.Millisecond
)

// SessionRepository persists publish session records.

type SessionRepository interface {
	Save(ctx context.Context, session *domain.PublishSession) error
	Load(ctx context.Context, sessionID string) (*domain.PublishSession, error)
	LoadLatest(ctx context.Context) (*domain.PublishSession, error)
}

// SessionMetadata contains metadata about the session file
type SessionMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	Checksum      string    `json:"checksum"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// sessionWrapper wraps the session with metadata
type sessionWrapper struct {
	Metadata SessionMetadata        `json:"metadata"`
	Session  *domain.PublishSession `json:"session"`
}

// JSONSessionRepository implements SessionRepository using JSON file storage
type JSONSessionRepository struct {
	fs         afero.Fs
	sessionDir string
	mu         sync.RWMutex
}

// NewJSONSessionRepository creates a new JSON-based session repository
func NewJSONSessionRepository(fs afero.Fs, sessionDir string) SessionRepository {
	if sessionDir == "" {
		sessionDir = ".devtools-sessions"
	}
	return &JSONSessionRepository{
		fs:         fs,
		sessionDir: sessionDir,
	}
}

// Save persists the publish session to a JSON file with proper locking
func (r *JSONSessionRepository) Save(ctx context.Context, session *domain.PublishSession) error {
	if err := r.fs.MkdirAll(r.sessionDir, SessionDirPermissions); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}
	filename := r.sessionFilename(session.SessionID)
	lock := flock.New(r.lockFilename(session.SessionID))
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	locked, err := r.acquireLock(lockCtx, lock, lock.TryLock)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire lock within timeout")
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to unlock file: %v\n", unlockErr)
		}
	}()
	wrapper := sessionWrapper{
		Metadata: SessionMetadata{
			SchemaVersion: SessionSchemaVersion,
			CreatedAt:     session.StartedAt,
			UpdatedAt:     time.Now(),
		},
		Session: session,
	}
	sessionData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session for checksum: %w", err)
	}
	wrapper.Metadata.Checksum = checksum(sessionData)
	data, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session wrapper: %w", err)
	}
	// Write atomically using temp file
	tempFile := filename + ".tmp"
	if err := afero.WriteFile(r.fs, tempFile, data, SessionFilePermissions); err != nil {
		return fmt.Errorf("failed to write temp session file: %w", err)
	}
	if err := r.fs.Rename(tempFile, filename); err != nil {
		if removeErr := r.fs.Remove(tempFile); removeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp file: %v\n", removeErr)
		}
		return fmt.Errorf("failed to rename session file: %w", err)
	}
	if err := r.updateLatestLink(filename); err != nil {
		return fmt.Errorf("failed to update latest link: %w", err)
	}
	return nil
}

// Load retrieves a specific publish session by ID with validation
func (r *JSONSessionRepository) Load(ctx context.Context, sessionID string) (*domain.PublishSession, error) {
	filename := r.sessionFilename(sessionID)
	lock := flock.New(r.lockFilename(sessionID))
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	locked, err := r.acquireLock(lockCtx, lock, lock.TryRLock)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire shared lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire shared lock within timeout")
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to unlock file: %v\n", unlockErr)
		}
	}()
	data, err := afero.ReadFile(r.fs, filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session %s not found", sessionID)
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var wrapper sessionWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session wrapper: %w", err)
	}
	if wrapper.Metadata.SchemaVersion != SessionSchemaVersion {
		return nil, fmt.Errorf("incompatible schema version: expected %s, got %s",
			SessionSchemaVersion, wrapper.Metadata.SchemaVersion)
	}
	sessionData, err := json.Marshal(wrapper.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session for checksum validation: %w", err)
	}
	if wrapper.Metadata.Checksum != checksum(sessionData) {
		return nil, fmt.Errorf("session checksum mismatch: data may be corrupted")
	}
	return wrapper.Session, nil
}

// LoadLatest retrieves the most recent publish session
func (r *JSONSessionRepository) LoadLatest(ctx context.Context) (*domain.PublishSession, error) {
	r.mu.RLock()
	data, err := afero.ReadFile(r.fs, r.latestLink())
	r.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no publish sessions recorded")
		}
		return nil, fmt.Errorf("failed to read latest link: %w", err)
	}
	sessionID := r.extractSessionID(string(data))
	if sessionID == "" {
		return nil, fmt.Errorf("invalid latest link target: %s", string(data))
	}
	return r.Load(ctx, sessionID)
}

// acquireLock polls an advisory lock until acquired or the context expires
func (r *JSONSessionRepository) acquireLock(
	ctx context.Context,
	lock *flock.Flock,
	try func() (bool, error),
) (bool, error) {
	ticker := time.NewTicker(LockRetryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
			locked, err := try()
			if err != nil {
				return false, err
			}
			if locked {
				return true, nil
			}
		}
	}
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (r *JSONSessionRepository) sessionFilename(sessionID string) string {
	return filepath.Join(r.sessionDir, fmt.Sprintf("session-%s.json", sessionID))
}

func (r *JSONSessionRepository) lockFilename(sessionID string) string {
	return filepath.Join(r.sessionDir, fmt.Sprintf(".session-%s.lock", sessionID))
}

func (r *JSONSessionRepository) latestLink() string {
	return filepath.Join(r.sessionDir, "latest.txt")
}

// extractSessionID recovers the session ID from a session filename
func (r *JSONSessionRepository) extractSessionID(target string) string {
	base := filepath.Base(target)
	if len(base) <= len("session-.json") || base[:len("session-")] != "session-" {
		return ""
	}
	return base[len("session-") : len(base)-len(".json")]
}

// updateLatestLink updates the link pointing to the latest session
func (r *JSONSessionRepository) updateLatestLink(target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link := r.latestLink()
	tempLink := link + ".tmp"
	if err := afero.WriteFile(r.fs, tempLink, []byte(target), SessionFilePermissions); err != nil {
		return fmt.Errorf("failed to write temp latest link: %w", err)
	}
	if err := r.fs.Rename(tempLink, link); err != nil {
		if removeErr := r.fs.Remove(tempLink); removeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp link: %v\n", removeErr)
		}
		return fmt.Errorf("failed to update latest link: %w", err)
	}
	return nil
}
