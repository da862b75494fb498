package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/spec-kit/member-portal/internal/domain"
)

// fileRecord is the on-disk shape of a user. The bcrypt hash is stored
// under "password" to stay compatible with existing user files.
type fileRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// JSONFileRepository keeps the full user table in memory and rewrites the
// backing file on every Create. Writes are serialized by a single mutex so
// concurrent registrations cannot lose updates, and the rewrite goes through
// a temp file plus rename so a crash mid-write cannot corrupt the table.
type JSONFileRepository struct {
	path string

	mu    sync.RWMutex
	users []fileRecord
}

// NewJSONFileRepository loads the user table from path. A missing file
// bootstraps an empty table; an unreadable or malformed file is an error the
// caller must treat as fatal.
func NewJSONFileRepository(path string) (*JSONFileRepository, error) {
	repo := &JSONFileRepository{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return repo, nil
		}
		return nil, fmt.Errorf("read users file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &repo.users); err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", path, err)
	}
	return repo, nil
}

// Create appends the record and rewrites the backing file. The ID, when not
// preassigned, is a millisecond-timestamp string as the original user files
// used.
func (r *JSONFileRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.users {
		if rec.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}

	if user.ID == "" {
		user.ID = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	r.users = append(r.users, fileRecord{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt,
	})

	if err := r.flushLocked(); err != nil {
		// roll back the in-memory append so memory and disk stay in step
		r.users = r.users[:len(r.users)-1]
		return fmt.Errorf("persist users file: %w", err)
	}
	return nil
}

// GetByID scans for an exact id match.
func (r *JSONFileRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.users {
		if rec.ID == id {
			return rec.toDomain(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail scans for an exact, case-sensitive email match.
func (r *JSONFileRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.users {
		if rec.Email == email {
			return rec.toDomain(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Count returns the number of stored records.
func (r *JSONFileRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Ping verifies the backing directory is still writable.
func (r *JSONFileRepository) Ping(_ context.Context) error {
	dir := filepath.Dir(r.path)
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// flushLocked rewrites the file atomically. Callers must hold r.mu.
func (r *JSONFileRepository) flushLocked() error {
	data, err := json.MarshalIndent(r.users, "", "    ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

func (rec fileRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		PasswordHash: rec.Password,
		CreatedAt:    rec.CreatedAt,
	}
}
