package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/divya01062005/Ayurtrace/internal/models"
)

const (
	tokenFile = "ayurtrace_token"
	userFile  = "ayurtrace_user.json"
)

// Store persists the {token, user} pair across process restarts.
type Store interface {
	// Save writes both halves of the session.
	Save(token string, user *models.User) error
	// Load reads the persisted session. A missing session returns
	// empty values and no error; only I/O failures error.
	Load() (string, *models.User, error)
	// Clear removes the persisted session. Idempotent.
	Clear() error
}

// FileStore keeps the session as two keyed entries in a directory,
// the same two keys the browser build kept in local storage.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) Save(token string, user *models.User) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.WriteFile(filepath.Join(fs.dir, tokenFile), []byte(token), 0o600); err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(fs.dir, userFile), data, 0o600)
}

func (fs *FileStore) Load() (string, *models.User, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	tok, err := os.ReadFile(filepath.Join(fs.dir, tokenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, nil
		}
		return "", nil, err
	}
	raw, err := os.ReadFile(filepath.Join(fs.dir, userFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, nil
		}
		return "", nil, err
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		// A corrupt user payload invalidates the whole session.
		return "", nil, nil
	}
	return string(tok), &user, nil
}

func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(fs.dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

var _ Store = (*FileStore)(nil)
