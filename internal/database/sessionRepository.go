package database

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ds124wfegd/image-editor/internal/entity"
	"github.com/ds124wfegd/image-editor/internal/pkg/storage"
)

func NewSessionRepository(storage storage.FileStorage) SessionRepository {
	return &fileSessionRepository{storage: storage}
}

func (r *fileSessionRepository) SaveOriginal(id string, data io.Reader) error {
	if err := validateID(id); err != nil {
		return err
	}
	return r.storage.Save(originalPath(id), data)
}

func (r *fileSessionRepository) SaveCurrent(id string, data io.Reader) error {
	if err := validateID(id); err != nil {
		return err
	}
	return r.storage.Save(currentPath(id), data)
}

func (r *fileSessionRepository) ReadOriginal(id string) ([]byte, error) {
	return r.read(id, originalPath)
}

func (r *fileSessionRepository) ReadCurrent(id string) ([]byte, error) {
	return r.read(id, currentPath)
}

func (r *fileSessionRepository) read(id string, path func(string) string) ([]byte, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	reader, err := r.storage.Get(path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// Delete removes both representations. Deleting a session that does not
// exist is not an error.
func (r *fileSessionRepository) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	if err := r.storage.Delete(currentPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}

	if err := r.storage.Delete(originalPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// Rename moves both representations to the new id. Either both files move
// or neither does: a failure on the working copy rolls the original back.
func (r *fileSessionRepository) Rename(oldID, newID string) error {
	if err := validateID(oldID); err != nil {
		return err
	}
	if err := validateID(newID); err != nil {
		return err
	}
	if oldID == newID {
		return nil
	}

	if !r.storage.Exists(originalPath(oldID)) {
		return entity.ErrSessionNotFound
	}

	if err := r.storage.Rename(originalPath(oldID), originalPath(newID)); err != nil {
		return err
	}

	if err := r.storage.Rename(currentPath(oldID), currentPath(newID)); err != nil {
		// Откатываем первое переименование
		if rollbackErr := r.storage.Rename(originalPath(newID), originalPath(oldID)); rollbackErr != nil {
			return fmt.Errorf("rename failed: %v (rollback failed: %v)", err, rollbackErr)
		}
		return err
	}

	return nil
}

func (r *fileSessionRepository) Exists(id string) bool {
	if err := validateID(id); err != nil {
		return false
	}
	return r.storage.Exists(originalPath(id))
}

func (r *fileSessionRepository) ListSessions() ([]entity.SessionInfo, error) {
	names, err := r.storage.List("current")
	if err != nil {
		return nil, err
	}

	sessions := make([]entity.SessionInfo, 0, len(names))
	for _, name := range names {
		info, err := r.storage.Stat(currentPath(name))
		if err != nil {
			// Сессия могла быть удалена между List и Stat
			continue
		}
		sessions = append(sessions, entity.SessionInfo{
			ID:        name,
			UpdatedAt: info.ModTime(),
		})
	}
	return sessions, nil
}

func originalPath(id string) string {
	return filepath.Join("original", id)
}

func currentPath(id string) string {
	return filepath.Join("current", id)
}

// validateID rejects ids that could escape the storage root.
func validateID(id string) error {
	if id == "" || id != filepath.Base(id) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: invalid session id", entity.ErrValidation)
	}
	return nil
}
