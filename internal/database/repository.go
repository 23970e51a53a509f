package database

import (
	"io"

	"github.com/ds124wfegd/image-editor/internal/entity"
	"github.com/ds124wfegd/image-editor/internal/pkg/storage"
)

// SessionRepository owns the session-id-to-path mapping for the two on-disk
// representations of a session: the immutable original and the mutable
// working copy. Callers never build storage paths themselves.
type SessionRepository interface {
	SaveOriginal(id string, data io.Reader) error
	SaveCurrent(id string, data io.Reader) error
	ReadOriginal(id string) ([]byte, error)
	ReadCurrent(id string) ([]byte, error)
	Delete(id string) error
	Rename(oldID, newID string) error
	Exists(id string) bool
	ListSessions() ([]entity.SessionInfo, error)
}

type fileSessionRepository struct {
	storage storage.FileStorage
}
