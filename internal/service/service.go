package service

import (
	"mime/multipart"
	"sync"
	"time"

	"github.com/ds124wfegd/image-editor/internal/database"
	"github.com/ds124wfegd/image-editor/internal/entity"
	"github.com/ds124wfegd/image-editor/internal/pkg/editor"
	"github.com/ds124wfegd/image-editor/internal/pkg/kafka"
)

type EditorService interface {
	Upload(id string, file *multipart.FileHeader) (*entity.UploadResponse, error)
	ApplyAdjustments(id string, params entity.AdjustmentParams) (*entity.EditResponse, error)
	Compress(id string, params entity.CompressParams) (*entity.CompressResponse, error)
	Crop(id string, params entity.CropParams) (*entity.EditResponse, error)
	Download(id string) (*entity.DownloadResult, error)
	Reset(id string) error
	ListExpiredSessions(olderThan time.Duration) ([]entity.SessionInfo, error)
}

type editorService struct {
	repo     database.SessionRepository
	editor   editor.ImageEditor
	producer kafka.Producer

	// Операции над одной сессией сериализуются мьютексом по id
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEditorService(repo database.SessionRepository, editor editor.ImageEditor, producer kafka.Producer) EditorService {
	return &editorService{
		repo:     repo,
		editor:   editor,
		producer: producer,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockSession takes the per-session lock, creating it on first use, and
// returns the matching unlock.
func (s *editorService) lockSession(id string) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// releaseSession drops the lock entry of a session that no longer exists.
func (s *editorService) releaseSession(id string) {
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
}
