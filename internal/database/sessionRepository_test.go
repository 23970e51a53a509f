package database

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/ds124wfegd/image-editor/internal/entity"
	"github.com/ds124wfegd/image-editor/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) SessionRepository {
	t.Helper()
	return NewSessionRepository(storage.NewFileStorage(t.TempDir()))
}

// TestSaveAndRead тестирует независимость оригинала и рабочей копии
func TestSaveAndRead(t *testing.T) {
	repo := newTestRepository(t)

	original := []byte("original bytes")
	current := []byte("working copy bytes")

	require.NoError(t, repo.SaveOriginal("a.png", bytes.NewReader(original)))
	require.NoError(t, repo.SaveCurrent("a.png", bytes.NewReader(current)))

	gotOriginal, err := repo.ReadOriginal("a.png")
	require.NoError(t, err)
	assert.Equal(t, original, gotOriginal)

	gotCurrent, err := repo.ReadCurrent("a.png")
	require.NoError(t, err)
	assert.Equal(t, current, gotCurrent)
}

// TestSaveOverwrites тестирует перезапись рабочей копии
func TestSaveOverwrites(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.SaveCurrent("a.png", bytes.NewReader([]byte("first"))))
	require.NoError(t, repo.SaveCurrent("a.png", bytes.NewReader([]byte("second"))))

	got, err := repo.ReadCurrent("a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

// TestReadMissingSession тестирует чтение несуществующей сессии
func TestReadMissingSession(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.ReadOriginal("missing.png")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	_, err = repo.ReadCurrent("missing.png")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

// TestDeleteIdempotent тестирует повторное удаление сессии
func TestDeleteIdempotent(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.SaveOriginal("a.png", bytes.NewReader([]byte("data"))))
	require.NoError(t, repo.SaveCurrent("a.png", bytes.NewReader([]byte("data"))))

	require.NoError(t, repo.Delete("a.png"))

	_, err := repo.ReadOriginal("a.png")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
	_, err = repo.ReadCurrent("a.png")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	// Удаление уже удаленной сессии не является ошибкой
	assert.NoError(t, repo.Delete("a.png"))
	assert.NoError(t, repo.Delete("never-existed.png"))
}

// TestRenameMovesBothCopies тестирует согласованное переименование
func TestRenameMovesBothCopies(t *testing.T) {
	repo := newTestRepository(t)

	original := []byte("original bytes")
	current := []byte("working copy bytes")

	require.NoError(t, repo.SaveOriginal("a.png", bytes.NewReader(original)))
	require.NoError(t, repo.SaveCurrent("a.png", bytes.NewReader(current)))

	require.NoError(t, repo.Rename("a.png", "a.jpg"))

	// Старый идентификатор больше не разрешается
	_, err := repo.ReadOriginal("a.png")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
	_, err = repo.ReadCurrent("a.png")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	// Обе копии доступны под новым
	gotOriginal, err := repo.ReadOriginal("a.jpg")
	require.NoError(t, err)
	assert.Equal(t, original, gotOriginal)

	gotCurrent, err := repo.ReadCurrent("a.jpg")
	require.NoError(t, err)
	assert.Equal(t, current, gotCurrent)
}

// TestRenameMissingSession тестирует переименование несуществующей сессии
func TestRenameMissingSession(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.Rename("missing.png", "new.jpg")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

// TestRenameSameID тестирует переименование в тот же идентификатор
func TestRenameSameID(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.SaveOriginal("a.png", bytes.NewReader([]byte("data"))))
	require.NoError(t, repo.SaveCurrent("a.png", bytes.NewReader([]byte("data"))))

	require.NoError(t, repo.Rename("a.png", "a.png"))

	got, err := repo.ReadCurrent("a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

// TestExists тестирует проверку наличия сессии
func TestExists(t *testing.T) {
	repo := newTestRepository(t)

	assert.False(t, repo.Exists("a.png"))

	require.NoError(t, repo.SaveOriginal("a.png", bytes.NewReader([]byte("data"))))
	assert.True(t, repo.Exists("a.png"))
}

// TestListSessions тестирует перечисление рабочих копий
func TestListSessions(t *testing.T) {
	repo := newTestRepository(t)

	sessions, err := repo.ListSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)

	require.NoError(t, repo.SaveCurrent("a.png", bytes.NewReader([]byte("one"))))
	require.NoError(t, repo.SaveCurrent("b.jpg", bytes.NewReader([]byte("two"))))

	sessions, err = repo.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	ids := []string{sessions[0].ID, sessions[1].ID}
	assert.Contains(t, ids, "a.png")
	assert.Contains(t, ids, "b.jpg")

	for _, session := range sessions {
		assert.WithinDuration(t, time.Now(), session.UpdatedAt, time.Minute)
	}
}

// TestValidateID тестирует отказ на идентификаторах, выходящих из хранилища
func TestValidateID(t *testing.T) {
	repo := newTestRepository(t)

	tests := []struct {
		name string
		id   string
	}{
		{name: "empty id", id: ""},
		{name: "path traversal", id: "../evil.png"},
		{name: "nested path", id: filepath.Join("sub", "dir.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.SaveOriginal(tt.id, bytes.NewReader([]byte("data")))
			assert.ErrorIs(t, err, entity.ErrValidation)

			_, err = repo.ReadCurrent(tt.id)
			assert.ErrorIs(t, err, entity.ErrValidation)

			assert.False(t, repo.Exists(tt.id))
		})
	}
}
