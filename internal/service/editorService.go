package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/image-editor/internal/entity"
	"github.com/ds124wfegd/image-editor/internal/pkg/editor"
)

func (s *editorService) Upload(id string, file *multipart.FileHeader) (*entity.UploadResponse, error) {
	unlock := s.lockSession(id)
	defer unlock()

	src, err := file.Open()
	if err != nil {
		return nil, wrapProcessing(err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	img, sourceFormat, err := s.editor.Decode(data)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	// Сохраняем обе копии: оригинал остается нетронутым до reset
	if err := s.repo.SaveOriginal(id, bytes.NewReader(data)); err != nil {
		return nil, wrapProcessing(err)
	}
	if err := s.repo.SaveCurrent(id, bytes.NewReader(data)); err != nil {
		return nil, wrapProcessing(err)
	}

	format := editor.NormalizeFormat(sourceFormat)
	if format == "" {
		format = editor.FormatForID(id)
	}

	preview, err := s.editor.Preview(img)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	// Размер измеряем по сохраненным байтам, а не по повторной кодировке
	metadata := s.editor.Metadata(img, format, len(data))
	s.publishEvent(id, "upload", format, metadata.SizeKB)

	return &entity.UploadResponse{
		SessionID: id,
		Preview:   preview,
		Metadata:  metadata,
	}, nil
}

// ApplyAdjustments re-derives the working copy from the untouched original,
// so repeated slider movements never compound.
func (s *editorService) ApplyAdjustments(id string, params entity.AdjustmentParams) (*entity.EditResponse, error) {
	unlock := s.lockSession(id)
	defer unlock()

	data, err := s.repo.ReadOriginal(id)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	img, _, err := s.editor.Decode(data)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	adjusted := s.editor.ApplyAdjustments(img, params)

	format := editor.FormatForID(id)
	encoded, err := s.editor.Encode(adjusted, format, editor.DefaultQuality)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	if err := s.repo.SaveCurrent(id, bytes.NewReader(encoded)); err != nil {
		return nil, wrapProcessing(err)
	}

	preview, err := s.editor.Preview(adjusted)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	metadata := s.editor.Metadata(adjusted, format, len(encoded))
	s.publishEvent(id, "adjust", format, metadata.SizeKB)

	return &entity.EditResponse{
		SessionID: id,
		Preview:   preview,
		Metadata:  metadata,
	}, nil
}

// Compress re-encodes the working copy, optionally searching for a quality
// that fits the size budget. A change of output format changes the file
// extension and with it the session id; both stored copies move together.
func (s *editorService) Compress(id string, params entity.CompressParams) (*entity.CompressResponse, error) {
	format := editor.FormatJPEG
	if strings.TrimSpace(params.Format) != "" {
		format = editor.NormalizeFormat(params.Format)
		if format == "" {
			return nil, fmt.Errorf("%w: unsupported output format %q", entity.ErrValidation, params.Format)
		}
	}

	quality := params.Quality
	if quality == 0 {
		quality = editor.DefaultCompressQuality
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("%w: quality must be between 1 and 100", entity.ErrValidation)
	}

	unlock := s.lockSession(id)
	defer unlock()

	// Сжатие работает с текущей копией, а не с оригиналом
	data, err := s.repo.ReadCurrent(id)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	img, _, err := s.editor.Decode(data)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	result, compressed, qualityUsed, err := s.editor.Compress(img, format, quality, params.MaxSizeKB)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	// Смена формата меняет расширение, а значит и идентичность сессии
	newID := id
	if ext := editor.ExtForFormat(format); ext != strings.ToLower(filepath.Ext(id)) {
		newID = strings.TrimSuffix(id, filepath.Ext(id)) + ext
		if err := s.repo.Rename(id, newID); err != nil {
			return nil, wrapProcessing(err)
		}
		s.releaseSession(id)
	}

	if err := s.repo.SaveCurrent(newID, bytes.NewReader(compressed)); err != nil {
		return nil, wrapProcessing(err)
	}

	preview, err := s.editor.Preview(result)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	metadata := s.editor.Metadata(result, format, len(compressed))
	s.publishEvent(newID, "compress", format, metadata.SizeKB)

	return &entity.CompressResponse{
		SessionID:   newID,
		Format:      format,
		QualityUsed: qualityUsed,
		Preview:     preview,
		Metadata:    metadata,
	}, nil
}

// Crop is cumulative: it reads and overwrites the working copy, composing
// with earlier crops. This is the intended asymmetry with adjustments.
func (s *editorService) Crop(id string, params entity.CropParams) (*entity.EditResponse, error) {
	if params.Width <= 0 || params.Height <= 0 {
		return nil, fmt.Errorf("%w: width and height are required", entity.ErrValidation)
	}

	unlock := s.lockSession(id)
	defer unlock()

	data, err := s.repo.ReadCurrent(id)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	img, _, err := s.editor.Decode(data)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	cropped, err := s.editor.Crop(img, params)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	format := editor.FormatForID(id)
	encoded, err := s.editor.Encode(cropped, format, editor.DefaultQuality)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	if err := s.repo.SaveCurrent(id, bytes.NewReader(encoded)); err != nil {
		return nil, wrapProcessing(err)
	}

	preview, err := s.editor.Preview(cropped)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	metadata := s.editor.Metadata(cropped, format, len(encoded))
	s.publishEvent(id, "crop", format, metadata.SizeKB)

	return &entity.EditResponse{
		SessionID: id,
		Preview:   preview,
		Metadata:  metadata,
	}, nil
}

func (s *editorService) Download(id string) (*entity.DownloadResult, error) {
	unlock := s.lockSession(id)
	defer unlock()

	data, err := s.repo.ReadCurrent(id)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	return &entity.DownloadResult{
		FileName:    "edited_" + id,
		ContentType: contentTypeForID(id),
		Data:        data,
	}, nil
}

// Reset deletes both stored copies. Resetting a session that does not
// exist is not an error.
func (s *editorService) Reset(id string) error {
	unlock := s.lockSession(id)

	err := s.repo.Delete(id)

	unlock()
	s.releaseSession(id)

	if err != nil {
		return wrapProcessing(err)
	}

	s.publishEvent(id, "reset", "", 0)
	return nil
}

func (s *editorService) ListExpiredSessions(olderThan time.Duration) ([]entity.SessionInfo, error) {
	sessions, err := s.repo.ListSessions()
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-olderThan)
	expired := make([]entity.SessionInfo, 0)
	for _, session := range sessions {
		if session.UpdatedAt.Before(cutoff) {
			expired = append(expired, session)
		}
	}
	return expired, nil
}

// publishEvent fires the edit event into Kafka. Event delivery never fails
// the edit itself.
func (s *editorService) publishEvent(id, operation, format string, sizeKB float64) {
	event := entity.EditEvent{
		SessionID: id,
		Operation: operation,
		Format:    format,
		SizeKB:    sizeKB,
	}
	if err := s.producer.Publish(event); err != nil {
		logrus.Warnf("Failed to publish %s event for session %s: %v", operation, id, err)
	}
}

// wrapProcessing tags untyped failures from the image and file layers;
// already-tagged errors pass through for the transport to map.
func wrapProcessing(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, entity.ErrSessionNotFound) || errors.Is(err, entity.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %v", entity.ErrProcessingFailure, err)
}

func contentTypeForID(id string) string {
	switch strings.ToLower(filepath.Ext(id)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
