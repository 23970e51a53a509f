package transport

import (
	"github.com/ds124wfegd/image-editor/internal/service"
)

type EditorHandler struct {
	service       service.EditorService
	maxUploadSize int64
}

func NewEditorHandler(service service.EditorService, maxUploadSize int64) *EditorHandler {
	return &EditorHandler{service: service, maxUploadSize: maxUploadSize}
}
