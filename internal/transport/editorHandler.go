package transport

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ds124wfegd/image-editor/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *EditorHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, entity.ErrNoFileProvided)
		return
	}

	if file.Filename == "" {
		respondError(c, fmt.Errorf("%w: file name is empty", entity.ErrValidation))
		return
	}

	// Проверка типа файла
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !isValidImageType(ext) {
		respondError(c, fmt.Errorf("%w: supported formats are png, jpg, jpeg, webp", entity.ErrInvalidFileType))
		return
	}

	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		respondError(c, fmt.Errorf("%w: file exceeds %d MB limit", entity.ErrValidation, h.maxUploadSize/(1<<20)))
		return
	}

	// Генерация ID сессии: uuid + расширение исходного файла
	id := uuid.New().String() + ext

	response, err := h.service.Upload(id, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// PreviewAdjustments applies all four sliders in one pass. Factors always
// start from the original image, so the client can move sliders freely.
func (h *EditorHandler) PreviewAdjustments(c *gin.Context) {
	var req entity.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	if req.SessionID == "" {
		respondError(c, fmt.Errorf("%w: session_id is required", entity.ErrValidation))
		return
	}

	params := entity.AdjustmentParams{
		Brightness: factorOrDefault(req.Brightness),
		Contrast:   factorOrDefault(req.Contrast),
		Saturation: factorOrDefault(req.Saturation),
		Sharpness:  factorOrDefault(req.Sharpness),
	}

	response, err := h.service.ApplyAdjustments(req.SessionID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *EditorHandler) AdjustBrightness(c *gin.Context) {
	var req entity.BrightnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	if req.SessionID == "" {
		respondError(c, fmt.Errorf("%w: session_id is required", entity.ErrValidation))
		return
	}

	params := entity.AdjustmentParams{
		Brightness: factorOrDefault(req.Brightness),
		Contrast:   1.0,
		Saturation: 1.0,
		Sharpness:  1.0,
	}

	response, err := h.service.ApplyAdjustments(req.SessionID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *EditorHandler) CompressImage(c *gin.Context) {
	var req entity.CompressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	if req.SessionID == "" {
		respondError(c, fmt.Errorf("%w: session_id is required", entity.ErrValidation))
		return
	}

	params := entity.CompressParams{
		Quality:   req.Quality,
		MaxSizeKB: req.MaxSizeKB,
		Format:    req.Format,
	}

	response, err := h.service.Compress(req.SessionID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *EditorHandler) CropImage(c *gin.Context) {
	var req entity.CropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	if req.SessionID == "" {
		respondError(c, fmt.Errorf("%w: session_id is required", entity.ErrValidation))
		return
	}

	params := entity.CropParams{
		X:      req.X,
		Y:      req.Y,
		Width:  req.Width,
		Height: req.Height,
	}

	response, err := h.service.Crop(req.SessionID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *EditorHandler) DownloadImage(c *gin.Context) {
	id := c.Param("id")

	result, err := h.service.Download(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.FileName)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *EditorHandler) ResetSession(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Reset(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session reset successfully"})
}

// Пропущенный ползунок означает "без изменений"
func factorOrDefault(v *float64) float64 {
	if v == nil {
		return 1.0
	}
	return *v
}

func isValidImageType(ext string) bool {
	validTypes := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	}
	return validTypes[ext]
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrNoFileProvided),
		errors.Is(err, entity.ErrInvalidFileType),
		errors.Is(err, entity.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
