package entity

import "time"

// ImageMetadata describes the working image as returned to the client.
// Sizes are measured from the actually encoded bytes, rounded to 2 decimals.
type ImageMetadata struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Format string  `json:"format"`
	SizeKB float64 `json:"size_kb"`
	SizeMB float64 `json:"size_mb"`
}

// AdjustmentParams are multiplicative factors, 1.0 = identity for a channel.
type AdjustmentParams struct {
	Brightness float64
	Contrast   float64
	Saturation float64
	Sharpness  float64
}

type CompressParams struct {
	Quality   int
	MaxSizeKB int
	Format    string
}

type CropParams struct {
	X      int
	Y      int
	Width  int
	Height int
}

// SessionInfo is a working copy listed for the cleanup worker.
type SessionInfo struct {
	ID        string
	UpdatedAt time.Time
}

// EditEvent отправляется в Kafka после каждой успешной операции
type EditEvent struct {
	SessionID string  `json:"session_id"`
	Operation string  `json:"operation"`
	Format    string  `json:"format,omitempty"`
	SizeKB    float64 `json:"size_kb,omitempty"`
}

// DownloadResult carries the current working file for the download handler.
type DownloadResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

type AdjustmentRequest struct {
	SessionID  string   `json:"session_id"`
	Brightness *float64 `json:"brightness"`
	Contrast   *float64 `json:"contrast"`
	Saturation *float64 `json:"saturation"`
	Sharpness  *float64 `json:"sharpness"`
}

type BrightnessRequest struct {
	SessionID  string   `json:"session_id"`
	Brightness *float64 `json:"brightness"`
}

type CompressRequest struct {
	SessionID string `json:"session_id"`
	Quality   int    `json:"quality"`
	MaxSizeKB int    `json:"max_size_kb"`
	Format    string `json:"format"`
}

type CropRequest struct {
	SessionID string `json:"session_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type UploadResponse struct {
	SessionID string        `json:"session_id"`
	Preview   string        `json:"preview"`
	Metadata  ImageMetadata `json:"metadata"`
}

type EditResponse struct {
	SessionID string        `json:"session_id"`
	Preview   string        `json:"preview"`
	Metadata  ImageMetadata `json:"metadata"`
}

type CompressResponse struct {
	SessionID   string        `json:"session_id"`
	Format      string        `json:"format"`
	QualityUsed int           `json:"quality_used"`
	Preview     string        `json:"preview"`
	Metadata    ImageMetadata `json:"metadata"`
}
