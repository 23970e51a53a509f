package editor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/ds124wfegd/image-editor/internal/entity"
)

// Output formats recognized for compression and session extensions.
const (
	FormatJPEG = "JPEG"
	FormatPNG  = "PNG"
	FormatWEBP = "WEBP"
)

const (
	// DefaultQuality is used when persisting adjusted or cropped copies.
	DefaultQuality = 95
	// DefaultCompressQuality is the base quality when the client omits it.
	DefaultCompressQuality = 85

	qualityFloor = 10
	qualityStep  = 5
)

var formatExt = map[string]string{
	FormatJPEG: ".jpg",
	FormatPNG:  ".png",
	FormatWEBP: ".webp",
}

var extFormat = map[string]string{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".webp": FormatWEBP,
}

type ImageEditor interface {
	Decode(data []byte) (image.Image, string, error)
	Encode(img image.Image, format string, quality int) ([]byte, error)
	ApplyAdjustments(img image.Image, params entity.AdjustmentParams) image.Image
	Crop(img image.Image, rect entity.CropParams) (image.Image, error)
	Compress(img image.Image, format string, quality, maxSizeKB int) (image.Image, []byte, int, error)
	Metadata(img image.Image, format string, sizeBytes int) entity.ImageMetadata
	Preview(img image.Image) (string, error)
}

type imageEditor struct{}

func NewImageEditor() ImageEditor {
	return &imageEditor{}
}

// Decode reads an image and reports its source format tag (JPEG/PNG/WEBP).
func (e *imageEditor) Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return img, strings.ToUpper(format), nil
}

func (e *imageEditor) Encode(img image.Image, format string, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)

	switch format {
	case FormatJPEG:
		// JPEG не поддерживает альфа-канал
		flattened := flattenOntoWhite(img)
		if err := imaging.Encode(buf, flattened, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, err
		}
	case FormatPNG:
		if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
			return nil, err
		}
	case FormatWEBP:
		if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: float32(quality)}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	return buf.Bytes(), nil
}

// ApplyAdjustments flattens the image and applies the enabled factors in a
// fixed order: brightness, contrast, saturation, sharpness. A factor of
// exactly 1.0 is skipped.
func (e *imageEditor) ApplyAdjustments(img image.Image, params entity.AdjustmentParams) image.Image {
	result := flattenOntoWhite(img)

	if params.Brightness != 1.0 {
		result = imaging.AdjustBrightness(result, (params.Brightness-1)*100)
	}
	if params.Contrast != 1.0 {
		result = imaging.AdjustContrast(result, (params.Contrast-1)*100)
	}
	if params.Saturation != 1.0 {
		result = imaging.AdjustSaturation(result, (params.Saturation-1)*100)
	}
	if params.Sharpness != 1.0 {
		result = adjustSharpness(result, params.Sharpness)
	}

	return result
}

// Crop extracts the rectangle clamped to the image bounds. The caller
// rejects nonpositive width/height; a rectangle that clamps down to nothing
// is an error here.
func (e *imageEditor) Crop(img image.Image, rect entity.CropParams) (image.Image, error) {
	bounds := img.Bounds()

	left := rect.X
	top := rect.Y
	right := rect.X + rect.Width
	bottom := rect.Y + rect.Height

	// Прижимаем рамку к границам изображения
	if left < 0 {
		left = 0
	}
	if top < 0 {
		top = 0
	}
	if right > bounds.Dx() {
		right = bounds.Dx()
	}
	if bottom > bounds.Dy() {
		bottom = bounds.Dy()
	}

	if right <= left || bottom <= top {
		return nil, fmt.Errorf("crop rectangle (%d,%d %dx%d) lies outside image bounds %dx%d",
			rect.X, rect.Y, rect.Width, rect.Height, bounds.Dx(), bounds.Dy())
	}

	return imaging.Crop(img, image.Rect(left, top, right, bottom)), nil
}

// Compress encodes the image in the target format. With a size budget it
// searches downward from the starting quality in fixed steps until the
// encoded size fits, or the quality floor is reached (best effort). The
// search is a linear descent on purpose: a few extra encode passes are
// cheaper than misjudging an encoder whose size curve is not strictly
// monotonic. Returns the normalized buffer, the encoded bytes and the
// quality actually used.
func (e *imageEditor) Compress(img image.Image, format string, quality, maxSizeKB int) (image.Image, []byte, int, error) {
	if format == FormatJPEG {
		img = flattenOntoWhite(img)
	}

	// Без целевого размера (и для PNG, у которого нет шкалы качества)
	// кодируем один раз
	if maxSizeKB <= 0 || format == FormatPNG || quality <= qualityFloor {
		data, err := e.Encode(img, format, quality)
		return img, data, quality, err
	}

	currentQuality := quality
	for {
		data, err := e.Encode(img, format, currentQuality)
		if err != nil {
			return nil, nil, 0, err
		}
		if float64(len(data))/1024 <= float64(maxSizeKB) {
			return img, data, currentQuality, nil
		}
		if currentQuality-qualityStep <= qualityFloor {
			break
		}
		currentQuality -= qualityStep
	}

	// Пол достигнут - отдаем лучшее из достижимого
	data, err := e.Encode(img, format, qualityFloor)
	return img, data, qualityFloor, err
}

// Metadata reports dimensions and the measured size of the encoded bytes.
// An unknown format tag is reported as PNG.
func (e *imageEditor) Metadata(img image.Image, format string, sizeBytes int) entity.ImageMetadata {
	if format == "" {
		format = FormatPNG
	}

	return entity.ImageMetadata{
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
		Format: format,
		SizeKB: roundTo2(float64(sizeBytes) / 1024),
		SizeMB: roundTo2(float64(sizeBytes) / (1024 * 1024)),
	}
}

// Preview returns the buffer as a base64 PNG data URI. Always lossless so
// the UI feedback is independent of the working format.
func (e *imageEditor) Preview(img image.Image) (string, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// NormalizeFormat maps a client-supplied format name onto the recognized
// enumeration, returning "" for anything else.
func NormalizeFormat(format string) string {
	switch strings.ToUpper(strings.TrimSpace(format)) {
	case FormatJPEG:
		return FormatJPEG
	case FormatPNG:
		return FormatPNG
	case FormatWEBP:
		return FormatWEBP
	default:
		return ""
	}
}

// ExtForFormat returns the file extension for a recognized format.
func ExtForFormat(format string) string {
	return formatExt[format]
}

// FormatForID derives the session's working format from the extension
// carried in its id, defaulting to PNG when unknown.
func FormatForID(id string) string {
	if format, ok := extFormat[strings.ToLower(filepath.Ext(id))]; ok {
		return format
	}
	return FormatPNG
}

// adjustSharpness maps the multiplier onto a sharpen or blur: values above
// 1.0 sharpen, values below blur (0.0 is the strongest blur).
func adjustSharpness(img image.Image, factor float64) image.Image {
	if factor > 1.0 {
		return imaging.Sharpen(img, factor-1.0)
	}
	return imaging.Blur(img, 1.0-factor)
}

// flattenOntoWhite composites a non-opaque image onto a white background.
// The enhancement operators and the JPEG encoder expect opaque input.
func flattenOntoWhite(img image.Image) image.Image {
	if isOpaque(img) {
		return img
	}

	background := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isOpaque(img image.Image) bool {
	if op, ok := img.(interface{ Opaque() bool }); ok {
		return op.Opaque()
	}
	return false
}
