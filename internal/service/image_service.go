package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"quayside/internal/config"
	"quayside/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageUploadDir       = "/tmp/quayside/uploads/images"
	DefaultImageMaxUploadSizeMB = 10
	MasterMaxSize               = 2048
	ThumbnailMaxSize            = 256
	JPEGQuality                 = 82
	WebPQuality                 = 70
)

// ImageService handles images attached to fez posts. Uploads are normalized
// to a JPEG master plus a WebP rendition and a thumbnail, stored on disk
// under a content hash. The hash is the image reference posts carry.
type ImageService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

// NewImageService creates a new image service
func NewImageService(cfg *config.Config) *ImageService {
	uploadDir := DefaultImageUploadDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.ImageUploadDir != "" {
			uploadDir = cfg.ImageUploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Store validates, normalizes, and persists an uploaded image. It returns
// the content hash used as the post's image reference. Re-uploading
// identical content by the same user yields the same hash.
func (s *ImageService) Store(userID uint, content []byte) (string, error) {
	if userID == 0 {
		return "", models.NewValidationError("Invalid user")
	}
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedImageMIME(detectedType) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)
	thumb := resizeToFit(decoded, ThumbnailMaxSize, ThumbnailMaxSize)

	masterJPG, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	masterWebP, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	thumbJPG, err := encodeJPEG(thumb, JPEGQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	hash := imageHash(userID, masterJPG)
	files := map[string][]byte{
		"master.jpg":  masterJPG,
		"master.webp": masterWebP,
		"thumb.jpg":   thumbJPG,
	}
	written := make([]string, 0, len(files))
	for name, data := range files {
		path := filepath.Join(s.uploadDir, hash, name)
		if err := writeBytesToFile(path, data); err != nil {
			cleanupImageFiles(written)
			return "", models.NewInternalError(err)
		}
		written = append(written, path)
	}

	return hash, nil
}

// ResolveForServing maps an image reference to an on-disk path. The variant
// is "master", "webp", or "thumb"; anything else resolves to the master.
func (s *ImageService) ResolveForServing(hash, variant string) (string, error) {
	if !isValidImageHash(hash) {
		return "", models.NewValidationError("Invalid image reference")
	}
	name := "master.jpg"
	switch strings.ToLower(strings.TrimSpace(variant)) {
	case "webp":
		name = "master.webp"
	case "thumb", "thumbnail":
		name = "thumb.jpg"
	}
	fullPath := filepath.Join(s.uploadDir, hash, name)
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", models.NewNotFoundError("Image", hash)
		}
		return "", models.NewInternalError(err)
	}
	return fullPath, nil
}

// isValidImageHash checks that the hash is strictly lowercase hex.
// This prevents path traversal attacks via crafted hash parameters.
func isValidImageHash(hash string) bool {
	if len(hash) == 0 || len(hash) > 128 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func imageHash(userID uint, master []byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d:", userID)
	h.Write(master)
	return hex.EncodeToString(h.Sum(nil))
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o640)
}

func cleanupImageFiles(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
