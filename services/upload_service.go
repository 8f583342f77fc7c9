package services

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Niladri080/Chat-App/pkg"
)

// UploadService, base64 data URL olarak gelen görselleri diske kaydeder.
// Frontend mesaj görselini ve profil fotoğrafını data URL olarak gönderir
// (data:image/png;base64,...) — service bunu dosyaya çevirip kalıcı URL döner.
type UploadService interface {
	// SaveDataURL, data URL'i doğrular, diske yazar ve public URL döner
	// (ör: /api/uploads/3f2a...png).
	SaveDataURL(dataURL string) (string, error)
}

type uploadService struct {
	uploadDir string
	maxSize   int64
}

// NewUploadService, constructor. Upload dizinini yoksa oluşturur.
func NewUploadService(uploadDir string, maxSize int64) (UploadService, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &uploadService{uploadDir: uploadDir, maxSize: maxSize}, nil
}

// allowedImageTypes, data URL'de kabul edilen görsel türleri ve dosya uzantıları.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (s *uploadService) SaveDataURL(dataURL string) (string, error) {
	// Format: data:<mime>;base64,<payload>
	if !strings.HasPrefix(dataURL, "data:") {
		return "", fmt.Errorf("%w: expected a data URL", pkg.ErrBadRequest)
	}

	header, payload, found := strings.Cut(dataURL[len("data:"):], ",")
	if !found {
		return "", fmt.Errorf("%w: malformed data URL", pkg.ErrBadRequest)
	}

	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", fmt.Errorf("%w: data URL must be base64 encoded", pkg.ErrBadRequest)
	}

	ext, allowed := allowedImageTypes[mimeType]
	if !allowed {
		return "", fmt.Errorf("%w: image type not allowed: %s", pkg.ErrBadRequest, mimeType)
	}

	// Base64 %33 şişirir — decode etmeden önce kabaca boyut kontrolü.
	if int64(len(payload))*3/4 > s.maxSize {
		return "", fmt.Errorf("%w: image too large (max %dMB)", pkg.ErrBadRequest, s.maxSize/(1024*1024))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64 payload", pkg.ErrBadRequest)
	}

	filename := uuid.NewString() + ext
	destPath := filepath.Join(s.uploadDir, filename)

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return "", fmt.Errorf("%w: failed to save image: %s", pkg.ErrUpload, err.Error())
	}

	return "/api/uploads/" + filename, nil
}
