package services

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Niladri080/Chat-App/pkg"
)

// 1x1 transparan PNG
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
}

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(tinyPNG)
}

func TestUploadService_SaveDataURL(t *testing.T) {
	req := require.New(t)

	dir := t.TempDir()
	svc, err := NewUploadService(dir, 1024*1024)
	req.NoError(err)

	url, err := svc.SaveDataURL(pngDataURL())
	req.NoError(err)
	req.True(strings.HasPrefix(url, "/api/uploads/"))
	req.True(strings.HasSuffix(url, ".png"))

	// Dosya gerçekten diske yazılmış olmalı
	filename := strings.TrimPrefix(url, "/api/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, filename))
	req.NoError(err)
	req.Equal(tinyPNG, data)
}

func TestUploadService_RejectsInvalidInput(t *testing.T) {
	req := require.New(t)

	svc, err := NewUploadService(t.TempDir(), 1024*1024)
	req.NoError(err)

	cases := []string{
		"not a data url",
		"data:image/png;base64",               // virgül yok
		"data:image/png,abc",                  // base64 işareti yok
		"data:text/html;base64,PGh0bWw+",      // izin verilmeyen tür
		"data:image/svg+xml;base64,PHN2Zz4=",  // SVG kabul edilmez (script riski)
		"data:image/png;base64,!!!not-b64!!!", // bozuk payload
	}
	for _, dataURL := range cases {
		_, err := svc.SaveDataURL(dataURL)
		req.ErrorIs(err, pkg.ErrBadRequest, dataURL)
	}
}

func TestUploadService_RejectsOversizedImage(t *testing.T) {
	req := require.New(t)

	// max 16 byte — payload decode edilmeden reddedilmeli
	svc, err := NewUploadService(t.TempDir(), 16)
	req.NoError(err)

	big := base64.StdEncoding.EncodeToString(make([]byte, 64))
	_, err = svc.SaveDataURL("data:image/png;base64," + big)
	req.ErrorIs(err, pkg.ErrBadRequest)
}

func TestUploadService_UniqueFilenames(t *testing.T) {
	req := require.New(t)

	svc, err := NewUploadService(t.TempDir(), 1024*1024)
	req.NoError(err)

	first, err := svc.SaveDataURL(pngDataURL())
	req.NoError(err)
	second, err := svc.SaveDataURL(pngDataURL())
	req.NoError(err)

	req.NotEqual(first, second, "aynı içerik bile ayrı dosyaya yazılır")
}
