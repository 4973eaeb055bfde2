package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/yeremiapane/duty-roster/storage"
	"github.com/yeremiapane/duty-roster/utils"
)

type UploadService struct {
	Storage  storage.Provider
	MaxBytes int64
	now      func() time.Time
}

func NewUploadService(p storage.Provider, maxBytes int64) *UploadService {
	return &UploadService{Storage: p, MaxBytes: maxBytes, now: time.Now}
}

type UploadResult struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// StoredName builds "<base>-<unix millis><ext>" from the client filename.
func StoredName(original string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Trim(unsafeName.ReplaceAllString(base, "_"), "_")
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s-%d%s", base, at.UnixMilli(), ext)
}

// Save accepts images only. The type is sniffed from the content, not
// taken from the client header.
func (s *UploadService) Save(fh *multipart.FileHeader) (*UploadResult, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return nil, utils.BadRequest(fmt.Sprintf("File too large, limit is %d bytes", s.MaxBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return nil, utils.BadRequest("Only image files are allowed!")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	name := StoredName(fh.Filename, s.now())
	if err := s.Storage.Put(name, f, contentType); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	utils.InfoLogger.Printf("File uploaded: %s (%s, %d bytes)", name, contentType, fh.Size)

	return &UploadResult{
		Filename:    name,
		URL:         s.Storage.URL(name),
		ContentType: contentType,
		Size:        fh.Size,
	}, nil
}
