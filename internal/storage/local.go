package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"incognitor/internal/models"
	"incognitor/internal/observability"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

const (
	maxUploadBytes = 10 << 20 // 10 MiB per file
	maxImageWidth  = 1920
	maxImageHeight = 1920
	jpegQuality    = 85
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var documentExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// LocalStore writes uploads to a directory on disk and hands back the
// public path they are served from.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, "thumbnails"), 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the root directory uploads are written under.
func (s *LocalStore) Dir() string { return s.dir }

// SaveUpload persists one multipart file and returns its public path.
// Images are downscaled and re-encoded as JPEG, documents are stored
// verbatim.
func (s *LocalStore) SaveUpload(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))

	switch {
	case imageExts[ext]:
		return s.saveImage(file)
	case documentExts[ext]:
		return s.saveDocument(file, ext)
	default:
		return "", models.NewFieldValidationError("Validation failed", map[string]string{
			"thumbnails": "The thumbnails field must be a file of type: jpeg, png, jpg, gif, pdf, doc, docx.",
		})
	}
}

func (s *LocalStore) saveImage(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer src.Close()

	img, _, err := image.Decode(io.LimitReader(src, maxUploadBytes))
	if err != nil {
		return "", models.NewFieldValidationError("Validation failed", map[string]string{
			"thumbnails": "The thumbnails field must be an image.",
		})
	}

	img = resizeToFit(img, maxImageWidth, maxImageHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString() + ".jpg"
	if err := s.write(filepath.Join("thumbnails", name), buf.Bytes()); err != nil {
		return "", err
	}
	observability.UploadBytes.WithLabelValues("image").Add(float64(buf.Len()))
	return s.publicPath("thumbnails/" + name), nil
}

func (s *LocalStore) saveDocument(file *multipart.FileHeader, ext string) (string, error) {
	if file.Size > maxUploadBytes {
		return "", models.NewFieldValidationError("Validation failed", map[string]string{
			"thumbnails": "The thumbnails field must not be greater than 10240 kilobytes.",
		})
	}

	src, err := file.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
	if err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString() + ext
	if err := s.write(filepath.Join("thumbnails", name), data); err != nil {
		return "", err
	}
	observability.UploadBytes.WithLabelValues("document").Add(float64(len(data)))
	return s.publicPath("thumbnails/" + name), nil
}

func (s *LocalStore) write(rel string, data []byte) error {
	path := filepath.Join(s.dir, rel)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *LocalStore) publicPath(rel string) string {
	return s.baseURL + "/" + rel
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
