package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gen2brain/webp"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	xwebp "golang.org/x/image/webp"

	"userhub/internal/domain"
	"userhub/internal/repository"
	"userhub/internal/storage"
)

// AllowedMimeTypes lists the content types accepted for upload.
var AllowedMimeTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/jpg":          {},
	"image/png":          {},
	"image/webp":         {},
	"image/gif":          {},
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {},
}

const signedURLExpiry = time.Hour

var errFileNotFound = domain.NewNotFoundError("File not found")

type FileConfig struct {
	MaxSize           int64
	CompressThreshold int64
	Logger            logrus.FieldLogger
}

type UploadInput struct {
	Data         []byte
	OriginalName string
	MimeType     string
	UserID       string
}

type UploadResult struct {
	File       *domain.File `json:"file"`
	Compressed bool         `json:"compressed"`
}

// FileWithURL is file metadata plus a presigned download URL.
type FileWithURL struct {
	File      *domain.File `json:"file"`
	SignedURL string       `json:"signedUrl"`
}

// FileService stores uploads in an object store and tracks their metadata.
type FileService interface {
	Upload(ctx context.Context, in UploadInput) (UploadResult, error)
	Get(ctx context.Context, id string) (FileWithURL, error)
	Download(ctx context.Context, id string) (*domain.File, *storage.Object, error)
	ListByUser(ctx context.Context, userID string) ([]domain.File, error)
	Delete(ctx context.Context, id, userID string) error
}

type fileService struct {
	files  repository.FileRepository
	store  storage.ObjectStore
	cfg    FileConfig
	now    func() time.Time
	newKey func() string
}

func NewFileService(files repository.FileRepository, store storage.ObjectStore, cfg FileConfig) FileService {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 10 << 20
	}
	if cfg.CompressThreshold <= 0 {
		cfg.CompressThreshold = 1 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &fileService{
		files:  files,
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		newKey: func() string { return uuid.NewString()[:8] },
	}
}

func (s *fileService) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	mimeType := strings.ToLower(strings.TrimSpace(in.MimeType))
	if _, ok := AllowedMimeTypes[mimeType]; !ok {
		return UploadResult{}, domain.NewValidationError(fmt.Sprintf("file type not allowed: %s", in.MimeType))
	}
	if len(in.Data) == 0 {
		return UploadResult{}, domain.NewValidationError("file is empty")
	}
	if int64(len(in.Data)) > s.cfg.MaxSize {
		return UploadResult{}, domain.NewValidationError(fmt.Sprintf("file exceeds maximum size of %d bytes", s.cfg.MaxSize))
	}

	data := in.Data
	fileType := domain.FileTypeOf(mimeType)
	compressed := false
	if fileType == domain.FileTypeImage && int64(len(data)) > s.cfg.CompressThreshold {
		out, outType, err := compressImage(data, mimeType)
		switch {
		case err != nil:
			s.cfg.Logger.WithError(err).WithField("mime_type", mimeType).Warn("image compression failed, keeping original")
		case len(out) < len(data):
			data = out
			mimeType = outType
			compressed = true
		}
	}

	key := fmt.Sprintf("uploads/%s/%d-%s%s", in.UserID, s.now().UnixMilli(), s.newKey(), filepath.Ext(in.OriginalName))
	location, err := s.store.Upload(ctx, key, bytes.NewReader(data), mimeType)
	if err != nil {
		return UploadResult{}, fmt.Errorf("store file: %w", err)
	}

	file := &domain.File{
		OriginalName: in.OriginalName,
		FileName:     key,
		MimeType:     mimeType,
		Size:         int64(len(data)),
		FileType:     fileType,
		Compressed:   compressed,
		URL:          location,
		UserID:       in.UserID,
	}
	if err := s.files.Create(ctx, file); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.cfg.Logger.WithError(delErr).WithField("key", key).Warn("remove orphaned object")
		}
		return UploadResult{}, fmt.Errorf("save file metadata: %w", err)
	}
	return UploadResult{File: file, Compressed: compressed}, nil
}

func (s *fileService) find(ctx context.Context, id string) (*domain.File, error) {
	file, err := s.files.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find file: %w", err)
	}
	if file == nil {
		return nil, errFileNotFound
	}
	return file, nil
}

func (s *fileService) Get(ctx context.Context, id string) (FileWithURL, error) {
	file, err := s.find(ctx, id)
	if err != nil {
		return FileWithURL{}, err
	}
	signed, err := s.store.PresignURL(ctx, file.FileName, signedURLExpiry)
	if err != nil {
		return FileWithURL{}, fmt.Errorf("presign file: %w", err)
	}
	return FileWithURL{File: file, SignedURL: signed}, nil
}

func (s *fileService) Download(ctx context.Context, id string) (*domain.File, *storage.Object, error) {
	file, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.store.Download(ctx, file.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, errFileNotFound
		}
		return nil, nil, fmt.Errorf("download file: %w", err)
	}
	return file, obj, nil
}

func (s *fileService) ListByUser(ctx context.Context, userID string) ([]domain.File, error) {
	files, err := s.files.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// Delete removes a file owned by userID, object first and then metadata.
func (s *fileService) Delete(ctx context.Context, id, userID string) error {
	file, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if file.UserID != userID {
		return domain.NewForbiddenError("file belongs to another user")
	}
	if err := s.store.Delete(ctx, file.FileName); err != nil {
		return fmt.Errorf("delete stored file: %w", err)
	}
	if err := s.files.Delete(ctx, file.ID); err != nil {
		return fmt.Errorf("delete file metadata: %w", err)
	}
	return nil
}

// compressImage re-encodes JPEG at quality 80, PNG at best compression and WebP
// at quality 80. Any other image (GIF, first frame only) becomes a quality 80
// JPEG. It returns the encoded bytes and their content type.
func compressImage(data []byte, mimeType string) ([]byte, string, error) {
	decode := image.Decode
	outType := "image/jpeg"
	encode := func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, &jpeg.Options{Quality: 80})
	}
	switch mimeType {
	case "image/jpeg", "image/jpg":
		outType = mimeType
	case "image/png":
		outType = mimeType
		encode = func(buf *bytes.Buffer, img image.Image) error {
			enc := png.Encoder{CompressionLevel: png.BestCompression}
			return enc.Encode(buf, img)
		}
	case "image/webp":
		outType = mimeType
		decode = func(r io.Reader) (image.Image, string, error) {
			img, err := xwebp.Decode(r)
			return img, "webp", err
		}
		encode = func(buf *bytes.Buffer, img image.Image) error {
			return webp.Encode(buf, img, webp.Options{Quality: 80})
		}
	}

	img, _, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), outType, nil
}
