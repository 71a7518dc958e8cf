package domain

import (
	"strings"
	"time"
)

type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
	FileTypeVideo    FileType = "video"
	FileTypeOther    FileType = "other"
)

// File is the metadata of an uploaded object.
type File struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	FileName     string    `json:"fileName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	FileType     FileType  `json:"fileType"`
	Compressed   bool      `json:"compressed"`
	URL          string    `json:"url"`
	UserID       string    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FileTypeOf classifies a MIME type.
func FileTypeOf(mimeType string) FileType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return FileTypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return FileTypeVideo
	case strings.Contains(mimeType, "pdf"),
		strings.Contains(mimeType, "document"),
		strings.Contains(mimeType, "text"):
		return FileTypeDocument
	default:
		return FileTypeOther
	}
}
