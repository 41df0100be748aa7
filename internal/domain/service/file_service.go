package service

import (
	"context"
	"io"
)

// StoredFile identifies an uploaded object and where it is served from.
type StoredFile struct {
	URL    string
	Object string
}

type FileUploadService interface {
	UploadFile(ctx context.Context, file io.Reader, fileType, folder string) (*StoredFile, error)
	DeleteFile(ctx context.Context, object string) error
}
