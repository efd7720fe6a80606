package filestorage

import (
	"mime/multipart"
)

// URLPrefix is the public prefix under which stored files are served
const URLPrefix = "/uploads"

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores an uploaded file under subPath and returns its public path
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// SaveBytes stores generated content under subPath with the given extension
	SaveBytes(data []byte, subPath, ext string) (string, error)

	// DeleteFile removes a previously stored file
	DeleteFile(fileURL string) error

	// GetFullPath returns the filesystem path for a public file path
	GetFullPath(fileURL string) string
}
