package evidence

import (
	"encoding/base64"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// File is a user-selected file offered for ingestion.
type File interface {
	// Name is the file's base name as shown to the user.
	Name() string
	// MIMEType is the reported MIME type, or "" when unknown.
	MIMEType() string
	// Size is the byte size, if known.
	Size() (int64, bool)
	// Open returns the file content.
	Open() (io.ReadCloser, error)
}

type localFile struct {
	path string
}

// LocalFile adapts a path on disk. Its MIME type is derived from the
// extension and is empty when the extension is not recognised.
func LocalFile(path string) File {
	return localFile{path: path}
}

func (f localFile) Name() string { return filepath.Base(f.path) }

func (f localFile) MIMEType() string {
	return mime.TypeByExtension(filepath.Ext(f.path))
}

func (f localFile) Size() (int64, bool) {
	info, err := os.Stat(f.path)
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

func (f localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// DataURL encodes content as a data URL for previews.
func DataURL(mimeType string, content []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// readAll loads a file fully into memory.
func readAll(f File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
