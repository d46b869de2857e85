// Package upload keeps request uploads on local disk for the lifetime of one
// generation request.
package upload

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/util"
	"strings"

	"go.uber.org/zap"
)

// Store creates per-request upload batches under a base directory.
type Store struct {
	baseDir string
}

// NewStore ensures baseDir exists.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", baseDir, err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Batch is the set of files uploaded with one request. Callers must defer Cleanup.
type Batch struct {
	dir   string
	files []domain.UploadedFile
}

// NewBatch creates an empty batch in its own directory.
func (s *Store) NewBatch() (*Batch, error) {
	dir := filepath.Join(s.baseDir, util.NewULID())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create batch dir: %w", err)
	}
	return &Batch{dir: dir}, nil
}

// Files returns the saved files in upload order.
func (b *Batch) Files() []domain.UploadedFile {
	return b.files
}

// Save copies r to disk. The stored name keeps the original extension so
// providers that sniff filenames see a sensible one.
func (b *Batch) Save(originalName string, r io.Reader, mimeType string) (domain.UploadedFile, error) {
	storedName := fmt.Sprintf("%s-%s", util.NewULID(), sanitizeName(originalName))
	path := filepath.Join(b.dir, storedName)

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("create %s: %w", storedName, err)
	}
	size, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		return domain.UploadedFile{}, fmt.Errorf("write %s: %w", storedName, copyErr)
	}
	if closeErr != nil {
		return domain.UploadedFile{}, fmt.Errorf("close %s: %w", storedName, closeErr)
	}

	if mimeType == "" {
		mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(originalName)))
	}
	f := domain.UploadedFile{OriginalName: originalName, Path: path, Size: size, MIMEType: mimeType}
	b.files = append(b.files, f)
	return f, nil
}

// SaveMultipart stores one multipart form file.
func (b *Batch) SaveMultipart(fh *multipart.FileHeader) (domain.UploadedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()
	return b.Save(fh.Filename, src, fh.Header.Get("Content-Type"))
}

// Cleanup removes the batch directory. Failures are logged and swallowed.
func (b *Batch) Cleanup() {
	if err := os.RemoveAll(b.dir); err != nil {
		logger.Get().Debug("upload cleanup failed", zap.String("dir", b.dir), zap.Error(err))
	}
}

// FromPath describes a file already on disk, as the CLI passes them.
func FromPath(path string) (domain.UploadedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.UploadedFile{}, err
	}
	if info.IsDir() {
		return domain.UploadedFile{}, fmt.Errorf("%s is a directory", path)
	}
	return domain.UploadedFile{
		OriginalName: filepath.Base(path),
		Path:         path,
		Size:         info.Size(),
		MIMEType:     mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
	}, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == 0 || r < 0x20:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
