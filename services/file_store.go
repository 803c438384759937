package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Bucket names one of the fixed upload directories.
type Bucket string

const (
	BucketImages Bucket = "images"
	BucketCVs    Bucket = "cvs"
	BucketTools  Bucket = "tools"
)

var imageExtensions = []string{"png", "jpg", "jpeg", "gif", "pdf"}

// allowedExtensions is the per-bucket allow-list, lowercase without the dot.
var allowedExtensions = map[Bucket][]string{
	BucketImages: imageExtensions,
	BucketTools:  imageExtensions,
	BucketCVs:    {"pdf"},
}

// FileStore writes uploads to local directories, one per bucket. Files are keyed
// by their sanitized name, so a second upload with the same name replaces the first.
type FileStore struct {
	dirs map[Bucket]string
}

// NewFileStore creates the bucket directories if they are missing.
func NewFileStore(imagesDir, cvsDir, toolsDir string) (*FileStore, error) {
	s := &FileStore{dirs: map[Bucket]string{
		BucketImages: imagesDir,
		BucketCVs:    cvsDir,
		BucketTools:  toolsDir,
	}}
	for bucket, dir := range s.dirs {
		if dir == "" {
			return nil, fmt.Errorf("no directory configured for %s uploads", bucket)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s upload dir: %w", bucket, err)
		}
	}
	return s, nil
}

// Dir returns the directory backing a bucket.
func (s *FileStore) Dir(bucket Bucket) (string, bool) {
	dir, ok := s.dirs[bucket]
	return dir, ok
}

// Buckets lists the configured buckets in a stable order.
func (s *FileStore) Buckets() []Bucket {
	buckets := make([]Bucket, 0, len(s.dirs))
	for b := range s.dirs {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
	return buckets
}

// Allowed reports whether filename's extension is on the bucket's allow-list.
func (s *FileStore) Allowed(bucket Bucket, filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	ext := strings.ToLower(filename[idx+1:])
	for _, allowed := range allowedExtensions[bucket] {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Save validates and writes an uploaded file, returning the stored name.
func (s *FileStore) Save(bucket Bucket, header *multipart.FileHeader) (string, error) {
	if header == nil || header.Filename == "" {
		return "", errs.NewMissingFileError("file", "No selected file")
	}
	if !s.Allowed(bucket, header.Filename) {
		return "", errs.NewUnsupportedFileTypeError(header.Filename, allowedExtensions[bucket])
	}

	name := SecureFilename(header.Filename)
	if name == "" || !s.Allowed(bucket, name) {
		return "", errs.NewInvalidFilenameError(header.Filename)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := s.write(bucket, name, src); err != nil {
		return "", err
	}

	log.Debug().Str("bucket", string(bucket)).Str("filename", name).Int64("size", header.Size).Msg("stored upload")
	return name, nil
}

func (s *FileStore) write(bucket Bucket, name string, src io.Reader) error {
	path, err := s.Path(bucket, name)
	if err != nil {
		return err
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return dst.Close()
}

// Path joins a stored name onto the bucket directory.
func (s *FileStore) Path(bucket Bucket, name string) (string, error) {
	dir, ok := s.dirs[bucket]
	if !ok {
		return "", fmt.Errorf("unknown bucket %q", bucket)
	}
	if name == "" || name != filepath.Base(name) {
		return "", errs.NewInvalidFilenameError(name)
	}
	return filepath.Join(dir, name), nil
}

// Exists reports whether a stored file is present on disk.
func (s *FileStore) Exists(bucket Bucket, name string) bool {
	path, err := s.Path(bucket, name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *FileStore) Remove(bucket Bucket, name string) error {
	path, err := s.Path(bucket, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

var windowsDeviceNames = map[string]bool{
	"CON": true, "AUX": true, "COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "PRN": true, "NUL": true,
}

// SecureFilename reduces a client-supplied filename to ASCII letters, digits,
// '_', '-' and '.', with path separators removed. It may return "".
func SecureFilename(filename string) string {
	ascii, _, err := transform.String(transform.Chain(
		norm.NFKD,
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	), filename)
	if err != nil {
		return ""
	}

	ascii = strings.NewReplacer("/", " ", "\\", " ").Replace(ascii)
	ascii = strings.Join(strings.Fields(ascii), "_")

	var b strings.Builder
	for _, r := range ascii {
		if r == '_' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	name := strings.Trim(b.String(), "._")
	if name != "" {
		base := strings.ToUpper(strings.SplitN(name, ".", 2)[0])
		if windowsDeviceNames[base] {
			name = "_" + name
		}
	}
	return name
}
