// Package mediastore keeps uploaded images on local disk and serves them
// back under a public URL prefix. Only the public path is persisted on
// documents, e.g. /uploads/team/3f2a9c1e-portrait.jpg.
package mediastore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/blend/internal/app/system/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("file is too large")
	// ErrUnsupportedType is returned for files that are not images.
	ErrUnsupportedType = errors.New("only image files are allowed")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store writes files under Root and exposes them under URLPrefix.
type Store struct {
	root      string
	urlPrefix string
	maxBytes  int64
}

// New creates the root directory if needed.
func New(root, urlPrefix string, maxBytes int64) (*Store, error) {
	if root == "" {
		return nil, errors.New("upload dir is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	prefix := "/" + strings.Trim(urlPrefix, "/")
	return &Store{root: root, urlPrefix: prefix, maxBytes: maxBytes}, nil
}

// MaxBytes is the per-file upload limit.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// URLPrefix is where stored files are served from, e.g. /uploads.
func (s *Store) URLPrefix() string { return s.urlPrefix }

// Save writes an uploaded image into dir (e.g. "team") under a unique name
// and returns its public path.
func (s *Store) Save(dir string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", errors.New("no file")
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	name := sanitizeFilename(fh.Filename)
	if !allowedExt[strings.ToLower(filepath.Ext(name))] {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return s.Put(dir, name, src)
}

// Put stores r as dir/<uuid>-name and returns the public path.
func (s *Store) Put(dir, name string, r io.Reader) (string, error) {
	dir = sanitizeDir(dir)
	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(name))

	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	full := filepath.Join(s.root, dir, uniqueName)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	var src io.Reader = r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write file: %w", err)
	}

	return path.Join(s.urlPrefix, dir, uniqueName), nil
}

// Remove deletes the file behind a public path. Missing files are not an
// error. Paths outside the prefix are rejected.
func (s *Store) Remove(publicPath string) error {
	full, err := s.resolve(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Discard removes a file best-effort. Failures are logged and counted,
// never returned. Empty paths are ignored.
func (s *Store) Discard(publicPath string, log *zap.Logger) {
	if publicPath == "" {
		return
	}
	if err := s.Remove(publicPath); err != nil {
		metrics.IncMediaCleanupFailure()
		if log != nil {
			log.Warn("failed to remove uploaded file",
				zap.String("path", publicPath), zap.Error(err))
		}
	}
}

// ClientMessage maps upload errors caused by the caller's file to a
// message for a 400 response. ok is false for server-side failures.
func ClientMessage(err error) (msg string, ok bool) {
	switch {
	case errors.Is(err, ErrTooLarge):
		return "File is too large.", true
	case errors.Is(err, ErrUnsupportedType):
		return "Only image files are allowed.", true
	}
	return "", false
}

// Walk calls fn with the public path and modification time of every stored
// file. Returning an error from fn stops the walk.
func (s *Store) Walk(fn func(publicPath string, modTime time.Time) error) error {
	return filepath.WalkDir(s.root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, full)
		if err != nil {
			return err
		}
		return fn(path.Join(s.urlPrefix, filepath.ToSlash(rel)), info.ModTime())
	})
}

func (s *Store) resolve(publicPath string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(publicPath))
	if !strings.HasPrefix(clean, s.urlPrefix+"/") {
		return "", fmt.Errorf("path %q is outside %s", publicPath, s.urlPrefix)
	}
	rel := strings.TrimPrefix(clean, s.urlPrefix+"/")
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// Handler serves stored files with a one-year public cache. Directory
// requests return 404 rather than a listing. Mount it under URLPrefix with
// http.StripPrefix.
func (s *Store) Handler() http.Handler {
	files := http.FileServer(noDirFS{http.Dir(s.root)})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

// noDirFS hides directories so http.FileServer never renders a listing.
type noDirFS struct{ fs http.FileSystem }

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

func sanitizeDir(dir string) string {
	dir = strings.Trim(filepath.ToSlash(dir), "/")
	if dir == "" {
		return "misc"
	}
	parts := strings.Split(dir, "/")
	out := parts[:0]
	for _, p := range parts {
		p = sanitizeFilename(p)
		if p == "." || p == ".." || p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return "misc"
	}
	return strings.Join(out, "/")
}

// sanitizeFilename removes or replaces characters that could be problematic in filenames.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filepath.ToSlash(filename))

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 || string(result) == "." || string(result) == ".." {
		return "file"
	}
	if len(result) > 100 {
		// Truncate but preserve extension if present
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}

	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
