package uploads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps objects under a directory and serves them below BaseURL.
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates root if needed. baseURL is the public prefix the files
// are served from, e.g. "/uploads".
func NewLocal(root, baseURL string) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage path is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Put(ctx context.Context, key string, r io.Reader, _ *PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return err
	}
	return f.Close()
}

func (l *Local) URL(key string) string {
	return l.baseURL + "/" + strings.TrimLeft(key, "/")
}

// BaseURL is the prefix Handler must be mounted at.
func (l *Local) BaseURL() string { return l.baseURL }

// Handler serves stored files. Directory listings are not exposed.
func (l *Local) Handler() http.Handler {
	fs := http.FileServer(http.Dir(l.root))
	return http.StripPrefix(l.baseURL, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	}))
}

func (l *Local) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash("/" + key))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(l.root, clean), nil
}
