// Package media places uploaded advert images under the media root.
package media

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTooLarge    = errors.New("file is too large")
	ErrUnsupported = errors.New("unsupported image type")
)

var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".tif": true, ".tiff": true, ".pdf": true,
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

type Store struct {
	root     string
	maxBytes int64
	now      func() time.Time
}

func NewStore(root string, maxBytes int) *Store {
	return &Store{root: root, maxBytes: int64(maxBytes), now: time.Now}
}

func (s *Store) Root() string {
	return s.root
}

// Check rejects uploads over the size limit or with an unknown extension.
func (s *Store) Check(filename string, size int64) error {
	if s.maxBytes > 0 && size > s.maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, s.maxBytes)
	}
	if !allowedExt[strings.ToLower(filepath.Ext(filename))] {
		return fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(filename))
	}
	return nil
}

// Place reserves adverts/YYYY/MM/<id>-<name> for an upload and creates
// its directory. rel is stored on the advert; abs is where to write.
func (s *Store) Place(filename string) (rel, abs string, err error) {
	now := s.now()
	dir := path.Join("adverts", now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(filepath.Join(s.root, filepath.FromSlash(dir)), 0o755); err != nil {
		return "", "", err
	}

	name := cleanName(filename)
	rel = path.Join(dir, uuid.NewString()[:8]+"-"+name)
	return rel, filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// Remove deletes a stored upload. rel must name a file under the root.
func (s *Store) Remove(rel string) error {
	clean := path.Clean("/" + rel)[1:]
	if clean == "" || clean != rel {
		return fmt.Errorf("media: refusing to remove %q", rel)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func cleanName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "upload"
	}
	if len(base) > 100 {
		ext := filepath.Ext(base)
		base = base[:100-len(ext)] + ext
	}
	return base
}
