package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrNotAllowed - тип файла не входит в список разрешённых.
	ErrNotAllowed = errors.New("file type not allowed")
	// ErrTooLarge - файл больше допустимого размера.
	ErrTooLarge = errors.New("file too large")
)

// File - сохранённый файл.
type File struct {
	ID       string
	Path     string // публичный путь, например /uploads/<id>/<name>
	Filename string
	Mimetype string
}

// Disk сохраняет загрузки в каталог на диске.
// Каждый файл лежит в собственном подкаталоге <dir>/<ulid>/.
type Disk struct {
	dir      string
	prefix   string
	maxBytes int64
	allow    []string
}

// NewDisk создаёт каталог загрузок, если его нет.
// allow - glob-шаблоны mime-типов (например "image/*"); пустой список разрешает всё.
func NewDisk(dir, prefix string, maxBytes int64, allow []string) (*Disk, error) {
	for _, p := range allow {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid mime pattern %q", p)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Disk{dir: dir, prefix: "/" + strings.Trim(prefix, "/"), maxBytes: maxBytes, allow: allow}, nil
}

// Dir возвращает корневой каталог загрузок.
func (d *Disk) Dir() string { return d.dir }

// Allowed проверяет mime-тип по списку шаблонов.
func (d *Disk) Allowed(mimetype string) bool {
	if len(d.allow) == 0 {
		return true
	}
	for _, p := range d.allow {
		if ok, _ := doublestar.Match(p, mimetype); ok {
			return true
		}
	}
	return false
}

// Store сохраняет загрузку и возвращает описание файла.
func (d *Disk) Store(ctx context.Context, u *graphql.Upload) (*File, error) {
	if u == nil || u.File == nil {
		return nil, errors.New("empty upload")
	}
	if d.maxBytes > 0 && u.Size > d.maxBytes {
		return nil, ErrTooLarge
	}

	name := sanitize(u.Filename)
	head := make([]byte, 512)
	n, err := io.ReadFull(u.File, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	mimetype := detect(u.ContentType, name, head)
	if !d.Allowed(mimetype) {
		return nil, fmt.Errorf("%w: %s", ErrNotAllowed, mimetype)
	}

	id := ulid.Make().String()
	dir := filepath.Join(d.dir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	target := filepath.Join(dir, name)
	out, err := os.Create(target)
	if err != nil {
		return nil, err
	}

	var src io.Reader = io.MultiReader(bytes.NewReader(head), u.File)
	if d.maxBytes > 0 {
		src = io.LimitReader(src, d.maxBytes+1)
	}
	written, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && d.maxBytes > 0 && written > d.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	return &File{
		ID:       id,
		Path:     path.Join(d.prefix, id, name),
		Filename: name,
		Mimetype: mimetype,
	}, nil
}

// detect определяет mime-тип: заголовок клиента, затем расширение, затем содержимое.
func detect(contentType, name string, head []byte) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if mt := mime.TypeByExtension(filepath.Ext(name)); mt != "" {
		if base, _, err := mime.ParseMediaType(mt); err == nil {
			return base
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(head))
	return mt
}

func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s := strings.Trim(b.String(), ".")
	if s == "" {
		return "file"
	}
	return s
}
