package marker

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/lc/dnsmark/internal/filesys"
)

// ErrUndecodable is returned when a file is neither valid UTF-8 nor valid in
// the fallback encoding.
var ErrUndecodable = errors.New("file is not decodable")

const _defaultPerm fs.FileMode = 0o644

// FS is the file system surface the Writer needs.
type FS interface {
	filesys.ReadWriteFS
	filesys.FileOps
}

// Writer applies blocks to files on disk. Files are always written back as
// UTF-8, whichever encoding they were read with.
type Writer struct {
	fs       FS
	fallback encoding.Encoding
	atomic   bool
}

// Opt is a function option for configuring the Writer.
type Opt func(w *Writer)

// WithFallback sets the encoding tried when a file is not valid UTF-8.
// The default is GBK.
func WithFallback(enc encoding.Encoding) Opt {
	return func(w *Writer) {
		w.fallback = enc
	}
}

// WithAtomicWrite makes the Writer replace files through a temp file and
// rename instead of rewriting them in place.
func WithAtomicWrite(enabled bool) Opt {
	return func(w *Writer) {
		w.atomic = enabled
	}
}

// NewWriter returns a Writer backed by fsys.
func NewWriter(fsys FS, opts ...Opt) *Writer {
	w := &Writer{
		fs:       fsys,
		fallback: simplifiedchinese.GBK,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// EncodingByName resolves a WHATWG encoding label such as "gbk" or
// "shift_jis".
func EncodingByName(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", name, err)
	}
	return enc, nil
}

// Write makes the file at path hold exactly one block called name wrapping
// lines. A missing file counts as empty and is created. The whole file is
// rewritten on every call.
func (w *Writer) Write(path, name string, lines []string) error {
	content, perm, err := w.read(path)
	if err != nil {
		return err
	}

	out := []byte(Splice(content, name, lines))

	if w.atomic {
		if err := filesys.AtomicWrite(w.fs, path, out, perm); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		return nil
	}
	if err := w.fs.WriteFile(path, out, perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// read returns the decoded text of path and the permission bits to write it
// back with.
func (w *Writer) read(path string) (string, fs.FileMode, error) {
	raw, err := w.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", _defaultPerm, nil
		}
		return "", 0, fmt.Errorf("reading %s: %w", path, err)
	}

	perm := _defaultPerm
	if info, err := w.fs.Stat(path); err == nil && info != nil {
		perm = info.Mode().Perm()
	}

	text, err := w.decode(raw)
	if err != nil {
		return "", 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return text, perm, nil
}

func (w *Writer) decode(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	if w.fallback == nil {
		return "", ErrUndecodable
	}

	out, err := w.fallback.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	// x/text decoders substitute U+FFFD for invalid input rather than
	// failing. The input was not UTF-8, so any U+FFFD came from a bad byte.
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", ErrUndecodable
	}
	return string(out), nil
}
