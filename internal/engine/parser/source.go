package parser

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"casemeta/internal/core/errors"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultMaxFileSize bounds how much source is read for a single file.
const DefaultMaxFileSize int64 = 10 << 20

var (
	utf8BOM      = []byte{0xEF, 0xBB, 0xBF}
	codingCookie = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*([-\w.]+)`)
)

// ReadSource loads a Python file and returns its text as UTF-8.
// A path that does not exist yields a NOT_FOUND error before anything is read.
func ReadSource(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.MissingFile(path)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "stat source")
	}
	if info.IsDir() {
		return nil, errors.AddContext(
			errors.New(errors.CodeValidationError, "source path is a directory"), errors.CtxPath, path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, errors.AddContext(
			errors.New(errors.CodeValidationError, fmt.Sprintf("source exceeds %d bytes", maxSize)),
			errors.CtxPath, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "read source")
	}
	src, err := DecodeSource(raw)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return src, nil
}

// DecodeSource converts raw file bytes to UTF-8 following PEP 263: a UTF-8
// byte order mark wins, otherwise a coding cookie on one of the first two
// lines selects the codec, otherwise the bytes are taken as UTF-8.
func DecodeSource(raw []byte) ([]byte, error) {
	if bytes.HasPrefix(raw, utf8BOM) {
		return unicode.UTF8BOM.NewDecoder().Bytes(raw)
	}

	name := declaredEncoding(raw)
	if name == "" {
		return raw, nil
	}
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return raw, nil
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("decode source as %s", name))
	}
	return out, nil
}

func declaredEncoding(raw []byte) string {
	lines := bytes.SplitN(raw, []byte("\n"), 3)
	for i, line := range lines {
		if i == 2 {
			break
		}
		if m := codingCookie.FindSubmatch(line); m != nil {
			return string(m[1])
		}
		// The cookie is only honoured on line two when line one is blank or a comment.
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 && trimmed[0] != '#' {
			break
		}
	}
	return ""
}

// lookupEncoding maps a Python codec name to an x/text encoding. A nil
// encoding with a nil error means the bytes are already UTF-8.
func lookupEncoding(name string) (encoding.Encoding, error) {
	norm := strings.ReplaceAll(strings.ToLower(name), "_", "-")
	switch {
	case norm == "utf-8" || norm == "utf8" || strings.HasPrefix(norm, "utf-8-"):
		return nil, nil
	case norm == "latin-1" || norm == "latin1" || norm == "iso-latin-1" ||
		norm == "iso-8859-1" || strings.HasPrefix(norm, "latin-1-") || strings.HasPrefix(norm, "iso-8859-1-"):
		return charmap.ISO8859_1, nil
	}
	if enc, err := htmlindex.Get(norm); err == nil {
		return enc, nil
	}
	if enc, err := ianaindex.IANA.Encoding(norm); err == nil && enc != nil {
		return enc, nil
	}
	return nil, errors.AddContext(
		errors.New(errors.CodeNotSupported, fmt.Sprintf("unknown source encoding %q", name)),
		"encoding", name)
}
