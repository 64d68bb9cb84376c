package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadOptions configures how a transcript file is decoded.
type ReadOptions struct {
	// Encoding is a WHATWG encoding label such as "utf-8" or "windows-1252".
	// A byte order mark in the file overrides it.
	Encoding string
}

// LookupEncoding resolves a WHATWG encoding label. An empty label means UTF-8.
func LookupEncoding(label string) (encoding.Encoding, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return enc, nil
}

// ReadFile loads a transcript file into a Store.
func ReadFile(path string, opts ReadOptions) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()

	store, err := Read(file, opts)
	if err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", path, err)
	}
	return store, nil
}

// Read decodes r and splits it into lines. Each line keeps its trailing
// newline; a final line without one is kept as-is.
func Read(r io.Reader, opts ReadOptions) (*Store, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	decoder := unicode.BOMOverride(enc.NewDecoder())
	reader := bufio.NewReader(transform.NewReader(r, decoder))

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", len(lines)+1, err)
		}
	}
	return NewStore(lines), nil
}
