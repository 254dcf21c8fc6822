// Package parsers turns upstream test artifacts into app records.
//
// Parsers never return errors for bad input. Everything that cannot be used
// becomes an app.Diagnostic next to whatever records could be recovered, so
// one corrupt file only costs the data in that file.
package parsers

import (
	"fmt"
	"io"
	"os"

	"github.com/testkube/testreport/internal/app"
)

// Limits bounds how much of an artifact a parser will hold in memory.
type Limits struct {
	MaxFileSize   int64
	MaxLineLength int
}

// DefaultLimits mirror the config defaults.
var DefaultLimits = Limits{
	MaxFileSize:   64 * 1024 * 1024,
	MaxLineLength: 1024 * 1024,
}

// Result is the record/diagnostic pair produced for one artifact.
type Result[T any] struct {
	Records     []T
	Diagnostics []app.Diagnostic
}

func (r *Result[T]) diag(path string, line int, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, app.Diagnostic{
		Path:    path,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

// Parser holds the limits shared by every artifact family.
type Parser struct {
	limits Limits
}

func New(limits Limits) *Parser {
	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = DefaultLimits.MaxFileSize
	}
	if limits.MaxLineLength <= 0 {
		limits.MaxLineLength = DefaultLimits.MaxLineLength
	}
	return &Parser{limits: limits}
}

// open opens path after checking it against the size cap.
func (p *Parser) open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() > p.limits.MaxFileSize {
		f.Close()
		return nil, fmt.Errorf("file is %d bytes, limit is %d", info.Size(), p.limits.MaxFileSize)
	}
	return f, nil
}

// readAll reads a whole artifact, bounded by the size cap even if the file
// grows while it is read.
func (p *Parser) readAll(path string) ([]byte, error) {
	f, err := p.open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, p.limits.MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > p.limits.MaxFileSize {
		return nil, fmt.Errorf("file exceeds limit of %d bytes", p.limits.MaxFileSize)
	}
	return data, nil
}
