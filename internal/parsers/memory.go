package parsers

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/testkube/testreport/internal/app"
)

const (
	defaultIssueKind        = "Unknown"
	defaultIssueDescription = "Unknown issue"
)

// valgrindError is one <error> element of valgrind's --xml=yes output.
type valgrindError struct {
	Kind  *string `xml:"kind"`
	What  *string `xml:"what"`
	XWhat *struct {
		Text string `xml:"text"`
	} `xml:"xwhat"`
}

// Memory reads one valgrind XML report. Every <error> element, at any depth,
// becomes one MemoryIssue. A report that fails to parse contributes nothing.
func (p *Parser) Memory(path string) Result[app.MemoryIssue] {
	var res Result[app.MemoryIssue]

	data, err := p.readAll(path)
	if err != nil {
		res.diag(path, 0, "cannot read memory report: %v", err)
		return res
	}

	var issues []app.MemoryIssue
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.diag(path, 0, "malformed memory report: %v", err)
			return res
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "error" {
			continue
		}
		var ve valgrindError
		if err := dec.DecodeElement(&ve, &start); err != nil {
			res.diag(path, 0, "malformed <error> element: %v", err)
			return res
		}
		issues = append(issues, ve.issue(path))
	}

	res.Records = issues
	return res
}

func (ve valgrindError) issue(source string) app.MemoryIssue {
	issue := app.MemoryIssue{
		Kind:        defaultIssueKind,
		Description: defaultIssueDescription,
		Source:      source,
	}
	if ve.Kind != nil && strings.TrimSpace(*ve.Kind) != "" {
		issue.Kind = strings.TrimSpace(*ve.Kind)
	}
	switch {
	case ve.What != nil && strings.TrimSpace(*ve.What) != "":
		issue.Description = strings.TrimSpace(*ve.What)
	case ve.XWhat != nil && strings.TrimSpace(ve.XWhat.Text) != "":
		issue.Description = strings.TrimSpace(ve.XWhat.Text)
	}
	return issue
}
