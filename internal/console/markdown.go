package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

// PrintMarkdown renders a Markdown report for the terminal, wrapped at width.
func PrintMarkdown(w io.Writer, markdown []byte, width int) error {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.RenderBytes(markdown)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = w.Write(out)
	return err
}
