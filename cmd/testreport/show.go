package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/testkube/testreport/internal/artifacts"
	"github.com/testkube/testreport/internal/console"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the newest Markdown report in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, err := artifacts.NewManager(cfg.ReportsPath()).Latest("md")
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New("no Markdown report found; run testreport first")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	return console.PrintMarkdown(cmd.OutOrStdout(), data, width)
}
