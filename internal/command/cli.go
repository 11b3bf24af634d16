// Package command implements the gen3utils subcommands.
package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"gen3utils/internal/config"
	"gen3utils/internal/diagnostic"
	"gen3utils/internal/dictionary"
	"gen3utils/internal/github"
	"gen3utils/internal/s3log"
	"gen3utils/internal/view"
)

// CLI carries the output, configuration and clients shared by commands.
type CLI struct {
	view.Viewer
	*view.Stream

	Config *config.Config
	Getenv func(string) string
	// Dictionary fetches dictionary schemas referenced by manifests.
	Dictionary *dictionary.Loader
	// S3 replaces the client built from the s3log flags when set.
	S3 s3log.API
}

func Highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}

// NewCLI writes results to w and logs to errW.
func NewCLI(vt view.ViewType, w, errW io.Writer, logLevel view.LogLevel) *CLI {
	s := view.NewStream(w, errW)

	return &CLI{
		Viewer:     view.NewViewer(vt, s, logLevel),
		Stream:     s,
		Config:     config.Default(),
		Getenv:     os.Getenv,
		Dictionary: &dictionary.Loader{},
	}
}

func (c *CLI) log() *slog.Logger {
	return c.Logger().Slog()
}

// GitHub builds an API client from the configuration.
func (c *CLI) GitHub() (*github.Client, error) {
	return github.New(github.Options{
		Token:             c.Config.GitHubToken(c.Getenv),
		BaseURL:           c.Config.GitHub.BaseURL,
		RequestsPerSecond: c.Config.GitHub.RequestsPerSecond,
		Logger:            c.log(),
	})
}

func ExactArgs(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == number {
			return nil
		}
		return fmt.Errorf("expected %d arguments, got %d", number, len(args))
	}
}

func MinArgs(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) >= number {
			return nil
		}
		return fmt.Errorf("expected at least %d arguments, got %d", number, len(args))
	}
}

func diagnosticStrings(ds []diagnostic.Diagnostic) []string {
	return lo.Map(ds, func(d diagnostic.Diagnostic, _ int) string { return d.String() })
}

func fileResult(file string, d diagnostic.Diagnostics) view.FileResult {
	return view.FileResult{
		File:     file,
		Errors:   diagnosticStrings(d.Errors),
		Warnings: diagnosticStrings(d.Warnings),
	}
}

func failedFile(file string, err error) view.FileResult {
	return view.FileResult{File: file, Errors: []string{err.Error()}}
}
