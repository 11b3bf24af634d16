package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gen3utils/internal/document"
	"gen3utils/internal/manifest"
	"gen3utils/internal/view"
)

type ValidateManifestOptions struct {
	Requirements string
}

func NewValidateManifestCommand(cli *CLI) *cobra.Command {
	var opts ValidateManifestOptions

	cmd := &cobra.Command{
		Use:   "validate-manifest <manifest_files...>",
		Short: "Validate one or more manifest files",
		Long: Highlight("gen3utils validate-manifest <manifest_files...>") + "\n\n" +
			"Validate manifest.json files against the service requirements:\n" +
			"required blocks and versions that depend on other services.\n" +
			"Services on a branch are reported as warnings and not validated.\n",
		Args: MinArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunValidateManifest(cmd.Context(), cli, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Requirements, "requirements", "", "Requirements file replacing the built-in one")

	return cmd
}

func RunValidateManifest(ctx context.Context, cli *CLI, files []string, opts ValidateManifestOptions) error {
	path := opts.Requirements
	if path == "" {
		path = cli.Config.Manifest.Requirements
	}

	req, err := manifest.LoadRequirements(path)
	if err != nil {
		return err
	}

	if d := manifest.ValidateRequirements(req); d.HasErrors() {
		return fmt.Errorf("%w: %w", manifest.ErrRequirements, d.Err())
	}

	results := make([]view.FileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = validateManifestFile(cli.log().With(slog.String("file", file)), file, req)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	result := view.ValidateResult{Kind: "validate-manifest", Files: results}
	view.NewValidateView(cli.Viewer).Render(result)

	if result.HasErrors() {
		return errors.New("")
	}

	return nil
}

func validateManifestFile(log *slog.Logger, file string, req *manifest.Requirements) view.FileResult {
	log.Info("validating manifest")

	doc, err := document.LoadFile(file)
	if err != nil {
		return failedFile(file, err)
	}

	return fileResult(file, manifest.Validate(doc, req, log))
}
