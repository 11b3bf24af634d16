package command

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"gen3utils/internal/document"
	"gen3utils/internal/gitops"
	"gen3utils/internal/mapping"
	"gen3utils/internal/view"
)

func NewValidatePortalConfigCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-portal-config <gitops_file> <etl_mapping_file> <manifest_file>",
		Short: "Validate a portal configuration",
		Long: Highlight("gen3utils validate-portal-config <gitops_file> <etl_mapping_file> <manifest_file>") + "\n\n" +
			"Validate the syntax of a gitops.json portal configuration, the nodes\n" +
			"it counts against the dictionary of the manifest, and the fields it\n" +
			"displays against the ETL mapping.\n",
		Args: ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunValidatePortalConfig(cmd.Context(), cli, args[0], args[1], args[2])
		},
	}
}

func RunValidatePortalConfig(ctx context.Context, cli *CLI, gitopsFile, etlFile, manifestFile string) error {
	graph, err := loadDictionary(ctx, cli, manifestFile)
	if err != nil {
		return err
	}

	mappingDoc, err := mapping.LoadFile(etlFile)
	if err != nil {
		return err
	}

	file := view.FileResult{File: gitopsFile}

	cli.log().Info("validating portal config", "file", gitopsFile)

	cfg, err := document.LoadFile(gitopsFile)
	if err != nil {
		file = failedFile(gitopsFile, err)
	} else {
		diags, err := gitops.Validate(ctx, cli.log(), graph, mappingDoc, cfg)
		switch {
		case errors.Is(err, gitops.ErrSyntax):
			file = failedFile(gitopsFile, err)
		case errors.Is(err, gitops.ErrDictionary):
			file = failedFile(gitopsFile, err)
			file.Errors = append(file.Errors, gitops.ValidateAgainstDictionary(cfg, graph)...)
		case err != nil:
			return err
		default:
			file = fileResult(gitopsFile, diags)
		}
	}

	result := view.ValidateResult{Kind: "validate-portal-config", Files: []view.FileResult{file}}
	view.NewValidateView(cli.Viewer).Render(result)

	if result.HasErrors() {
		return errors.New("")
	}

	return nil
}
