package command

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"gen3utils/internal/dictionary"
	"gen3utils/internal/mapping"
	"gen3utils/internal/view"
)

type ValidateETLMappingOptions struct {
	AllowDuplicates bool
	// Repository and PullRequest select where errors are commented.
	Repository  string
	PullRequest int
}

func NewValidateETLMappingCommand(cli *CLI) *cobra.Command {
	var opts ValidateETLMappingOptions

	cmd := &cobra.Command{
		Use:   "validate-etl-mapping <etl_mapping_file> <manifest_file>",
		Short: "Validate an ETL mapping against the dictionary of a manifest",
		Long: Highlight("gen3utils validate-etl-mapping <etl_mapping_file> <manifest_file>") + "\n\n" +
			"Validate every index of an ETL mapping file against the dictionary\n" +
			"named by global.dictionary_url in the manifest file.\n\n" +
			"With --repository and --pull-request, errors are also commented on\n" +
			"the pull request.\n",
		Args: ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunValidateETLMapping(cmd.Context(), cli, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.AllowDuplicates, "allow-duplicates", false, "Let later properties replace earlier ones with the same name")
	cmd.Flags().StringVar(&opts.Repository, "repository", "", "Repository (org/name) to comment errors on")
	cmd.Flags().IntVar(&opts.PullRequest, "pull-request", 0, "Pull request number to comment errors on")
	cmd.MarkFlagsRequiredTogether("repository", "pull-request")

	return cmd
}

func RunValidateETLMapping(ctx context.Context, cli *CLI, etlFile, manifestFile string, opts ValidateETLMappingOptions) error {
	graph, err := loadDictionary(ctx, cli, manifestFile)
	if err != nil {
		return err
	}

	file := validateMappingFile(cli, graph, etlFile, opts)

	result := view.ValidateResult{Kind: "validate-etl-mapping", Files: []view.FileResult{file}}
	view.NewValidateView(cli.Viewer).Render(result)

	if !result.HasErrors() {
		return nil
	}

	if opts.Repository != "" && opts.PullRequest > 0 {
		client, err := cli.GitHub()
		if err != nil {
			return err
		}

		if err := client.CommentErrors(ctx, opts.Repository, opts.PullRequest, filepath.Base(etlFile), file.Errors); err != nil {
			return err
		}
	}

	return errors.New("")
}

func validateMappingFile(cli *CLI, graph *dictionary.Graph, etlFile string, opts ValidateETLMappingOptions) view.FileResult {
	cli.log().Info("validating ETL mapping", "file", etlFile)

	doc, err := mapping.LoadFile(etlFile)
	if err != nil {
		return failedFile(etlFile, err)
	}

	res, err := mapping.Validate(graph, doc, mapping.Options{
		AllowDuplicates: opts.AllowDuplicates || cli.Config.Validation.AllowDuplicateProperties,
	})
	if err != nil {
		return failedFile(etlFile, err)
	}

	for _, ix := range res.Indices {
		cli.log().Debug("index", "doc_type", ix.DocType, "properties", len(ix.Names()))
	}

	return fileResult(etlFile, res.Diagnostics)
}
