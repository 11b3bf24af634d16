package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gen3utils/internal/deployment"
	"gen3utils/internal/view"
)

func NewPostDeploymentChangesCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "post-deployment-changes <repository> <pull_request_number>",
		Short: "Comment deployment changes on a manifest pull request",
		Long: Highlight("gen3utils post-deployment-changes <repository> <pull_request_number>") + "\n\n" +
			"Comment on a pull request with the deployment and breaking changes\n" +
			"of every service updated in its manifest files. Services on a branch\n" +
			"and downgraded services are reported as warnings.\n\n" +
			"A GitHub token is read from the configured environment variable\n" +
			"(GITHUB_TOKEN by default) or GH_TOKEN.\n",
		Args: ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pr, err := strconv.Atoi(args[1])
			if err != nil || pr <= 0 {
				return fmt.Errorf("invalid pull request number %q", args[1])
			}

			return RunPostDeploymentChanges(cmd.Context(), cli, args[0], pr)
		},
	}
}

func RunPostDeploymentChanges(ctx context.Context, cli *CLI, repo string, pr int) error {
	if cli.Config.GitHubToken(cli.Getenv) == "" {
		return fmt.Errorf("missing GitHub token: set %s or GH_TOKEN", cli.Config.GitHub.TokenEnv)
	}

	client, err := cli.GitHub()
	if err != nil {
		return err
	}

	poster := &deployment.Poster{
		GitHub: client,
		Notes:  client,
		Rules:  deployment.DefaultRules().WithOverrides(cli.Config.Deployment.IgnoredServices, cli.Config.Deployment.ServiceToRepo),
		Log:    cli.log(),
	}

	comment, err := poster.Run(ctx, repo, pr)
	if err != nil {
		return err
	}

	view.NewCommentView(cli.Viewer).Render(repo, pr, comment, comment != "")

	return nil
}
