package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gen3utils/internal/config"
	"gen3utils/internal/view"
)

// LogEnv selects the log level.
const LogEnv = "GEN3UTILS_LOG"

type rootOptions struct {
	output     string
	debug      bool
	configPath string
}

// NewRootCommand returns the root command. Its PersistentPreRunE rebuilds
// the viewer of cli from the global flags and loads the configuration.
func NewRootCommand(cli *CLI) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "gen3utils",
		Short: "Utils for Gen3 commons management",
		Long: Highlight("Usage: gen3utils [global options] <subcommand> [args]") + "\n\n" +
			"gen3utils validates ETL mappings, portal configurations and manifests\n" +
			"of Gen3 data commons, comments deployment changes on manifest pull\n" +
			"requests and streams logs stored in S3.\n",
		Version:       view.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configure(cli, opts)
		},
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				_ = cmd.Help()
			}
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "Output format. One of: (human | json)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Set log level to debug")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a gen3utils YAML configuration file")

	return cmd
}

func configure(cli *CLI, opts rootOptions) error {
	viewType, err := view.ParseOutputFormat(opts.output)
	if err != nil {
		return err
	}

	logLevel := view.LogLevelInfo
	if lvl, ok := view.ParseLogLevel(cli.Getenv(LogEnv)); ok {
		logLevel = lvl
	}

	if opts.debug {
		logLevel = view.LogLevelDebug
	}

	cli.Viewer = view.NewViewer(viewType, cli.Stream, logLevel)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	cli.Config = cfg

	return nil
}

func setCobraUsageTemplate(root *cobra.Command) {
	cobra.AddTemplateFunc("StyleHeading", color.RGB(50, 108, 229).SprintFunc())
	usageTemplate := strings.NewReplacer(
		`Usage:`, `{{StyleHeading "Usage:"}}`,
		`Available Commands:`, `{{StyleHeading "Available Commands:"}}`,
		`Flags:`, `{{StyleHeading "Options:"}}`,
		`Global Flags:`, `{{StyleHeading "Global Options:"}}`,
	).Replace(root.UsageTemplate())
	root.SetUsageTemplate(usageTemplate)
}

// Execute runs the CLI and exits.
func Execute() {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		color.NoColor = true
	}

	cli := NewCLI(view.ViewHuman, os.Stdout, os.Stderr, view.LogLevelInfo)

	root := NewRootCommand(cli)
	setCobraUsageTemplate(root)
	root.SetVersionTemplate("{{.Version}}\n")
	AddCommands(root, cli)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(cli.ErrWriter, "Error:", msg)
		}
		stop()
		os.Exit(1)
	}
}

func AddCommands(root *cobra.Command, cli *CLI) {
	root.AddCommand(
		NewVersionCommand(cli),
		NewValidateManifestCommand(cli),
		NewValidateETLMappingCommand(cli),
		NewValidatePortalConfigCommand(cli),
		NewPostDeploymentChangesCommand(cli),
		NewS3LogCommand(cli),
	)
}
