package app

import (
	"context"

	"github.com/spf13/cobra"
)

// Execute runs the prodmap CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "prodmap",
		Short:   "Product attribute extraction pipeline",
		Version: a.version,
		Long: `Prodmap extracts structured product attributes from product images.

Each product runs through a two-stage pipeline: a vision model reads
attributes off the product photos, then targeted web search fills the gaps.
Results are merged by source authority and exported as JSON, CSV, and a
batch summary report.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.prodmap.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.config.Model, "model", a.config.Model, "vision model to use")
	rootCmd.PersistentFlags().DurationVar(&a.config.Timeout, "timeout", a.config.Timeout, "per-call model timeout")
	rootCmd.PersistentFlags().StringVar(&a.config.CatalogPath, "catalog", a.config.CatalogPath, "attribute catalog file (default is the embedded camera catalog)")
	rootCmd.PersistentFlags().StringVar(&a.config.DefaultsPath, "defaults", a.config.DefaultsPath, "attribute defaults file")
	rootCmd.PersistentFlags().StringVar(&a.config.PromptsPath, "prompts", a.config.PromptsPath, "stage prompt overrides file")

	rootCmd.SetVersionTemplate("prodmap {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand runs before any command: it folds parsed flag values back into
// the config and reinitializes the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	logLevel := mustGetString(cmd, "log-level")

	a.config.UpdateFromFlags(verbose, quiet, noColor, logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.NewExtractCommand())
	rootCmd.AddCommand(a.NewBatchCommand())
	rootCmd.AddCommand(a.NewVersionCommand())
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
