package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/classmeta/internal/cli/config"
	"github.com/conduit-lang/classmeta/internal/cli/ui"
	"github.com/conduit-lang/classmeta/pkg/meta"
	"github.com/conduit-lang/classmeta/pkg/meta/types"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// Persistent flags
var (
	configPath     string
	outputFormat   string
	visibilityFlag string
	accessorsFlag  string
	verbose        bool
	noColor        bool
)

// settings is the resolved flag and config state of the running command.
type settings struct {
	format   string
	noColor  bool
	level    meta.Visibility
	strategy types.Strategy
	logger   *zap.Logger
}

var current = settings{format: "table", logger: zap.NewNop()}

// reportedError marks an error that was already printed to the user.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error { return &reportedError{err: err} }

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "classmeta",
		Short: "Declare, build and inspect classes with typed attributes",
		Long: color.CyanString(`classmeta - class declarations with typed attributes

classmeta loads class manifests into the metadata engine and shows what
the engine built from them:
  • Attributes with data types, defaults and access rules
  • Generated accessors and constructors
  • Inherited members and class dependencies
  • The registered data types and their accessor naming`),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: resolveSettings,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default ./classmeta.yaml)")
	pf.StringVar(&outputFormat, "format", "table", "Output format: table, json or yaml")
	pf.StringVar(&visibilityFlag, "visibility", "public", "Show members up to this visibility: public, trusted, protected or private")
	pf.StringVar(&accessorsFlag, "accessors", "default", "Accessor strategy for built-in types: default, affordance or semi-affordance")
	pf.BoolVar(&verbose, "verbose", false, "Log declaration and build events")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewTypesCommand())
	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewDescribeCommand())
	rootCmd.AddCommand(NewConstructCommand())
	rootCmd.AddCommand(NewDocsCommand())

	return rootCmd
}

// resolveSettings merges the config file into flags the user did not set.
func resolveSettings(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), noColor))
		return reported(err)
	}

	flags := cmd.Flags()
	if !flags.Changed("format") {
		outputFormat = cfg.Output.Format
	}
	if !flags.Changed("visibility") {
		visibilityFlag = cfg.Inspect.Visibility
	}
	if !flags.Changed("accessors") {
		accessorsFlag = cfg.Types.Accessors
	}
	if !cfg.Output.Color {
		noColor = true
	}
	if noColor {
		color.NoColor = true
	}

	switch outputFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", outputFormat)
	}
	level, err := meta.ParseVisibility(visibilityFlag)
	if err != nil {
		return err
	}
	strategy, err := types.ParseStrategy(accessorsFlag)
	if err != nil {
		return err
	}
	if strategy == types.Custom {
		return fmt.Errorf("--accessors cannot be custom: built-in types have no naming function")
	}

	logger := zap.NewNop()
	if verbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	meta.SetLogger(logger)

	current = settings{
		format:   outputFormat,
		noColor:  noColor,
		level:    level,
		strategy: strategy,
		logger:   logger,
	}
	return nil
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the classmeta version, Git commit, build date, and Go version",
		// Version output does not depend on configuration.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Fprint(out, "classmeta version: ")
			valueColor.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			valueColor.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			valueColor.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			valueColor.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		var shown *reportedError
		if !errors.As(err, &shown) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
