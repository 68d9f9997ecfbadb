package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/breeze-rmm/displayhost/internal/config"
	"github.com/breeze-rmm/displayhost/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version      = "0.1.0"
	cfgFile      string
	outputFormat string
	fpsOverride  int
	verbose      bool

	cfg     *config.Config
	logFile *logging.RotatingWriter
	log     = logging.L("cli")
)

var rootCmd = &cobra.Command{
	Use:               "breeze-display",
	Short:             "Breeze display discovery and capture tool",
	Long:              `breeze-display lists the displays a Breeze host can capture, resolves display selectors and checks that a capture session can be opened.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.FromContext(cmd.Context()).Debug("command finished")
		if logFile != nil {
			logFile.Close()
		}
	},
}

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List displays available for capture",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listDisplays(cmd.OutOrStdout())
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [selector]",
	Short: "Resolve a display selector to a display id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resolveSelector(cmd.OutOrStdout(), selectorArg(args))
	},
}

var openCmd = &cobra.Command{
	Use:   "open [selector]",
	Short: "Open a capture session on a display and hold it until interrupted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openSession(cmd.OutOrStdout(), selectorArg(args))
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Report whether capture hardware may have changed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return probeEncoders(cmd.OutOrStdout())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Breeze Display v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is display.yaml in the Breeze config dir)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: text, json or yaml")
	displaysCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show full display descriptors and host platform")
	openCmd.Flags().IntVar(&fpsOverride, "fps", 0, "capture frame rate (overrides target_fps)")

	rootCmd.AddCommand(displaysCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads and validates config, then installs the configured logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, warnings, err := loadConfig()
	if err != nil {
		return err
	}

	w, rw, err := logging.OpenOutput(loaded.LogFile, loaded.LogMaxSizeMB, loaded.LogMaxBackups)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logging.Init(loaded.LogFormat, loaded.LogLevel, w)
	for _, warning := range warnings {
		log.Warn("config validation", logging.KeyError, warning)
	}

	cfg = loaded
	logFile = rw
	cmd.SetContext(logging.NewContext(cmd.Context(), log.With("command", cmd.Name())))
	return nil
}

// loadConfig reads the config file, applies command-line overrides and
// validates the result. Warnings are returned for logging once the logger
// is configured.
func loadConfig() (*config.Config, []error, error) {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if outputFormat != "" {
		loaded.OutputFormat = outputFormat
	}
	if fpsOverride > 0 {
		loaded.TargetFPS = fpsOverride
	}

	result := loaded.ValidateTiered()
	if result.HasFatals() {
		return nil, nil, fmt.Errorf("invalid config: %w", errors.Join(result.Fatals...))
	}
	return loaded, result.Warnings, nil
}

// selectorArg returns the selector given on the command line, falling back
// to output_name from config.
func selectorArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.OutputName
}
