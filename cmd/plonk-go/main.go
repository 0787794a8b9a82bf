package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/marlinplonk/plonk-go/pkg/plonk"
	"github.com/marlinplonk/plonk-go/pkg/plonk/curve"
)

var (
	configFile string
	curveName  string
	verbose    bool

	lib *plonk.Library
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "JSON configuration file.")
	rootCmd.PersistentFlags().StringVar(&curveName, "curve", "", "Curve configuration, for example bn254 or bls12-381. Defaults to the configured curve, then BN254.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output, including gnark's, to stderr.")
	cobra.OnFinalize(closeLibrary)
}

func closeLibrary() {
	if lib == nil {
		return
	}
	if err := lib.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close: %v\n", err)
	}
	lib = nil
}

var rootCmd = &cobra.Command{
	Use:           "plonk-go",
	Short:         "Generate reference strings, build indices, prove and verify PLONK statements",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := checkPaths(); err != nil {
			return err
		}
		cfg := plonk.Config{}
		if configFile != "" {
			loaded, err := plonk.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = *loaded
		}
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
			cfg.GnarkLogs = true
		}
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		var err error
		lib, err = plonk.Open(cfg)
		return err
	},
}

// selectedCurve resolves the --curve flag against the configuration.
func selectedCurve() (curve.Curve, error) {
	name := curveName
	if name == "" && lib != nil {
		name = lib.Config().DefaultCurve
	}
	if name == "" {
		return curve.BN254, nil
	}
	return curve.Parse(name)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
