package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marlinplonk/plonk-go/pkg/plonk/index"
	"github.com/marlinplonk/plonk-go/pkg/plonk/urs"
)

var (
	circuitFile        string
	provingIndexFile   string
	verifyingIndexFile string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage proving and verifying indices",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build indices for the JSON constraint description in --circuit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := selectedCurve()
		if err != nil {
			return err
		}
		doc, err := os.ReadFile(circuitFile) // #nosec G304 -- checked by checkPaths
		if err != nil {
			return fmt.Errorf("read circuit: %w", err)
		}
		cs, err := index.ParseConstraintSystem(doc)
		if err != nil {
			return err
		}
		u, err := urs.ReadFile(c, ursFile)
		if err != nil {
			return err
		}
		pi, err := index.Build(cmd.Context(), u, cs)
		u.Free()
		if err != nil {
			return err
		}
		defer pi.Free()
		vi, err := pi.VerifyingIndex()
		if err != nil {
			return err
		}
		defer vi.Free()
		if err := pi.WriteFile(provingIndexFile); err != nil {
			return err
		}
		if err := vi.WriteFile(verifyingIndexFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", provingIndexFile, verifyingIndexFile)
		return nil
	},
}

var indexInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the shape of the verifying index in --vi",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := selectedCurve()
		if err != nil {
			return err
		}
		vi, err := index.ReadVerifyingIndex(c, verifyingIndexFile)
		if err != nil {
			return err
		}
		defer vi.Free()
		info, err := vi.Info()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			CurveName string `json:"curve_name"`
			index.Info
		}{info.Curve.String(), info})
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexBuildCmd, indexInspectCmd)

	indexCmd.PersistentFlags().StringVar(&provingIndexFile, "pi", "index.pi", "The proving index file.")
	indexCmd.PersistentFlags().StringVar(&verifyingIndexFile, "vi", "index.vi", "The verifying index file.")
	indexBuildCmd.Flags().StringVar(&circuitFile, "circuit", "", "The JSON constraint description.")
	indexBuildCmd.Flags().StringVar(&ursFile, "urs", "urs.bin", "The URS file.")
	_ = indexBuildCmd.MarkFlagRequired("circuit")
}
