package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/marlinplonk/plonk-go/pkg/plonk/index"
	"github.com/marlinplonk/plonk-go/pkg/plonk/oracle"
	"github.com/marlinplonk/plonk-go/pkg/plonk/proof"
)

var (
	publicValues string
	reportFile   string
)

var errRejected = errors.New("proof rejected")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the proof in --proof against --vi and --public",
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
		p, err := proof.ReadFile(c, proofFile)
		if err != nil {
			return err
		}
		defer p.Free()
		public, err := parseVector(c, publicValues)
		if err != nil {
			return err
		}
		defer public.Free()

		r, err := oracle.Compute(vi, p, public)
		if err != nil {
			return err
		}
		defer r.Free()
		rep, err := r.Report()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
		if reportFile != "" {
			data, err := r.MarshalCBOR()
			if err != nil {
				return err
			}
			if err := os.WriteFile(reportFile, data, 0o600); err != nil {
				return err
			}
		}
		if !rep.Accepted {
			return errRejected
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyingIndexFile, "vi", "index.vi", "The verifying index file.")
	verifyCmd.Flags().StringVar(&proofFile, "proof", "proof.bin", "The proof file.")
	verifyCmd.Flags().StringVar(&publicValues, "public", "", "Comma-separated public input values.")
	verifyCmd.Flags().StringVar(&reportFile, "report", "", "Also write the oracle result as CBOR to this file.")
}
