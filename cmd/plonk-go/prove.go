package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marlinplonk/plonk-go/pkg/plonk/curve"
	"github.com/marlinplonk/plonk-go/pkg/plonk/index"
	"github.com/marlinplonk/plonk-go/pkg/plonk/proof"
	"github.com/marlinplonk/plonk-go/pkg/plonk/vector"
)

var (
	proofFile     string
	witnessValues string
)

// parseVector reads comma-separated decimal or 0x-prefixed values into a
// vector.
func parseVector(c curve.Curve, list string) (*vector.Vector, error) {
	var vals []string
	if strings.TrimSpace(list) != "" {
		vals = strings.Split(list, ",")
	}
	ints := make([]*big.Int, len(vals))
	for i, s := range vals {
		v, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
		if !ok {
			return nil, fmt.Errorf("value %d is not a number", i)
		}
		ints[i] = v
	}
	return vector.FromBigInts(c, ints)
}

var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "Prove that --witness satisfies the proving index in --pi",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := selectedCurve()
		if err != nil {
			return err
		}
		pi, err := index.ReadProvingIndex(c, provingIndexFile)
		if err != nil {
			return err
		}
		defer pi.Free()
		w, err := parseVector(c, witnessValues)
		if err != nil {
			return err
		}
		defer w.Free()
		p, err := proof.Prove(cmd.Context(), pi, w)
		if err != nil {
			return err
		}
		defer p.Free()
		if err := p.WriteFile(proofFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", proofFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(proveCmd)
	proveCmd.Flags().StringVar(&provingIndexFile, "pi", "index.pi", "The proving index file.")
	proveCmd.Flags().StringVar(&proofFile, "proof", "proof.bin", "The proof output file.")
	proveCmd.Flags().StringVar(&witnessValues, "witness", "", "Comma-separated witness values, public inputs first.")
	_ = proveCmd.MarkFlagRequired("witness")
}
