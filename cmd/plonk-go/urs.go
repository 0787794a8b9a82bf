package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marlinplonk/plonk-go/pkg/plonk/urs"
)

var (
	ursFile string
	ursSize int
	ursSeed string
)

var ursCmd = &cobra.Command{
	Use:   "urs",
	Short: "Manage universal reference strings",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

var ursGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a URS and write it to --urs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := selectedCurve()
		if err != nil {
			return err
		}
		var u *urs.URS
		if ursSeed != "" {
			u, err = urs.Deterministic(cmd.Context(), c, ursSize, []byte(ursSeed))
		} else {
			u, err = urs.Generate(cmd.Context(), c, ursSize)
		}
		if err != nil {
			return err
		}
		defer u.Free()
		if err := u.WriteFile(ursFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s URS of %d points to %s\n", c, u.Size(), ursFile)
		return nil
	},
}

var ursInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the curve and size of the URS in --urs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := selectedCurve()
		if err != nil {
			return err
		}
		u, err := urs.ReadFile(c, ursFile)
		if err != nil {
			return err
		}
		defer u.Free()
		fmt.Fprintf(cmd.OutOrStdout(), "curve: %s\nsize: %d\nmax degree: %d\n", u.Curve(), u.Size(), u.Size()-1)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ursCmd)
	ursCmd.AddCommand(ursGenerateCmd, ursInspectCmd)

	ursCmd.PersistentFlags().StringVar(&ursFile, "urs", "urs.bin", "The URS file.")
	ursGenerateCmd.Flags().IntVar(&ursSize, "size", 1<<10, "Number of G1 powers, the maximum degree plus one.")
	ursGenerateCmd.Flags().StringVar(&ursSeed, "seed", "", "Derive the setup secret from this seed. Such a URS is reproducible and unsound; use it for tests only.")
}
