package cmd

import (
	"errors"
	"fmt"

	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/spf13/cobra"
)

func newLegacyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Resolve one 16-bit address through the legacy table.",
		Args:  cobra.NoArgs,
		RunE:  runLegacy,
	}

	addImageFlag(cmd)
	cmd.Flags().String("va", "", "16-bit virtual address, e.g. 0x1234")

	return cmd
}

func runLegacy(cmd *cobra.Command, _ []string) error {
	_, sys, err := loadImage(cmd)
	if err != nil {
		return err
	}

	if sys.Mode != mmu.ModeLegacy {
		return errors.New("image is not laid out for legacy mode")
	}

	vaStr, _ := cmd.Flags().GetString("va")
	va, err := parseAddress(vaStr, 16)
	if err != nil {
		return err
	}

	translator := mmu.MakeBuilder().
		WithMemory(sys.Memory).
		BuildLegacy("MMU")

	res := translator.Resolve(sys.Registers.Snapshot(), uint16(va))
	fmt.Fprintf(cmd.OutOrStdout(), "0x%04x: %s\n", va, res)

	return nil
}
