package cmd

import (
	"errors"
	"fmt"

	"github.com/sarchlab/mmusim/config"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one 32-bit address with a protected-mode walk.",
		Args:  cobra.NoArgs,
		RunE:  runResolve,
	}

	addImageFlag(cmd)
	cmd.Flags().String("va", "", "32-bit virtual address, e.g. 0x01020340")
	cmd.Flags().String("access", "read", "Access intent: read, write or execute")
	cmd.Flags().Bool("privileged", false,
		"Resolve in privileged mode (default from the image)")
	cmd.Flags().String("space", "", "Address space to resolve in")

	return cmd
}

func runResolve(cmd *cobra.Command, _ []string) error {
	_, sys, err := loadImage(cmd)
	if err != nil {
		return err
	}

	if sys.Mode != mmu.ModeProtected {
		return errors.New("image is not laid out for protected mode")
	}

	vaStr, _ := cmd.Flags().GetString("va")
	va, err := parseAddress(vaStr, 32)
	if err != nil {
		return err
	}

	accessStr, _ := cmd.Flags().GetString("access")
	access, err := vm.ParseAccessIntent(accessStr)
	if err != nil {
		return err
	}

	space, _ := cmd.Flags().GetString("space")
	if space != "" {
		if err := sys.Apply(config.Request{Switch: space}); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("privileged") {
		privileged, _ := cmd.Flags().GetBool("privileged")
		sys.Registers.SetPrivileged(privileged)
	}

	translator := mmu.MakeBuilder().
		WithMemory(sys.Memory).
		BuildProtected("MMU")

	res := translator.Resolve(sys.Registers.Snapshot(), va, access)
	fmt.Fprintf(cmd.OutOrStdout(), "0x%08x %s: %s\n", va, access, res)

	return nil
}
