// Package cmd provides the command-line interface for mmusim.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/mmusim/config"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Environment variables that supply flag defaults. They can be set in a
// .env file in the working directory.
const (
	EnvImage       = "MMUSIM_IMAGE"
	EnvRecord      = "MMUSIM_RECORD"
	EnvMonitorPort = "MMUSIM_MONITOR_PORT"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mmusim",
		Short: "mmusim translates virtual addresses the way the MMU does.",
		Long: `mmusim translates virtual addresses the way the MMU does. ` +
			`It loads page tables from a YAML memory image and resolves ` +
			`single addresses or replays the requests listed in the image.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newLegacyCmd(),
		newResolveCmd(),
		newReplayCmd(),
		newRecordsCmd(),
	)

	return rootCmd
}

// Execute loads .env defaults, runs the command line and exits. Functions
// registered with atexit run before the process ends.
func Execute() {
	loadEnv()

	err := newRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Cannot load .env: %v\n", err)
	}
}

func addImageFlag(cmd *cobra.Command) {
	cmd.Flags().String("image", "",
		"Memory image to load (default $"+EnvImage+")")
}

// stringFlagOrEnv returns the flag value if set on the command line, or the
// environment variable otherwise.
func stringFlagOrEnv(cmd *cobra.Command, flag, env string) string {
	value, _ := cmd.Flags().GetString(flag)
	if value != "" {
		return value
	}

	return os.Getenv(env)
}

func intFlagOrEnv(cmd *cobra.Command, flag, env string) (int, error) {
	value, _ := cmd.Flags().GetInt(flag)
	if cmd.Flags().Changed(flag) {
		return value, nil
	}

	s := os.Getenv(env)
	if s == "" {
		return value, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", env, err)
	}

	return v, nil
}

func loadImage(cmd *cobra.Command) (*config.Image, *config.System, error) {
	path := stringFlagOrEnv(cmd, "image", EnvImage)
	if path == "" {
		return nil, nil, fmt.Errorf("no memory image, use --image or $%s",
			EnvImage)
	}

	img, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	sys, err := img.Build()
	if err != nil {
		return nil, nil, err
	}

	return img, sys, nil
}

func parseAddress(s string, bits int) (uint32, error) {
	if s == "" {
		return 0, errors.New("no address, use --va")
	}

	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}

	return uint32(v), nil
}
