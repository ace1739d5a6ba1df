package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/scramble.go/pkg/keyfile"
	"github.com/jpfielding/scramble.go/pkg/scramble"
)

// NewKeyCmd writes the permutation for a size and salt to a key file
func NewKeyCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key <WIDTHxHEIGHT>",
		Short: "write a permutation key file",
		Long:  "Generates the pixel permutation for an image size and salt and stores it zstd-compressed, for use with unscramble --key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seedText, _ := cmd.Flags().GetString("seed")
			out, _ := cmd.Flags().GetString("out")

			width, height, err := parseSize(args[0])
			if err != nil {
				return err
			}
			if seedText == "" {
				return fmt.Errorf("%w: --seed is required", ErrInput)
			}
			seed, err := parseSeed(seedText)
			if err != nil {
				return err
			}
			if out == "" {
				return fmt.Errorf("%w: --out is required", ErrInput)
			}
			perm, err := scramble.NewPermutation(width, height, seed)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInput, err)
			}
			if err := checkCtx(ctx); err != nil {
				return err
			}
			if err := keyfile.WriteFile(out, perm); err != nil {
				return fmt.Errorf("write key: %w", err)
			}
			slog.InfoContext(ctx, "wrote key file", "path", out, "key", keyfile.ID(perm), "pixels", perm.Len())
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("seed", "s", "", "salt, an unsigned 32-bit integer")
	pf.StringP("out", "o", "", "key file path")
	return cmd
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	w, werr := strconv.Atoi(ws)
	h, herr := strconv.Atoi(hs)
	if !ok || werr != nil || herr != nil || w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("%w: size %q must look like 640x480", ErrInput, s)
	}
	return w, h, nil
}
