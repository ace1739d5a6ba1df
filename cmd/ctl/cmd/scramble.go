package cmd

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/scramble.go/pkg/imageio"
	"github.com/jpfielding/scramble.go/pkg/keyfile"
	"github.com/jpfielding/scramble.go/pkg/scramble"
)

// NewScrambleCmd scrambles an image with a salt
func NewScrambleCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scramble <image>",
		Short: "shuffle the pixels of an image",
		Long:  "Shuffles the pixels of an image with the salt and writes <name>-scrambled.png unless --out is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seedText, _ := cmd.Flags().GetString("seed")
			out, _ := cmd.Flags().GetString("out")
			if seedText == "" {
				return fmt.Errorf("%w: --seed is required", ErrInput)
			}
			seed, err := parseSeed(seedText)
			if err != nil {
				return err
			}
			if out == "" {
				base, err := imageio.Basename(args[0])
				if err != nil {
					return fmt.Errorf("%w: %w", ErrInput, err)
				}
				out = imageio.ScrambledPath(base)
			}
			return runScramble(ctx, args[0], out, seed)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("seed", "s", "", "salt, an unsigned 32-bit integer")
	pf.StringP("out", "o", "", "output PNG path")
	return cmd
}

// NewUnscrambleCmd restores an image scrambled with the same salt or key file
func NewUnscrambleCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unscramble <image>",
		Short: "restore a scrambled image",
		Long:  "Reverses scramble using the same salt, or a key file written by the key command, and writes <name>-unscrambled.png unless --out is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seedText, _ := cmd.Flags().GetString("seed")
			keyPath, _ := cmd.Flags().GetString("key")
			out, _ := cmd.Flags().GetString("out")

			var perm *scramble.Permutation
			var seed uint32
			switch {
			case keyPath != "":
				p, err := keyfile.ReadFile(keyPath)
				if err != nil {
					return fmt.Errorf("read key: %w", err)
				}
				perm = p
			case seedText != "":
				s, err := parseSeed(seedText)
				if err != nil {
					return err
				}
				seed = s
			default:
				return fmt.Errorf("%w: --seed or --key is required", ErrInput)
			}
			if out == "" {
				base, err := imageio.Basename(args[0])
				if err != nil {
					return fmt.Errorf("%w: %w", ErrInput, err)
				}
				out = imageio.UnscrambledPath(base)
			}
			return runUnscramble(ctx, args[0], out, seed, perm)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("seed", "s", "", "salt used to scramble")
	pf.StringP("key", "k", "", "key file to use instead of the salt")
	pf.StringP("out", "o", "", "output PNG path")
	return cmd
}

func runScramble(ctx context.Context, in, out string, seed uint32) error {
	img, format, err := imageio.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return scrambleTo(ctx, img, format, in, out, seed)
}

func scrambleTo(ctx context.Context, img *image.NRGBA, format, in, out string, seed uint32) error {
	perm, err := scramble.NewPermutation(img.Rect.Dx(), img.Rect.Dy(), seed)
	if err != nil {
		return fmt.Errorf("scramble: %w", err)
	}
	scrambled, err := perm.Scramble(img)
	if err != nil {
		return fmt.Errorf("scramble: %w", err)
	}
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := imageio.WriteFile(out, scrambled); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	slog.InfoContext(ctx, "scrambled image",
		slog.String("in", in),
		slog.String("format", format),
		slog.String("out", out),
		slog.String("key", keyfile.ID(perm)))
	return nil
}

// runUnscramble derives the permutation from seed unless perm is given.
func runUnscramble(ctx context.Context, in, out string, seed uint32, perm *scramble.Permutation) error {
	img, format, err := imageio.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return unscrambleTo(ctx, img, format, in, out, seed, perm)
}

func unscrambleTo(ctx context.Context, img *image.NRGBA, format, in, out string, seed uint32, perm *scramble.Permutation) error {
	if perm == nil {
		var err error
		perm, err = scramble.NewPermutation(img.Rect.Dx(), img.Rect.Dy(), seed)
		if err != nil {
			return fmt.Errorf("unscramble: %w", err)
		}
	}
	restored, err := perm.Unscramble(img)
	if err != nil {
		return fmt.Errorf("unscramble: %w", err)
	}
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := imageio.WriteFile(out, restored); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	slog.InfoContext(ctx, "unscrambled image",
		slog.String("in", in),
		slog.String("format", format),
		slog.String("out", out),
		slog.String("key", keyfile.ID(perm)))
	return nil
}

// runInteractive asks for the mode and the salt, one line each.
// e scrambles path; d restores <name>.png. Anything else writes nothing.
// The source image is loaded before the salt is asked for, so a missing or
// unreadable file fails at once.
func runInteractive(ctx context.Context, path string, in io.Reader, out io.Writer) error {
	base, err := imageio.Basename(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInput, err)
	}
	sc := bufio.NewScanner(in)

	fmt.Fprintln(out, "Encode or decode? (e/d)")
	mode := readLine(sc)
	var src, dst string
	switch mode {
	case "e":
		src, dst = path, imageio.ScrambledPath(base)
	case "d":
		src, dst = imageio.EncodedPath(base), imageio.UnscrambledPath(base)
	default:
		fmt.Fprintln(out, "Invalid input")
		return nil
	}

	img, format, err := imageio.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	fmt.Fprintln(out, "Salt (integer):")
	seed, err := parseSeed(readLine(sc))
	if err != nil {
		return err
	}

	if mode == "e" {
		err = scrambleTo(ctx, img, format, src, dst, seed)
	} else {
		err = unscrambleTo(ctx, img, format, src, dst, seed, nil)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Wrote", dst)
	return nil
}

func readLine(sc *bufio.Scanner) string {
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}
