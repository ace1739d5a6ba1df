package cmd

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpfielding/scramble.go/pkg/imageio"
	"github.com/jpfielding/scramble.go/pkg/util"
)

// NewAnalyzeCmd creates the analyze cobra command
func NewAnalyzeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Describe an image and optionally compare it to another",
		Long:  "Prints the format, size and pixel digest of an image. With --against, reports how many pixels differ, which is how a round trip is checked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			against, _ := cmd.Flags().GetString("against")

			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}

			if filePath == "" {
				return fmt.Errorf("%w: file path is required. Use --file flag or provide as argument", ErrInput)
			}

			return runAnalyze(cmd.OutOrStdout(), filePath, against)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "image file path to analyze")
	pf.StringP("against", "a", "", "second image to compare pixel by pixel")

	return cmd
}

// runAnalyze prints a summary of filePath and, if set, a diff against otherPath
func runAnalyze(w io.Writer, filePath, otherPath string) error {
	img, format, err := imageio.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	printSummary(w, filePath, format, img)

	if otherPath == "" {
		return nil
	}
	other, otherFormat, err := imageio.ReadFile(otherPath)
	if err != nil {
		return fmt.Errorf("read comparison: %w", err)
	}
	fmt.Fprintln(w)
	printSummary(w, otherPath, otherFormat, other)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Comparison ===")
	if img.Bounds().Size() != other.Bounds().Size() {
		fmt.Fprintf(w, "Different sizes: %v vs %v\n", img.Bounds().Size(), other.Bounds().Size())
		return nil
	}
	diff := countDiff(img, other)
	if diff == 0 {
		fmt.Fprintln(w, "Identical pixels")
		return nil
	}
	total := img.Rect.Dx() * img.Rect.Dy()
	fmt.Fprintf(w, "Differing pixels: %d of %d (%.2f%%)\n", diff, total, 100*float64(diff)/float64(total))
	return nil
}

func printSummary(w io.Writer, path, format string, img *image.NRGBA) {
	fmt.Fprintf(w, "=== %s ===\n", path)
	fmt.Fprintf(w, "Format: %s\n", format)
	fmt.Fprintf(w, "Width: %d\n", img.Rect.Dx())
	fmt.Fprintf(w, "Height: %d\n", img.Rect.Dy())
	fmt.Fprintf(w, "Opaque: %v\n", img.Opaque())
	fmt.Fprintf(w, "Pixel MD5: %s\n", util.PixelDigest(img))
}

// countDiff counts pixels that differ between two images of the same size.
func countDiff(a, b *image.NRGBA) int {
	n := 0
	for y := 0; y < a.Rect.Dy(); y++ {
		for x := 0; x < a.Rect.Dx(); x++ {
			i := a.PixOffset(a.Rect.Min.X+x, a.Rect.Min.Y+y)
			j := b.PixOffset(b.Rect.Min.X+x, b.Rect.Min.Y+y)
			if string(a.Pix[i:i+4]) != string(b.Pix[j:j+4]) {
				n++
			}
		}
	}
	return n
}
