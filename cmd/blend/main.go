// Package main provides the Blend CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"

	"github.com/syfxie/Blend/backend/cpu"
	"github.com/syfxie/Blend/gram"
	"github.com/syfxie/Blend/tensor"
	"gonum.org/v1/gonum/mat"
)

const version = "v0.1.0"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("blend: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "Blend %s\n", version)
		return nil
	case "example":
		return runExample(args[1:], stdout, stderr)
	case "random":
		return runRandom(args[1:], stdout, stderr)
	default:
		usage(stdout)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Blend - Gram matrices for neural style transfer")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  example    Gram matrix of a 2x2 two-channel feature map")
	fmt.Fprintln(w, "  random     Gram matrix of a random feature map")
}

// runExample prints the normalized Gram matrix of a fixed (1, 2, 2, 2) input.
func runExample(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("example", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Log intermediate shapes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backend := cpu.New()
	x, err := tensor.FromSlice([]float64{
		1, 0, 0, 1,
		0, 1, 1, 0,
	}, tensor.Shape{1, 2, 2, 2}, backend)
	if err != nil {
		return err
	}

	g, err := gram.Compute(x, config(true, *verbose, stderr))
	if err != nil {
		return err
	}
	return printGram(stdout, g)
}

// runRandom prints the Gram matrices of a seeded N(0, 1) feature map.
func runRandom(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("random", flag.ContinueOnError)
	fs.SetOutput(stderr)
	batch := fs.Int("batch", 1, "Batch size")
	height := fs.Int("height", 4, "Feature map height")
	width := fs.Int("width", 4, "Feature map width")
	channels := fs.Int("channels", 3, "Number of channels")
	seed := fs.Int64("seed", 1, "Random seed")
	raw := fs.Bool("raw", false, "Skip division by height*width")
	sequential := fs.Bool("sequential", false, "Run CPU kernels on a single goroutine")
	verbose := fs.Bool("v", false, "Log intermediate shapes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	shape := tensor.Shape{*batch, *height, *width, *channels}
	if err := shape.Validate(); err != nil {
		return err
	}

	backend := cpu.New()
	if *sequential {
		backend = cpu.NewWithConfig(cpu.Sequential())
	}
	x := tensor.Randn[float64](shape, rand.New(rand.NewSource(*seed)), backend)

	g, err := gram.Compute(x, config(!*raw, *verbose, stderr))
	if err != nil {
		return err
	}
	return printGram(stdout, g)
}

func config(normalize, verbose bool, stderr io.Writer) gram.Config {
	cfg := gram.Config{Normalize: normalize}
	if verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return cfg
}

func printGram(w io.Writer, g *tensor.Tensor[float64, *cpu.Backend]) error {
	for b := 0; b < g.Shape()[0]; b++ {
		sym, err := gram.SymDense(g, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "G[%d] =\n%.4g\n", b, mat.Formatted(sym))
	}
	return nil
}
