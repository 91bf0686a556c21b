package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/leafmeter/internal/analysis"
	"github.com/ironsheep/leafmeter/internal/imaging"
	"github.com/ironsheep/leafmeter/internal/report"
)

// errSomeFailed is returned when at least one image could not be analysed.
var errSomeFailed = errors.New("some images could not be analysed")

type analyzeFlags struct {
	area      float64
	overlay   string
	chart     string
	config    string
	workers   int
	centroids bool
}

func runAnalyze(args []string, debug bool) error {
	var f analyzeFlags
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.Float64Var(&f.area, "area", 0, "real-world area of the reference square (default from config, 1.0)")
	fs.StringVar(&f.overlay, "overlay", "", "write the annotated image to this PNG file")
	fs.StringVar(&f.chart, "chart", "", "write a chart of the leaf metrics to this PNG file")
	fs.StringVar(&f.config, "config", "", "JSON configuration file")
	fs.IntVar(&f.workers, "workers", runtime.NumCPU(), "number of images analysed in parallel")
	fs.BoolVar(&f.centroids, "centroids", false, "include leaf centroids (cx, cy) in the output")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: leafmeter analyze [options] image...")
		fmt.Fprintln(fs.Output(), "\nPrints one JSON record per image, in argument order.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		fs.Usage()
		return errors.New("no images given")
	}
	if f.workers < 1 {
		return fmt.Errorf("-workers must be at least 1, got %d", f.workers)
	}

	a, err := newAnalyzer(f.config, debug)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputs := analyzeAll(ctx, a, paths, f)

	enc := json.NewEncoder(os.Stdout)
	failed := false
	for _, out := range outputs {
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		if _, ok := out.(analysis.ErrorRecord); ok {
			failed = true
		}
	}
	if failed {
		return errSomeFailed
	}
	return nil
}

// analyzeAll runs every image through the analyzer on a bounded worker pool
// and returns one record or error record per path, in input order.
func analyzeAll(ctx context.Context, a *analysis.Analyzer, paths []string, f analyzeFlags) []any {
	outputs := make([]any, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outputs[i] = analysis.NewErrorRecord(err)
				return nil
			}
			outputs[i] = analyzeOne(a, path, len(paths), f)
			return nil
		})
	}
	_ = g.Wait()
	return outputs
}

func analyzeOne(a *analysis.Analyzer, path string, n int, f analyzeFlags) any {
	defer a.Cache().Evict(path)

	rep, err := a.AnalyzeFile(path, analysis.RunOptions{ReferenceArea: f.area})
	if err != nil {
		log.Printf("%s: %v", path, err)
		return analysis.NewErrorRecord(err)
	}

	if f.overlay != "" {
		if err := writeOverlay(a, path, rep, outputPath(f.overlay, path, n)); err != nil {
			log.Printf("%s: %v", path, err)
		}
	}
	if f.chart != "" && rep.Result.NumberOfLeaves > 0 {
		if err := report.WriteChart(outputPath(f.chart, path, n), rep.Result); err != nil {
			log.Printf("%s: %v", path, err)
		}
	}

	p := a.Config().Pipeline
	return rep.Record(p.RoundLeafMetrics, f.centroids || p.IncludeCentroids)
}

// writeOverlay renders the annotated image for rep and saves it as PNG.
func writeOverlay(a *analysis.Analyzer, src string, rep *analysis.Report, dst string) error {
	img, err := a.Cache().Load(src)
	if err != nil {
		return err
	}
	annotated, err := imaging.RenderOverlay(img, rep.Leaves, rep.Squares, a.Config().Overlay)
	if err != nil {
		return fmt.Errorf("failed to render overlay: %w", err)
	}
	if err := imgio.Save(dst, annotated, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

// outputPath returns target unchanged for a single input image. With several
// inputs the input's base name is appended, so "out.png" for "a.jpg" becomes
// "out-a.png".
func outputPath(target, input string, n int) string {
	if n <= 1 {
		return target
	}
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return strings.TrimSuffix(target, ext) + "-" + stem + ext
}
