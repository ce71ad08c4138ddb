// Command gs-sweep runs the Gray-Scott model over a grid of feed and kill
// rates and ranks the outcomes by how much pattern they leave behind.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"grayscott/internal/colormap"
	"grayscott/internal/driver"
	"grayscott/internal/sims/grayscott"
)

// axis is an inclusive range sampled at n evenly spaced points.
type axis struct {
	lo, hi float64
	n      int
}

func (a axis) values() []float64 {
	if a.n <= 1 {
		return []float64{a.lo}
	}
	out := make([]float64, a.n)
	floats.Span(out, a.lo, a.hi)
	return out
}

type scenario struct {
	row, col int
	f, k     float64
}

type result struct {
	scenario
	vMean, vStd float64
	uMin, uMax  float64
	v           []float64
}

// activity is the spread of V relative to its mean: zero for a uniform field.
func (r result) activity() float64 {
	if r.vMean <= 0 {
		return 0
	}
	return r.vStd / r.vMean
}

type options struct {
	base    grayscott.Config
	fAxis   axis
	kAxis   axis
	workers int
	top     int
	mosaic  string
	cmap    string
	tile    int
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("gs-sweep: ")

	base := grayscott.DefaultConfig()
	base.Rows, base.Cols = 64, 64
	base.Steps = 2000
	base.ReportEvery = 0

	opts := options{base: base}
	flag.IntVar(&opts.base.Rows, "rows", base.Rows, "grid rows per run")
	flag.IntVar(&opts.base.Cols, "cols", base.Cols, "grid columns per run")
	flag.IntVar(&opts.base.Steps, "steps", base.Steps, "steps per run")
	flag.Int64Var(&opts.base.Seed, "seed", base.Seed, "seed shared by every run")
	flag.StringVar(&opts.base.Method, "method", base.Method, "laplacian method")
	flag.Float64Var(&opts.fAxis.lo, "f-min", 0.01, "lowest feed rate")
	flag.Float64Var(&opts.fAxis.hi, "f-max", 0.06, "highest feed rate")
	flag.IntVar(&opts.fAxis.n, "f-steps", 6, "feed rate samples")
	flag.Float64Var(&opts.kAxis.lo, "k-min", 0.045, "lowest kill rate")
	flag.Float64Var(&opts.kAxis.hi, "k-max", 0.07, "highest kill rate")
	flag.IntVar(&opts.kAxis.n, "k-steps", 6, "kill rate samples")
	flag.IntVar(&opts.workers, "workers", runtime.NumCPU(), "number of concurrent runs")
	flag.IntVar(&opts.top, "top", 10, "rows of the ranked table to print")
	flag.StringVar(&opts.mosaic, "mosaic", "", "write a PNG mosaic of the final V fields (F down, k across)")
	flag.StringVar(&opts.cmap, "cmap", "viridis", "colour map for the mosaic")
	flag.IntVar(&opts.tile, "tile", 1, "pixels per cell in the mosaic")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Sweeping %dx%d F/k grid (%d workers, %d steps, %dx%d cells)\n",
		len(opts.fAxis.values()), len(opts.kAxis.values()), opts.workers, opts.base.Steps, opts.base.Rows, opts.base.Cols)

	start := time.Now()
	results, err := sweep(ctx, opts)
	if err != nil {
		log.Fatal(err)
	}
	printTable(os.Stdout, rank(results), opts.top, time.Since(start))

	if opts.mosaic != "" {
		if err := writeMosaic(opts, results); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nMosaic written to %s\n", opts.mosaic)
	}
}

func scenarios(fAxis, kAxis axis) []scenario {
	var out []scenario
	for i, f := range fAxis.values() {
		for j, k := range kAxis.values() {
			out = append(out, scenario{row: i, col: j, f: f, k: k})
		}
	}
	return out
}

// sweep runs every scenario with at most opts.workers in flight. Results are
// returned in scenario order.
func sweep(ctx context.Context, opts options) ([]result, error) {
	if err := opts.base.Validate(); err != nil {
		return nil, err
	}
	jobs := scenarios(opts.fAxis, opts.kAxis)
	results := make([]result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.workers, 1))
	for i, sc := range jobs {
		g.Go(func() error {
			res, err := runScenario(ctx, opts.base, sc)
			if err != nil {
				return fmt.Errorf("F=%.4f k=%.4f: %w", sc.f, sc.k, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runScenario(ctx context.Context, base grayscott.Config, sc scenario) (result, error) {
	cfg := base
	cfg.Params.F, cfg.Params.K = sc.f, sc.k
	model, err := grayscott.New(cfg)
	if err != nil {
		return result{}, err
	}
	d := driver.New(model, driver.WithReportEvery(0))
	if err := d.Run(ctx); err != nil {
		return result{}, err
	}
	snap := d.Snapshot()
	mean, std := stat.MeanStdDev(snap.V, nil)
	u := snap.UStats()
	return result{scenario: sc, vMean: mean, vStd: std, uMin: u.Min, uMax: u.Max, v: snap.V}, nil
}

// rank orders results by descending activity, breaking ties by F then k.
func rank(results []result) []result {
	out := append([]result(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].activity(), out[j].activity()
		if ai != aj {
			return ai > aj
		}
		if out[i].f != out[j].f {
			return out[i].f < out[j].f
		}
		return out[i].k < out[j].k
	})
	return out
}

func printTable(w io.Writer, ranked []result, top int, elapsed time.Duration) {
	fmt.Fprintf(w, "\nTop %d results (elapsed %s):\n", min(top, len(ranked)), elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "%4s  %-8s %-8s %-10s %-10s %-10s %-10s\n", "#", "F", "k", "activity", "V mean", "U min", "U max")
	for i := 0; i < len(ranked) && i < top; i++ {
		r := ranked[i]
		fmt.Fprintf(w, "%3d)  %-8.4f %-8.4f %-10.4f %-10.4f %-10.4f %-10.4f\n",
			i+1, r.f, r.k, r.activity(), r.vMean, r.uMin, r.uMax)
	}
}

// mosaic tiles the final V fields with F increasing downwards and k to the
// right, all drawn against one colour range.
func mosaic(opts options, results []result) (*image.RGBA, error) {
	cmap, err := colormap.ByName(opts.cmap)
	if err != nil {
		return nil, err
	}
	hi := 0.0
	for _, r := range results {
		if len(r.v) > 0 {
			hi = max(hi, floats.Max(r.v))
		}
	}
	cmap = cmap.WithRange(0, hi)

	rows, cols := opts.base.Rows, opts.base.Cols
	scale := max(opts.tile, 1)
	tw, th := cols*scale, rows*scale
	const gap = 2
	nf, nk := len(opts.fAxis.values()), len(opts.kAxis.values())
	canvas := image.NewRGBA(image.Rect(0, 0, nk*(tw+gap)-gap, nf*(th+gap)-gap))
	for _, r := range results {
		tile, err := cmap.Image(r.v, rows, cols, scale)
		if err != nil {
			return nil, err
		}
		at := image.Pt(r.col*(tw+gap), r.row*(th+gap))
		draw.Draw(canvas, tile.Bounds().Add(at), tile, image.Point{}, draw.Src)
	}
	return canvas, nil
}

func writeMosaic(opts options, results []result) (err error) {
	img, err := mosaic(opts, results)
	if err != nil {
		return err
	}
	file, err := os.Create(opts.mosaic)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(file, img)
}
