// Command gs-run integrates the Gray-Scott model headlessly and exports the
// result.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"grayscott/internal/colormap"
	"grayscott/internal/driver"
	"grayscott/internal/export"
	"grayscott/internal/sims/grayscott"
	"grayscott/internal/stream"
)

type kvList []string

func (l *kvList) String() string { return strings.Join(*l, ",") }

func (l *kvList) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	*l = append(*l, value)
	return nil
}

func (l kvList) Map() map[string]string {
	out := make(map[string]string, len(l))
	for _, kv := range l {
		k, v, _ := strings.Cut(kv, "=")
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

type outputs struct {
	dir   string
	png   string
	text  string
	gif   string
	avi   string
	chart string

	field string
	cmap  string
	scale int
	fps   int
	serve string
	hold  bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("gs-run: ")

	flagged := grayscott.DefaultConfig()
	flagged.Bind(flag.CommandLine)

	var out outputs
	configPath := flag.String("config", "", "JSON settings file applied before flags")
	preset := flag.String("preset", "", "named F/k preset applied before flags")
	quiet := flag.Bool("quiet", false, "suppress progress output")
	verbose := flag.Bool("verbose", false, "print the resolved configuration")
	var overrides kvList
	flag.Var(&overrides, "set", "override in key=value form (repeatable)")
	flag.StringVar(&out.dir, "out", ".", "directory for exported files")
	flag.StringVar(&out.text, "txt", "", "write the final U field as text to this file")
	flag.StringVar(&out.png, "png", "", "write the final field as PNG to this file")
	flag.StringVar(&out.gif, "gif", "", "record an animated GIF of every snapshot")
	flag.StringVar(&out.avi, "avi", "", "record an MJPEG AVI of every snapshot")
	flag.StringVar(&out.chart, "chart", "", "write a min/max/mean chart of U and V")
	flag.StringVar(&out.field, "field", "u", "field shown in images (u or v)")
	flag.StringVar(&out.cmap, "cmap", "viridis", "colour map: "+strings.Join(colormap.Names(), ", "))
	flag.IntVar(&out.scale, "scale", 2, "pixels per cell in images")
	flag.IntVar(&out.fps, "fps", 15, "frames per second of the AVI")
	flag.StringVar(&out.serve, "serve", "", "stream snapshots over websocket on this address, e.g. :8080")
	flag.BoolVar(&out.hold, "hold", false, "keep serving after the run until interrupted")
	flag.Parse()

	cfg, err := resolveConfig(flag.CommandLine, *configPath, *preset, overrides.Map())
	if err != nil {
		log.Fatal(err)
	}
	logger := newLogger(*quiet, *verbose)
	if *verbose {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, out, logger); err != nil {
		log.Fatal(err)
	}
}

// resolveConfig layers the settings file, the preset, the model flags set on fs
// and -set overrides over the defaults, in that order.
func resolveConfig(fs *flag.FlagSet, path, preset string, overrides map[string]string) (grayscott.Config, error) {
	base := grayscott.DefaultConfig()
	if path != "" {
		loaded, err := grayscott.LoadConfig(path)
		if err != nil {
			return base, err
		}
		base = loaded
	}
	if preset != "" {
		p, ok := grayscott.PresetByName(preset)
		if !ok {
			return base, fmt.Errorf("unknown preset %q", preset)
		}
		base = p.Apply(base)
	}

	replay := flag.NewFlagSet("replay", flag.ContinueOnError)
	base.Bind(replay)
	var replayErr error
	fs.Visit(func(f *flag.Flag) {
		if replay.Lookup(f.Name) == nil {
			return
		}
		if err := replay.Set(f.Name, f.Value.String()); err != nil {
			replayErr = errors.Join(replayErr, err)
		}
	})
	if replayErr != nil {
		return base, replayErr
	}

	cfg, err := base.With(overrides)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func newLogger(quiet, verbose bool) *log.Logger {
	switch {
	case quiet:
		return log.New(io.Discard, "", 0)
	case verbose:
		return log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)
	default:
		return log.New(os.Stderr, "", log.LstdFlags)
	}
}

func run(ctx context.Context, cfg grayscott.Config, out outputs, logger *log.Logger) error {
	model, err := grayscott.New(cfg)
	if err != nil {
		return err
	}
	field, err := export.ParseField(out.field)
	if err != nil {
		return err
	}
	cmap, err := colormap.ByName(out.cmap)
	if err != nil {
		return err
	}
	if field == export.FieldV {
		cmap = cmap.WithRange(0, 0.5)
	}

	var (
		consumers []driver.Consumer
		gif       *export.GIF
		movie     *export.Movie
		stats     *export.Stats
		server    *stream.Server
		httpSrv   *http.Server
	)
	if out.gif != "" {
		gif = export.NewGIF(field, cmap, out.scale, 100/max(out.fps, 1))
		consumers = append(consumers, gif)
	}
	if out.avi != "" {
		movie, err = export.NewMovie(out.path(out.avi), cfg.Rows, cfg.Cols, out.scale, out.fps, field, cmap)
		if err != nil {
			return err
		}
		defer movie.Close()
		consumers = append(consumers, movie)
	}
	if out.chart != "" {
		stats = export.NewStats()
		consumers = append(consumers, stats)
	}
	if out.serve != "" {
		server = stream.NewServer(logger)
		consumers = append(consumers, server)
		httpSrv = &http.Server{Addr: out.serve, Handler: server.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("serve: %v", err)
			}
		}()
		logger.Printf("streaming on ws://%s/ws", out.serve)
	}

	logger.Printf("%dx%d grid, %s laplacian, F=%g k=%g, %d steps",
		cfg.Rows, cfg.Cols, model.Method().Name(), cfg.Params.F, cfg.Params.K, cfg.Steps)
	d := driver.New(model,
		driver.WithLogger(logger),
		driver.WithReportEvery(cfg.ReportEvery),
		driver.WithConsumers(consumers...),
	)
	runErr := d.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		logger.Printf("interrupted; exporting partial result")
	}

	snap := d.Snapshot()
	title := fmt.Sprintf("Gray-Scott F=%.4f k=%.4f", cfg.Params.F, cfg.Params.K)
	if err := exportFinal(snap, out, title, field, cmap, gif, movie, stats); err != nil {
		return err
	}

	u := snap.UStats()
	fmt.Printf("U min %.6f max %.6f (step %d/%d)\n", u.Min, u.Max, snap.Step, snap.Total)

	if httpSrv != nil {
		if out.hold && runErr == nil {
			logger.Printf("run finished; serving until interrupted")
			<-ctx.Done()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
	return nil
}

// exportFinal writes every requested artefact concurrently.
func exportFinal(snap driver.Snapshot, out outputs, title string, field export.Field, cmap *colormap.Map, gif *export.GIF, movie *export.Movie, stats *export.Stats) error {
	var g errgroup.Group
	if out.png != "" {
		g.Go(func() error { return export.WritePNG(out.path(out.png), snap, field, cmap, out.scale) })
	}
	if out.text != "" {
		g.Go(func() error { return export.WriteText(out.path(out.text), snap) })
	}
	if gif != nil {
		g.Go(func() error { return gif.Save(out.path(out.gif)) })
	}
	if movie != nil {
		g.Go(movie.Close)
	}
	if stats != nil {
		g.Go(func() error { return stats.SaveChart(out.path(out.chart), title) })
	}
	return g.Wait()
}

func (o outputs) path(name string) string {
	if filepath.IsAbs(name) || o.dir == "" {
		return name
	}
	return filepath.Join(o.dir, name)
}
