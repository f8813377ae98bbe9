package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/termoscan/thermal-analyzer/internal/config"
	"github.com/termoscan/thermal-analyzer/internal/log"
	"github.com/termoscan/thermal-analyzer/internal/utils"
	"github.com/termoscan/thermal-analyzer/pkg/decoder"
	"github.com/termoscan/thermal-analyzer/pkg/pipeline"
	"github.com/termoscan/thermal-analyzer/pkg/render"
	"github.com/termoscan/thermal-analyzer/pkg/stats"
)

func main() {
	var cfgPath, in, out, mode, libs, logo, org, palette string
	var low, high float64
	var workers, quality int
	var debug bool

	flag.StringVar(&cfgPath, "config", "", "configuration file (JSON); defaults apply when omitted")
	flag.StringVar(&in, "in", "", "input directory with radiometric *_T.JPG frames")
	flag.StringVar(&out, "out", "", "output directory")
	flag.StringVar(&mode, "mode", "basic", "processing mode: basic|zones|ortho")
	flag.StringVar(&libs, "libs", "", "directory with the vendor decode libraries")
	flag.StringVar(&logo, "logo", "", "logo image composited onto visualizations")
	flag.StringVar(&org, "org", "", "organization name shown in the footer")
	flag.StringVar(&palette, "palette", "", "color palette: inferno|grayscale")
	flag.Float64Var(&low, "low", -1, "zone band lower offset from median, degC")
	flag.Float64Var(&high, "high", -1, "zone band upper offset from median, degC")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP quality for visualizations (1-100)")
	flag.IntVar(&workers, "workers", runtime.NumCPU(), "frames processed in parallel")
	flag.BoolVar(&debug, "debug", false, "verbose logging")
	flag.Parse()

	if err := log.Init(debug); err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	// An unreadable configuration is the only batch-fatal condition; it is
	// checked before any frame is touched.
	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			log.Fatalf("cannot load configuration: %v", err)
		}
		cfg = loaded
	}
	applyFlags(cfg, in, out, libs, logo, org, palette, low, high, quality)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	runMode, err := pipeline.ParseMode(mode)
	if err != nil {
		log.Fatalf("%v", err)
	}

	dec, err := decoder.NewSDKDecoder(cfg.Decoder.LibraryPath)
	if err != nil {
		log.Fatalf("cannot set up radiometric decoder: %v", err)
	}

	engine, err := stats.NewWithBands(cfg.Stats.PercentileBands)
	if err != nil {
		log.Fatalf("invalid percentile bands: %v", err)
	}

	var renderer *render.Renderer
	if runMode != pipeline.ModeOrtho {
		renderer, err = render.New(render.Config{
			Palette:        cfg.Render.Palette,
			UseFixedBounds: cfg.Render.UseFixedBounds,
			FixedMin:       cfg.Render.FixedMin,
			FixedMax:       cfg.Render.FixedMax,
			LogoPath:       cfg.Render.LogoPath,
			LogoSize:       cfg.Render.LogoSize,
			OrgName:        cfg.Render.OrgName,
			ShowLegend:     cfg.Render.ShowLegend,
		})
		if err != nil {
			log.Fatalf("cannot set up renderer: %v", err)
		}
	}

	p, err := pipeline.New(dec, engine, renderer, pipeline.Options{
		Mode:       runMode,
		OutputDir:  cfg.Output.OutputDir,
		Format:     cfg.Output.Format,
		Quality:    cfg.Output.Quality,
		LowOffset:  cfg.Zones.LowOffset,
		HighOffset: cfg.Zones.HighOffset,
		Workers:    workers,
	})
	if err != nil {
		log.Fatalf("cannot set up pipeline: %v", err)
	}

	frames, err := utils.ListFrameFiles(cfg.Decoder.InputDir)
	if err != nil {
		log.Fatalf("cannot discover input frames: %v", err)
	}
	if len(frames) == 0 {
		log.Fatalf("no radiometric frames found in %s", cfg.Decoder.InputDir)
	}
	if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
		log.Fatalf("cannot create output directory: %v", err)
	}

	log.Infof("processing %d frames in %s mode (org: %q)", len(frames), runMode, cfg.Render.OrgName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch := p.Run(ctx, frames)

	log.Infof("batch complete: %d succeeded, %d failed", batch.Succeeded(), batch.Failed())
	if !batch.OK() {
		log.Sync()
		os.Exit(1)
	}
}

// applyFlags lets command-line flags override the loaded configuration.
func applyFlags(cfg *config.Config, in, out, libs, logo, org, palette string, low, high float64, quality int) {
	if in != "" {
		cfg.Decoder.InputDir = in
	}
	if out != "" {
		cfg.Output.OutputDir = out
	}
	if libs != "" {
		cfg.Decoder.LibraryPath = libs
	}
	if logo != "" {
		cfg.Render.LogoPath = logo
	}
	if org != "" {
		cfg.Render.OrgName = org
	}
	if palette != "" {
		cfg.Render.Palette = palette
	}
	if low >= 0 {
		cfg.Zones.LowOffset = low
	}
	if high >= 0 {
		cfg.Zones.HighOffset = high
	}
	if quality > 0 {
		cfg.Output.Quality = quality
	}
}
