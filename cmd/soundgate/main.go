// Command soundgate classifies a live or recorded monaural audio stream as
// intentional sound versus ambient noise.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/soundgate/soundgate/internal/app"
	"github.com/soundgate/soundgate/internal/config"
	"github.com/soundgate/soundgate/internal/observe"
	"github.com/soundgate/soundgate/pkg/audio"
	"github.com/soundgate/soundgate/pkg/audio/wavfile"
	"github.com/soundgate/soundgate/pkg/classify"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Config      string           `short:"c" type:"path" help:"Path to YAML config file (optional)."`
	Sensitivity *float64         `short:"s" help:"Override detector sensitivity (0-1)."`
	Version     kong.VersionFlag `short:"v" help:"Show version information."`

	Listen  ListenCmd  `cmd:"" help:"Classify live microphone input until interrupted."`
	Analyze AnalyzeCmd `cmd:"" help:"Classify a WAV file and print the loud segments."`
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("soundgate"),
		kong.Description("Intentional-sound detector for live audio streams."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "soundgate: %v\n", err)
		os.Exit(1)
	}
	if cli.Sensitivity != nil {
		cfg.Classifier.Sensitivity = cli.Sensitivity
	}

	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "soundgate: init telemetry: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelShutdown(sctx)
	}()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(cfg)
	if err := kctx.Run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "soundgate: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file when given, or returns the built-in
// defaults when not.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := &config.Config{}
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.Load(path)
}

// newLogger builds the process logger at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ListenCmd runs the detector against live microphone input.
type ListenCmd struct{}

// Run captures from the default input device until the context is cancelled,
// printing every debounced state change.
func (l *ListenCmd) Run(ctx context.Context, cfg *config.Config) error {
	dc := cfg.Detector()
	source, err := newCaptureSource(dc.SampleRate, dc.FrameSize)
	if err != nil {
		return err
	}

	application, err := app.New(cfg, source,
		app.WithFrameHook(printTransitions()),
	)
	if err != nil {
		return err
	}

	slog.Info("listening",
		"sample_rate", dc.SampleRate,
		"frame_size", dc.FrameSize,
		"mode", dc.Mode,
		"sensitivity", dc.Sensitivity,
	)
	return application.Run(ctx)
}

// printTransitions returns a hook that writes debounced state changes to
// stdout with the stream timestamp.
func printTransitions() app.FrameHook {
	wasLoud := false
	return func(f audio.Frame, r classify.Result) {
		if r.Loud == wasLoud {
			return
		}
		wasLoud = r.Loud
		state := "quiet"
		if r.Loud {
			state = "LOUD "
		}
		fmt.Printf("%8s  %s  rms=%.4f band=%.2f centroid=%.0fHz\n",
			f.Timestamp.Round(time.Millisecond), state,
			r.Features.RMS, r.Features.BandRatio, r.Features.CentroidHz)
	}
}

// AnalyzeCmd runs the detector over a recorded WAV file.
type AnalyzeCmd struct {
	File string `arg:"" type:"existingfile" help:"WAV file to classify."`
}

// Run classifies the file frame by frame and prints every contiguous loud
// segment with its start and end timestamps.
func (a *AnalyzeCmd) Run(ctx context.Context, cfg *config.Config) error {
	dc := cfg.Detector()

	source := wavfile.New(a.File, dc.FrameSize)
	rate, err := source.SampleRate()
	if err != nil {
		return err
	}
	if rate != dc.SampleRate {
		// The detector's frequency axis must match the file.
		cfg.Audio.SampleRate = rate
	}

	frameDur := time.Duration(dc.FrameSize) * time.Second / time.Duration(rate)

	var (
		segStart time.Duration
		inSeg    bool
		segments int
		frames   int
	)
	hook := func(f audio.Frame, r classify.Result) {
		frames++
		switch {
		case r.Loud && !inSeg:
			inSeg = true
			segStart = f.Timestamp
		case !r.Loud && inSeg:
			inSeg = false
			segments++
			fmt.Printf("loud segment: %s - %s\n",
				segStart.Round(time.Millisecond),
				f.Timestamp.Round(time.Millisecond))
		}
	}

	application, err := app.New(cfg, source, app.WithFrameHook(hook))
	if err != nil {
		return err
	}
	if err := application.Run(ctx); err != nil {
		return err
	}

	if inSeg {
		segments++
		fmt.Printf("loud segment: %s - end of file\n", segStart.Round(time.Millisecond))
	}
	fmt.Printf("%d frames (%s), %d loud segment(s)\n",
		frames, (time.Duration(frames) * frameDur).Round(time.Millisecond), segments)
	return nil
}
