package cmd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/achilleasa/lumen/config"
	"github.com/achilleasa/lumen/renderer"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Render a fixed number of frames against a recording device and report
// per-pass statistics.
func Bench(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	opts, err := benchOptions(ctx, cfg)
	if err != nil {
		return err
	}

	r, err := renderer.NewHeadless(opts)
	if err != nil {
		return err
	}
	defer r.Close()

	logger.Noticef("rendering %d frames in %s mode", opts.Frames, cfg.Mode)
	if err = r.Render(); err != nil {
		return err
	}

	displayFrameStats(r.Stats())
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pass", "Invocations", "Total time", "Time per frame"})

	perFrame := func(d time.Duration) time.Duration {
		if stats.Frames == 0 {
			return 0
		}
		return d / time.Duration(stats.Frames)
	}

	table.Append([]string{
		"scene",
		fmt.Sprintf("%d", stats.Frames),
		stats.SceneTime.String(),
		perFrame(stats.SceneTime).String(),
	})
	for _, pass := range stats.PostProcess.Passes {
		table.Append([]string{
			pass.Name,
			fmt.Sprintf("%d", pass.Invocations),
			pass.Time.String(),
			perFrame(pass.Time).String(),
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d frames (%s)", stats.Frames, stats.Mode),
		fmt.Sprintf("%d draws/frame", stats.DrawCalls),
		stats.RenderTime.String(),
		stats.FrameTime().String(),
	})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}

// Build the headless renderer options from the bench flags.
func benchOptions(ctx *cli.Context, cfg *config.Config) (renderer.Options, error) {
	frames := ctx.Int("frames")
	if frames < 1 {
		return renderer.Options{}, errors.Wrapf(renderer.ErrNoFrames, "--frames %d", frames)
	}
	delta := ctx.Float64("delta")
	if delta <= 0 {
		return renderer.Options{}, errors.Errorf("bench: --delta must be positive; got %g", delta)
	}

	return renderer.Options{
		Config:     cfg,
		Frames:     uint32(frames),
		FrameDelta: float32(delta),
	}, nil
}
