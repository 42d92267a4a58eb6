package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/postprocess"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Quiet()
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, float32(0.1), cfg.Bloom.Threshold)
	assert.Equal(t, 30, cfg.Bloom.BlurPasses)
	assert.Equal(t, float32(16), cfg.Bloom.Downsample)
	assert.Equal(t, 12, cfg.Scene.TorusCount)
	assert.Equal(t, postprocess.Bloom, cfg.PostProcessMode())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
mode: bright_pass
bloom:
  blur_passes: 4
window:
  width: 800
`))
	require.NoError(t, err)

	assert.Equal(t, postprocess.BrightPass, cfg.PostProcessMode())
	assert.Equal(t, 4, cfg.Bloom.BlurPasses)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, float32(0.1), cfg.Bloom.Threshold)

	opts := cfg.PipelineOptions()
	assert.Equal(t, float32(800), opts.Width)
	assert.Equal(t, 4, opts.BlurPasses)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestParseErrors(t *testing.T) {
	specs := []struct {
		doc     string
		invalid bool
	}{
		{"bloom: [1, 2", false},
		{"unknown_key: 1", false},
		{"bloom:\n  threshold: 1.5", true},
		{"bloom:\n  blur_passes: -1", true},
		{"bloom:\n  downsample: 0", true},
		{"window:\n  width: 0", true},
		{"camera:\n  fov: 180", true},
		{"mode: sepia", true},
	}

	for specIndex, spec := range specs {
		_, err := Parse([]byte(spec.doc))
		if err == nil {
			t.Fatalf("[spec %d] expected an error", specIndex)
		}
		if isInvalid := errors.Cause(err) == ErrInvalidConfig; isInvalid != spec.invalid {
			t.Fatalf("[spec %d] expected validation error = %t; got %v", specIndex, spec.invalid, err)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Bloom.BlurPasses = 7
	cfg.Mode = postprocess.BlurredBrightPass.String()

	data, err := cfg.Marshal()
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWatchReloadsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bloom:\n  blur_passes: 1\n"), 0o644))

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("bloom:\n  blur_passes: 9\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-w.Changes():
			// A write may be observed before the file is complete.
			if cfg.Bloom.BlurPasses == 9 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for config reload")
		}
	}
}

func TestWatchCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumen.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := Watch(path)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
