// Package config defines the tunable parameters of a lumen session and
// loads them from YAML documents.
package config

import (
	"bytes"
	"io"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/postprocess"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type Bloom struct {
	// Luminance above which a fragment contributes to the bloom.
	Threshold float32 `yaml:"threshold"`

	// Scale applied to the blurred bright pass during compositing.
	Intensity float32 `yaml:"intensity"`

	// Number of ping-pong blur passes after the initial downsample.
	BlurPasses int `yaml:"blur_passes"`

	// The blur targets are allocated at screen size / Downsample.
	Downsample float32 `yaml:"downsample"`
}

type Scene struct {
	TorusCount  int     `yaml:"torus_count"`
	RingRadius  float32 `yaml:"ring_radius"`
	RingHeight  float32 `yaml:"ring_height"`
	RingSpeed   float32 `yaml:"ring_speed"` // degrees per second
	LightRadius float32 `yaml:"light_radius"`
	LightSpeed  float32 `yaml:"light_speed"` // radians per second
}

type Camera struct {
	FOV       float32    `yaml:"fov"`
	MoveSpeed float32    `yaml:"move_speed"`
	LookSpeed float32    `yaml:"look_speed"`
	Position  [3]float32 `yaml:"position"`
}

// Config collects all settings for a session.
type Config struct {
	Window Window `yaml:"window"`
	Bloom  Bloom  `yaml:"bloom"`
	Scene  Scene  `yaml:"scene"`
	Camera Camera `yaml:"camera"`

	// Initial post-process mode.
	Mode string `yaml:"mode"`

	// Panic on render context misuse instead of logging it.
	Debug bool `yaml:"debug"`
}

// Get the default configuration.
func Defaults() *Config {
	return &Config{
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "lumen",
			VSync:  true,
		},
		Bloom: Bloom{
			Threshold:  0.1,
			Intensity:  1.0,
			BlurPasses: 30,
			Downsample: 16,
		},
		Scene: Scene{
			TorusCount:  12,
			RingRadius:  10,
			RingHeight:  2,
			RingSpeed:   15,
			LightRadius: 15,
			LightSpeed:  1,
		},
		Camera: Camera{
			FOV:       45,
			MoveSpeed: 5,
			LookSpeed: 0.005,
			Position:  [3]float32{0, 15, 35},
		},
		Mode: postprocess.Bloom.String(),
	}
}

// Load a YAML document from a local path or an http(s) URL and layer it over
// the defaults. Keys missing from the document keep their default values.
func Load(path string) (*Config, error) {
	data, err := asset.ReadAll(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse a YAML document and layer it over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "config: could not parse")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate the configuration values.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return errors.Wrapf(ErrInvalidConfig, "window size %dx%d", c.Window.Width, c.Window.Height)
	case c.Bloom.Threshold < 0 || c.Bloom.Threshold > 1:
		return errors.Wrapf(ErrInvalidConfig, "bloom threshold %g not in [0, 1]", c.Bloom.Threshold)
	case c.Bloom.Intensity < 0:
		return errors.Wrapf(ErrInvalidConfig, "bloom intensity %g", c.Bloom.Intensity)
	case c.Bloom.BlurPasses < 0:
		return errors.Wrapf(ErrInvalidConfig, "blur passes %d", c.Bloom.BlurPasses)
	case c.Bloom.Downsample < 1:
		return errors.Wrapf(ErrInvalidConfig, "downsample factor %g", c.Bloom.Downsample)
	case c.Scene.TorusCount < 0:
		return errors.Wrapf(ErrInvalidConfig, "torus count %d", c.Scene.TorusCount)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return errors.Wrapf(ErrInvalidConfig, "camera fov %g", c.Camera.FOV)
	}

	if _, err := postprocess.ParseMode(c.Mode); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

// Get the parsed post-process mode.
func (c *Config) PostProcessMode() postprocess.Mode {
	mode, _ := postprocess.ParseMode(c.Mode)
	return mode
}

// Get the pipeline options described by the configuration.
func (c *Config) PipelineOptions() postprocess.Options {
	return postprocess.Options{
		Width:      float32(c.Window.Width),
		Height:     float32(c.Window.Height),
		Threshold:  c.Bloom.Threshold,
		Intensity:  c.Bloom.Intensity,
		BlurPasses: c.Bloom.BlurPasses,
		Downsample: c.Bloom.Downsample,
	}
}

// Encode the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, errors.Wrap(err, "config: could not encode")
	}
	enc.Close()
	return buf.Bytes(), nil
}
