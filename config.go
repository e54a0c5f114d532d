package physlines

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/gekko3d/physlines/physics"
	"gopkg.in/yaml.v3"
)

const (
	DisplayConfigFile = "display.yaml"
	InputConfigFile   = "input.yaml"
	SceneConfigFile   = "scene.yaml"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Display DisplayConfig
	Input   InputConfig
	Scene   SceneConfig
}

type DisplayConfig struct {
	Title      string     `yaml:"title"`
	Dimensions [2]int     `yaml:"dimensions"`
	ClearColor [4]float64 `yaml:"clear_color"`
	VSync      bool       `yaml:"vsync"`
}

func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Title:      "physlines",
		Dimensions: [2]int{800, 600},
		ClearColor: [4]float64{0.01, 0.01, 0.02, 1},
		VSync:      true,
	}
}

type AxisConfig struct {
	Pos []string `yaml:"pos"`
	Neg []string `yaml:"neg"`
}

type InputConfig struct {
	Axes map[string]AxisConfig `yaml:"axes"`
}

func DefaultInputConfig() InputConfig {
	return InputConfig{Axes: map[string]AxisConfig{
		"move_x": {Pos: []string{"d"}, Neg: []string{"a"}},
		"move_y": {Pos: []string{"e", "space"}, Neg: []string{"q", "control"}},
		"move_z": {Pos: []string{"s"}, Neg: []string{"w"}},
	}}
}

// Bindings resolves key names into axes.
func (c InputConfig) Bindings() (map[string]Axis, error) {
	res := make(map[string]Axis, len(c.Axes))
	for name, ac := range c.Axes {
		var axis Axis
		for _, k := range ac.Pos {
			key, err := ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("axis %s: %w", name, err)
			}
			axis.Pos = append(axis.Pos, key)
		}
		for _, k := range ac.Neg {
			key, err := ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("axis %s: %w", name, err)
			}
			axis.Neg = append(axis.Neg, key)
		}
		res[name] = axis
	}
	return res, nil
}

type MaterialConfig struct {
	StaticFriction  float32 `yaml:"static_friction"`
	DynamicFriction float32 `yaml:"dynamic_friction"`
	Restitution     float32 `yaml:"restitution"`
}

type PlaneConfig struct {
	Normal   [3]float32 `yaml:"normal"`
	Distance float32    `yaml:"distance"`
}

type SphereConfig struct {
	Radius         float32    `yaml:"radius"`
	Position       [3]float32 `yaml:"position"`
	Density        float32    `yaml:"density"`
	LinearDamping  float32    `yaml:"linear_damping"`
	AngularDamping float32    `yaml:"angular_damping"`
}

type GridConfig struct {
	Width int        `yaml:"width"`
	Depth int        `yaml:"depth"`
	Color [4]float32 `yaml:"color"`
}

type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	Aspect      float32    `yaml:"aspect"`
	Fovy        float32    `yaml:"fovy"`
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	Speed       float32    `yaml:"speed"`
	Sensitivity [2]float32 `yaml:"sensitivity"`
}

type SceneConfig struct {
	Gravity       [3]float32     `yaml:"gravity"`
	Material      MaterialConfig `yaml:"material"`
	Ground        PlaneConfig    `yaml:"ground"`
	Sphere        SphereConfig   `yaml:"sphere"`
	Grid          GridConfig     `yaml:"grid"`
	Camera        CameraConfig   `yaml:"camera"`
	Visualization []string       `yaml:"visualization"`
}

func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Gravity: [3]float32{0, -9.81, 0},
		Material: MaterialConfig{
			StaticFriction:  0.5,
			DynamicFriction: 0.5,
			Restitution:     0.6,
		},
		Ground: PlaneConfig{Normal: [3]float32{0, 1, 0}},
		Sphere: SphereConfig{
			Radius:         2,
			Position:       [3]float32{1, 40, -4},
			Density:        10,
			AngularDamping: 0.5,
		},
		Grid: GridConfig{Width: 10, Depth: 10, Color: [4]float32{0.4, 0.4, 0.4, 1}},
		Camera: CameraConfig{
			Position:    [3]float32{0, 0.5, 2},
			Aspect:      1.33333,
			Fovy:        math.Pi / 2,
			Near:        0.1,
			Far:         1000,
			Speed:       1,
			Sensitivity: [2]float32{0.1, 0.1},
		},
		Visualization: []string{
			"scale",
			"contact_point",
			"contact_force",
			"contact_normal",
			"collision_shapes",
			"world_axes",
		},
	}
}

// VisualizationParameters resolves the visualization names.
func (c SceneConfig) VisualizationParameters() ([]physics.VisualizationParameter, error) {
	res := make([]physics.VisualizationParameter, 0, len(c.Visualization))
	for _, name := range c.Visualization {
		p, err := physics.ParseVisualizationParameter(name)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}

func DefaultConfig() Config {
	return Config{
		Display: DefaultDisplayConfig(),
		Input:   DefaultInputConfig(),
		Scene:   DefaultSceneConfig(),
	}
}

// LoadConfig reads display.yaml and input.yaml (required) and scene.yaml
// (optional) from dir. Fields missing from a file keep their defaults.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()

	if err := loadYaml(filepath.Join(dir, DisplayConfigFile), &cfg.Display, false); err != nil {
		return cfg, err
	}

	// axes are replaced wholesale, not merged with the defaults
	cfg.Input.Axes = nil
	if err := loadYaml(filepath.Join(dir, InputConfigFile), &cfg.Input, false); err != nil {
		return cfg, err
	}

	if err := loadYaml(filepath.Join(dir, SceneConfigFile), &cfg.Scene, true); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func loadYaml(path string, out any, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := decodeYaml(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// decodeYaml rejects unknown fields so typos in config files surface.
func decodeYaml(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	d := c.Display
	if d.Dimensions[0] <= 0 || d.Dimensions[1] <= 0 {
		return fmt.Errorf("%w: %s: dimensions must be positive, got %v", ErrInvalidConfig, DisplayConfigFile, d.Dimensions)
	}
	for _, ch := range d.ClearColor {
		if ch < 0 || ch > 1 {
			return fmt.Errorf("%w: %s: clear_color channels must be in [0, 1], got %v", ErrInvalidConfig, DisplayConfigFile, d.ClearColor)
		}
	}

	if _, err := c.Input.Bindings(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, InputConfigFile, err)
	}

	s := c.Scene
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, SceneConfigFile, fmt.Sprintf(format, args...))
	}
	if !(s.Sphere.Radius > 0) {
		return invalid("sphere radius must be positive, got %v", s.Sphere.Radius)
	}
	if !(s.Sphere.Density > 0) {
		return invalid("sphere density must be positive, got %v", s.Sphere.Density)
	}
	if s.Ground.Normal == [3]float32{} {
		return invalid("ground normal must not be zero")
	}
	if s.Grid.Width <= 0 || s.Grid.Depth <= 0 {
		return invalid("grid size must be positive, got %dx%d", s.Grid.Width, s.Grid.Depth)
	}
	cam := s.Camera
	if !(cam.Near > 0) || !(cam.Far > cam.Near) {
		return invalid("camera needs 0 < near < far, got near=%v far=%v", cam.Near, cam.Far)
	}
	if !(cam.Fovy > 0) || !(cam.Fovy < math.Pi) {
		return invalid("camera fovy must be in (0, pi), got %v", cam.Fovy)
	}
	if !(cam.Aspect > 0) {
		return invalid("camera aspect must be positive, got %v", cam.Aspect)
	}
	if _, err := s.VisualizationParameters(); err != nil {
		return invalid("%v", err)
	}
	return nil
}
