package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"grassrenderer/core"
	"grassrenderer/physics"
	"grassrenderer/simulation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultPath is where the CLI looks for settings unless told otherwise
const DefaultPath = "settings.json"

type Settings struct {
	Window       WindowSettings        `json:"window"`
	Field        FieldSettings         `json:"field"`
	Tessellation TessellationSettings  `json:"tessellation"`
	Wind         simulation.WindParams `json:"wind"`
	Simulation   SimulationSettings    `json:"simulation"`
	Server       ServerSettings        `json:"server"`
	Metrics      MetricsSettings       `json:"metrics"`
	Log          LogSettings           `json:"log"`
	Shaders      ShaderSettings        `json:"shaders"`
}

type WindowSettings struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Title  string `json:"title"`
	VSync  bool   `json:"vsync"`
}

type FieldSettings struct {
	Columns         int        `json:"columns"`
	Rows            int        `json:"rows"`
	Spacing         float32    `json:"spacing"`
	Jitter          float32    `json:"jitter"`
	Origin          [3]float32 `json:"origin"`
	HeightMin       float32    `json:"heightMin"`
	HeightMax       float32    `json:"heightMax"`
	Width           float32    `json:"width"`
	StiffnessBase   float32    `json:"stiffnessBase"`
	StiffnessSpread float32    `json:"stiffnessSpread"`
	Seed            uint64     `json:"seed"`
}

type TessellationSettings struct {
	PatchVertices uint32  `json:"patchVertices"`
	MinLevel      float32 `json:"minLevel"`
	MaxLevel      float32 `json:"maxLevel"`
	LODDistance   float32 `json:"lodDistance"`
	Adaptive      bool    `json:"adaptive"`
}

type SimulationSettings struct {
	RecoveryRate    float32 `json:"recoveryRate"`
	MaxDeltaMs      int     `json:"maxDeltaMs"`
	GustSeed        int64   `json:"gustSeed"`
	WriteDescriptor bool    `json:"writeDescriptor"`
}

type ServerSettings struct {
	Port             int `json:"port"`
	UpdateIntervalMs int `json:"updateIntervalMs"`
}

type MetricsSettings struct {
	Addr string `json:"addr"` // empty disables the endpoint
}

type LogSettings struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
}

type ShaderSettings struct {
	Dir string `json:"dir"` // empty uses the built-in sources
}

// Default returns the settings used when no file is present
func Default() Settings {
	field := core.DefaultFieldConfig()
	return Settings{
		Window: WindowSettings{
			Width:  1280,
			Height: 720,
			Title:  "Grass",
			VSync:  true,
		},
		Field: FieldSettings{
			Columns:         field.Columns,
			Rows:            field.Rows,
			Spacing:         field.Spacing,
			Jitter:          field.Jitter,
			HeightMin:       field.HeightMin,
			HeightMax:       field.HeightMax,
			Width:           field.Width,
			StiffnessBase:   field.StiffnessBase,
			StiffnessSpread: field.StiffnessSpread,
		},
		Tessellation: TessellationSettings{
			PatchVertices: 1,
			MinLevel:      2,
			MaxLevel:      8,
			LODDistance:   20,
		},
		Wind: simulation.DefaultWindParams(),
		Simulation: SimulationSettings{
			RecoveryRate: physics.DefaultParams().RecoveryRate,
			MaxDeltaMs:   100,
		},
		Server: ServerSettings{
			Port:             8080,
			UpdateIntervalMs: 100,
		},
		Metrics: MetricsSettings{
			Addr: ":9090",
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// FieldConfig converts the field section for the generator
func (s Settings) FieldConfig() core.FieldConfig {
	f := s.Field
	return core.FieldConfig{
		Columns:         f.Columns,
		Rows:            f.Rows,
		Spacing:         f.Spacing,
		Jitter:          f.Jitter,
		Origin:          mgl32.Vec3(f.Origin),
		HeightMin:       f.HeightMin,
		HeightMax:       f.HeightMax,
		Width:           f.Width,
		StiffnessBase:   f.StiffnessBase,
		StiffnessSpread: f.StiffnessSpread,
		Seed:            f.Seed,
	}
}

// PhysicsParams converts the simulation section for the bending model
func (s Settings) PhysicsParams() physics.Params {
	params := physics.DefaultParams()
	params.RecoveryRate = s.Simulation.RecoveryRate
	return params
}

// MaxDelta is the tick clamp in seconds
func (s Settings) MaxDelta() float32 {
	return float32(s.Simulation.MaxDeltaMs) / 1000
}

// Validate checks every section that would otherwise fail later at startup
func (s Settings) Validate() error {
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d", s.Window.Width, s.Window.Height)
	}
	if err := s.FieldConfig().Validate(); err != nil {
		return err
	}
	if err := s.Wind.Validate(); err != nil {
		return err
	}
	if !(s.Simulation.RecoveryRate > 0) {
		return fmt.Errorf("recoveryRate must be > 0, got %g", s.Simulation.RecoveryRate)
	}
	if s.Simulation.MaxDeltaMs <= 0 {
		return fmt.Errorf("maxDeltaMs must be > 0, got %d", s.Simulation.MaxDeltaMs)
	}
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", s.Server.Port)
	}
	if s.Server.UpdateIntervalMs <= 0 {
		return fmt.Errorf("updateIntervalMs must be > 0, got %d", s.Server.UpdateIntervalMs)
	}
	return nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string, log *zap.Logger) (Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("no settings file found, using defaults", zap.String("path", path))
			return settings, nil
		}
		return settings, err
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	log.Info("loaded settings",
		zap.String("path", path),
		zap.Int("blades", settings.FieldConfig().Count()))
	return settings, nil
}

// LoadWind reads only the wind section of path over the default wind, for
// hot reload
func LoadWind(path string) (simulation.WindParams, error) {
	params := simulation.DefaultWindParams()
	var partial struct {
		Wind jsoniter.RawMessage `json:"wind"`
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return params, err
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return params, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if len(partial.Wind) == 0 {
		return params, fmt.Errorf("%s has no wind section", path)
	}
	if err := json.Unmarshal(partial.Wind, &params); err != nil {
		return params, fmt.Errorf("error parsing wind in %s: %w", path, err)
	}
	return params, params.Validate()
}
