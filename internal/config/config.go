package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

type Variant string

const (
	VariantProjectile Variant = "projectile"
	VariantTwoBody    Variant = "twobody"
)

const (
	// Epsilon is the floor substituted for non-positive or non-finite
	// quantities that must stay strictly positive.
	Epsilon = 1e-9

	DefaultTimeScale   = 0.25
	DefaultDtDrag      = 0.005
	DefaultDtCollision = 0.01
	DefaultMaxDuration = 30.0
	DefaultGravity     = 9.81
	DefaultAirDensity  = 1.225
	DefaultDragCoeff   = 0.47
	DefaultCrossArea   = 0.01
	DefaultLaunchSpeed = 30.0
	DefaultLaunchAngle = 45.0
	DefaultMass        = 1.0
	DefaultRadius      = 0.25
)

type BodyParams struct {
	Mass   float64 `yaml:"mass" json:"mass"`
	Radius float64 `yaml:"radius" json:"radius"`
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	VX     float64 `yaml:"vx" json:"vx"`
	VY     float64 `yaml:"vy" json:"vy"`
}

// Box is the arena for the two-body variant. Walls are axis-aligned and do
// not move during a run.
type Box struct {
	XMin float64 `yaml:"xmin" json:"xmin"`
	XMax float64 `yaml:"xmax" json:"xmax"`
	YMin float64 `yaml:"ymin" json:"ymin"`
	YMax float64 `yaml:"ymax" json:"ymax"`
}

// Params is the full configuration for one run. A Params value is built
// once per start command, passed through Clamp, and never mutated after
// the run begins.
type Params struct {
	Variant Variant `yaml:"variant" json:"variant"`

	// Projectile variant.
	Mass        float64 `yaml:"mass" json:"mass"`
	LaunchSpeed float64 `yaml:"launch_speed" json:"launchSpeed"`
	LaunchAngle float64 `yaml:"launch_angle" json:"launchAngle"` // degrees
	X0          float64 `yaml:"x0" json:"x0"`
	Y0          float64 `yaml:"y0" json:"y0"`
	Gravity     float64 `yaml:"gravity" json:"gravity"`
	AirDensity  float64 `yaml:"air_density" json:"airDensity"`
	DragCoeff   float64 `yaml:"drag_coeff" json:"dragCoeff"`
	CrossArea   float64 `yaml:"cross_area" json:"crossArea"`
	Wind        float64 `yaml:"wind" json:"wind"`

	// Two-body variant.
	Body1  BodyParams `yaml:"body1" json:"body1"`
	Body2  BodyParams `yaml:"body2" json:"body2"`
	Bounds Box        `yaml:"bounds" json:"bounds"`

	// Shared.
	Dt          float64 `yaml:"dt" json:"dt"`
	MaxDuration float64 `yaml:"max_duration" json:"maxDuration"`
	TimeScale   float64 `yaml:"time_scale" json:"timeScale"` // simulated seconds per real second
}

// Adjustment records one field rewritten by Clamp.
type Adjustment struct {
	Field string
	From  float64
	To    float64
}

func (a Adjustment) String() string {
	return fmt.Sprintf("%s: %g -> %g", a.Field, a.From, a.To)
}

func DefaultProjectile() Params {
	return Params{
		Variant:     VariantProjectile,
		Mass:        DefaultMass,
		LaunchSpeed: DefaultLaunchSpeed,
		LaunchAngle: DefaultLaunchAngle,
		Gravity:     DefaultGravity,
		AirDensity:  DefaultAirDensity,
		DragCoeff:   DefaultDragCoeff,
		CrossArea:   DefaultCrossArea,
		Dt:          DefaultDtDrag,
		MaxDuration: DefaultMaxDuration,
		TimeScale:   DefaultTimeScale,
	}
}

func DefaultTwoBody() Params {
	return Params{
		Variant:     VariantTwoBody,
		Body1:       BodyParams{Mass: 1, Radius: DefaultRadius, X: -5, VX: 5},
		Body2:       BodyParams{Mass: 1, Radius: DefaultRadius, X: 5, VX: -5},
		Bounds:      Box{XMin: -8, XMax: 8, YMin: -5, YMax: 5},
		Dt:          DefaultDtCollision,
		MaxDuration: DefaultMaxDuration,
		TimeScale:   DefaultTimeScale,
	}
}

func Default(v Variant) Params {
	if v == VariantTwoBody {
		return DefaultTwoBody()
	}
	return DefaultProjectile()
}

// Clamp rewrites out-of-range or malformed fields to the nearest valid
// value and reports what changed. There is no rejection path: any Params
// value is valid after Clamp returns.
//
// A zero field is treated as unset and falls back to its default; a
// negative or non-finite field is floored at Epsilon.
func (p *Params) Clamp() []Adjustment {
	var adj []Adjustment

	fix := func(name string, v *float64, def float64) {
		switch {
		case *v == 0:
			if def != 0 {
				adj = append(adj, Adjustment{name, 0, def})
				*v = def
			}
		case *v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0):
			adj = append(adj, Adjustment{name, *v, Epsilon})
			*v = Epsilon
		}
	}

	if p.Variant != VariantTwoBody {
		p.Variant = VariantProjectile
	}

	def := Default(p.Variant)

	fix("dt", &p.Dt, def.Dt)
	fix("max_duration", &p.MaxDuration, def.MaxDuration)
	fix("time_scale", &p.TimeScale, def.TimeScale)

	if p.Variant == VariantProjectile {
		fix("mass", &p.Mass, def.Mass)
		fix("launch_speed", &p.LaunchSpeed, def.LaunchSpeed)
		fix("gravity", &p.Gravity, def.Gravity)
		fix("air_density", &p.AirDensity, def.AirDensity)
		fix("cross_area", &p.CrossArea, def.CrossArea)
		if math.IsNaN(p.DragCoeff) || math.IsInf(p.DragCoeff, 0) || p.DragCoeff < 0 {
			adj = append(adj, Adjustment{"drag_coeff", p.DragCoeff, 0})
			p.DragCoeff = 0 // drag-free is a legitimate configuration
		}
		if math.IsNaN(p.Wind) || math.IsInf(p.Wind, 0) {
			adj = append(adj, Adjustment{"wind", p.Wind, 0})
			p.Wind = 0
		}
		switch {
		case math.IsNaN(p.LaunchAngle) || math.IsInf(p.LaunchAngle, 0):
			adj = append(adj, Adjustment{"launch_angle", p.LaunchAngle, def.LaunchAngle})
			p.LaunchAngle = def.LaunchAngle
		case p.LaunchAngle < 0:
			adj = append(adj, Adjustment{"launch_angle", p.LaunchAngle, 0})
			p.LaunchAngle = 0
		case p.LaunchAngle > 90:
			adj = append(adj, Adjustment{"launch_angle", p.LaunchAngle, 90})
			p.LaunchAngle = 90
		}
		return adj
	}

	fix("body1.mass", &p.Body1.Mass, def.Body1.Mass)
	fix("body2.mass", &p.Body2.Mass, def.Body2.Mass)
	fix("body1.radius", &p.Body1.Radius, def.Body1.Radius)
	fix("body2.radius", &p.Body2.Radius, def.Body2.Radius)
	if p.Bounds == (Box{}) {
		p.Bounds = def.Bounds
	}
	if p.Bounds.XMax <= p.Bounds.XMin || p.Bounds.YMax <= p.Bounds.YMin {
		adj = append(adj, Adjustment{"bounds", 0, 0})
		p.Bounds = def.Bounds
	}
	return adj
}

func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := &Params{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

func Save(path string, p *Params) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
