package config

func preset(base Params, mutate func(*Params)) *Params {
	p := base
	mutate(&p)
	return &p
}

var Presets = map[Variant]map[string]*Params{
	VariantProjectile: {
		"default": preset(DefaultProjectile(), func(p *Params) {}),
		"vacuum": preset(DefaultProjectile(), func(p *Params) {
			p.DragCoeff = 0
			p.Wind = 0
		}),
		"lob": preset(DefaultProjectile(), func(p *Params) {
			p.LaunchAngle = 75
			p.LaunchSpeed = 20
		}),
		"flat": preset(DefaultProjectile(), func(p *Params) {
			p.LaunchAngle = 15
			p.LaunchSpeed = 45
		}),
		"headwind": preset(DefaultProjectile(), func(p *Params) {
			p.Wind = -12
			p.CrossArea = 0.05
		}),
		"balloon": preset(DefaultProjectile(), func(p *Params) {
			p.Mass = 0.05
			p.CrossArea = 0.2
			p.LaunchSpeed = 15
		}),
	},
	VariantTwoBody: {
		"headon": preset(DefaultTwoBody(), func(p *Params) {}),
		"glancing": preset(DefaultTwoBody(), func(p *Params) {
			p.Body1 = BodyParams{Mass: 1, Radius: 0.4, X: -5, Y: -0.3, VX: 4}
			p.Body2 = BodyParams{Mass: 1, Radius: 0.4, X: 5, Y: 0.3, VX: -4}
		}),
		"heavy": preset(DefaultTwoBody(), func(p *Params) {
			p.Body1 = BodyParams{Mass: 5, Radius: 0.6, X: -5, VX: 3}
			p.Body2 = BodyParams{Mass: 1, Radius: 0.25, X: 5, VX: -3}
		}),
		"chase": preset(DefaultTwoBody(), func(p *Params) {
			p.Body1 = BodyParams{Mass: 1, Radius: 0.3, X: -6, VX: 6}
			p.Body2 = BodyParams{Mass: 2, Radius: 0.4, X: 0, VX: 1.5}
		}),
	},
}

func GetPreset(variant Variant, name string) *Params {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	p, ok := variantPresets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets(variant Variant) []string {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(variantPresets))
	for name := range variantPresets {
		names = append(names, name)
	}
	return names
}
