package config

import "sort"

var Presets = map[string]*Config{
	"calm": preset(func(c *Config) {
		c.Orbs.Count = 6
		c.Physics.Speed = 1.5
	}),
	"billiards": preset(func(c *Config) {
		c.Orbs.Count = 12
		c.Orbs.MinRadius, c.Orbs.MaxRadius = 24, 24
		c.Physics.Damping = 1
		c.Physics.Restitution = 1
		c.Physics.Speed = 8
	}),
	"crowd": preset(func(c *Config) {
		c.Orbs.Count = 40
		c.Orbs.MinRadius, c.Orbs.MaxRadius = 8, 24
		c.Physics.Speed = 6
	}),
	"sluggish": preset(func(c *Config) {
		c.Physics.Damping = 0.9
		c.Physics.Restitution = 0.4
		c.Physics.Speed = 12
	}),
}

func preset(apply func(*Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
