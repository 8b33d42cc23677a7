package config

import (
	"fmt"
	"sort"
)

var params = map[string]func(*Config) *float64{
	"damping":     func(c *Config) *float64 { return &c.Physics.Damping },
	"restitution": func(c *Config) *float64 { return &c.Physics.Restitution },
	"speed":       func(c *Config) *float64 { return &c.Physics.Speed },
	"max_step":    func(c *Config) *float64 { return &c.Physics.MaxStep },
	"fps":         func(c *Config) *float64 { return &c.Physics.FPS },
	"min_radius":  func(c *Config) *float64 { return &c.Orbs.MinRadius },
	"max_radius":  func(c *Config) *float64 { return &c.Orbs.MaxRadius },
	"width":       func(c *Config) *float64 { return &c.Viewport.Width },
	"height":      func(c *Config) *float64 { return &c.Viewport.Height },
}

// SetParam assigns a tunable numeric field by name.
func (c *Config) SetParam(name string, v float64) error {
	if name == "count" {
		c.Orbs.Count = int(v)
		return nil
	}
	field, ok := params[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q: %w", name, ErrInvalid)
	}
	*field(c) = v
	return nil
}

func (c *Config) Param(name string) (float64, error) {
	if name == "count" {
		return float64(c.Orbs.Count), nil
	}
	field, ok := params[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter %q: %w", name, ErrInvalid)
	}
	return *field(c), nil
}

func ListParams() []string {
	names := []string{"count"}
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
