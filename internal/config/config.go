package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/anim"
	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/layout"
)

type Driver interface {
	Path() string
	Exists() (bool, error)
	Write(config Config) error
	Read() (Config, error)
}

// NewStore creates the config file with defaults when it does not exist.
func NewStore(driver Driver) (Store, error) {
	exists, err := driver.Exists()
	if err != nil {
		return Store{}, err
	}
	if !exists {
		if err := driver.Write(DefaultConfig()); err != nil {
			return Store{}, err
		}
	}

	return Store{
		driver: driver,
	}, nil
}

type Store struct {
	driver Driver
}

func (p *Store) Path() string {
	return p.driver.Path()
}

func (p *Store) GetConfig() (Config, error) {
	return p.driver.Read()
}

func (p *Store) UpdateConfig(fn func(cfg Config) (Config, error)) error {
	cfg, err := p.driver.Read()
	if err != nil {
		return err
	}

	cfg, err = fn(cfg)
	if err != nil {
		return err
	}

	return p.driver.Write(Normalize(cfg))
}

// Normalize fills unset values with defaults and clamps the rest into range.
func Normalize(cfg Config) Config {
	if cfg.Layout == "" {
		cfg.Layout = defaultConfig.Layout
	}

	cfg.General.GapsIn = max(cfg.General.GapsIn, 0)
	cfg.General.GapsOut = max(cfg.General.GapsOut, 0)
	cfg.General.BorderSize = max(cfg.General.BorderSize, 0)
	if cfg.General.FloatWidth <= 0 {
		cfg.General.FloatWidth = defaultConfig.General.FloatWidth
	}
	if cfg.General.FloatHeight <= 0 {
		cfg.General.FloatHeight = defaultConfig.General.FloatHeight
	}
	cfg.General.FloatWidth = max(cfg.General.FloatWidth, layout.MinFloatingSize)
	cfg.General.FloatHeight = max(cfg.General.FloatHeight, layout.MinFloatingSize)

	if cfg.Dwindle.DefaultSplitRatio == 0 {
		cfg.Dwindle.DefaultSplitRatio = defaultConfig.Dwindle.DefaultSplitRatio
	}
	cfg.Dwindle.DefaultSplitRatio = core.Clamp(cfg.Dwindle.DefaultSplitRatio, layout.MinSplitRatio, layout.MaxSplitRatio)
	if cfg.Dwindle.ForceSplit < 0 || cfg.Dwindle.ForceSplit > 2 {
		cfg.Dwindle.ForceSplit = 0
	}

	if cfg.Master.MFact == 0 {
		cfg.Master.MFact = defaultConfig.Master.MFact
	}
	cfg.Master.MFact = core.Clamp(cfg.Master.MFact, layout.MinSplitRatio, layout.MaxSplitRatio)
	if _, err := layout.ParseOrientation(cfg.Master.Orientation); err != nil {
		cfg.Master.Orientation = defaultConfig.Master.Orientation
	}

	if len(cfg.Group.ActiveBorder) == 0 {
		cfg.Group.ActiveBorder = append([]string{}, defaultConfig.Group.ActiveBorder...)
	}
	if len(cfg.Group.InactiveBorder) == 0 {
		cfg.Group.InactiveBorder = append([]string{}, defaultConfig.Group.InactiveBorder...)
	}

	cfg.Animations.DurationMS = max(cfg.Animations.DurationMS, 0)
	if cfg.Animations.WindowCurve == "" {
		cfg.Animations.WindowCurve = defaultConfig.Animations.WindowCurve
	}
	if cfg.Animations.Curves == nil {
		cfg.Animations.Curves = []Curve{}
	}

	if cfg.API.Port < 0 || cfg.API.Port > 65535 {
		cfg.API.Port = defaultConfig.API.Port
	}

	return cfg
}

// Validate reports problems Normalize cannot repair.
func Validate(cfg Config) error {
	if _, err := parseGradient(cfg.Group.ActiveBorder, 0); err != nil {
		return fmt.Errorf("group.active_border: %w", err)
	}
	if _, err := parseGradient(cfg.Group.InactiveBorder, 0); err != nil {
		return fmt.Errorf("group.inactive_border: %w", err)
	}
	for _, c := range cfg.Animations.Curves {
		if c.Name == "" {
			return errors.New("animations.curves: missing name")
		}
		if len(c.Points) != 4 {
			return fmt.Errorf("animations.curves.%s: expected 4 points, got %d", c.Name, len(c.Points))
		}
	}
	return nil
}

// LayoutConfig converts the file config into the layout engine's config.
func (cfg Config) LayoutConfig() (layout.Config, error) {
	orientation, err := layout.ParseOrientation(cfg.Master.Orientation)
	if err != nil {
		return layout.Config{}, err
	}
	active, err := parseGradient(cfg.Group.ActiveBorder, cfg.Group.Angle)
	if err != nil {
		return layout.Config{}, fmt.Errorf("group.active_border: %w", err)
	}
	inactive, err := parseGradient(cfg.Group.InactiveBorder, cfg.Group.Angle)
	if err != nil {
		return layout.Config{}, fmt.Errorf("group.inactive_border: %w", err)
	}

	return layout.Config{
		GapsIn:      cfg.General.GapsIn,
		GapsOut:     cfg.General.GapsOut,
		FloatWidth:  cfg.General.FloatWidth,
		FloatHeight: cfg.General.FloatHeight,
		Dwindle: layout.DwindleConfig{
			DefaultSplitRatio: cfg.Dwindle.DefaultSplitRatio,
			PreserveSplit:     cfg.Dwindle.PreserveSplit,
			ForceSplit:        cfg.Dwindle.ForceSplit,
			NoGapsWhenOnly:    cfg.Dwindle.NoGapsWhenOnly,
		},
		Master: layout.MasterConfig{
			MFact:       cfg.Master.MFact,
			NewIsMaster: cfg.Master.NewIsMaster,
			Orientation: orientation,
		},
		GroupActiveBorder:   active,
		GroupInactiveBorder: inactive,
	}, nil
}

// AnimationDuration is zero when animations are disabled.
func (cfg Config) AnimationDuration() time.Duration {
	if !cfg.Animations.Enabled {
		return 0
	}
	return time.Duration(cfg.Animations.DurationMS) * time.Millisecond
}

// Curves returns the built-in curves plus the configured ones. Curves with
// the wrong number of points are skipped.
func (cfg Config) Curves() anim.Curves {
	curves := anim.NewCurves()
	for _, c := range cfg.Animations.Curves {
		if c.Name == "" || len(c.Points) != 4 {
			continue
		}
		curves.Add(c.Name, geom.Vec(c.Points[0], c.Points[1]), geom.Vec(c.Points[2], c.Points[3]))
	}
	return curves
}

// parseGradient parses colours written as 0xAARRGGBB or #AARRGGBB.
func parseGradient(colors []string, angle float64) (layout.Gradient, error) {
	g := layout.Gradient{Colors: make([]uint32, 0, len(colors)), Angle: angle}
	for _, s := range colors {
		c, err := parseColor(s)
		if err != nil {
			return layout.Gradient{}, err
		}
		g.Colors = append(g.Colors, c)
	}
	return g, nil
}

func parseColor(s string) (uint32, error) {
	hex := strings.TrimSpace(s)
	hex = strings.TrimPrefix(strings.TrimPrefix(hex, "0x"), "#")
	if len(hex) != 8 && len(hex) != 6 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	c, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		c |= 0xff000000
	}
	return uint32(c), nil
}
