package config

var defaultConfig = Config{
	Layout: "dwindle",
	General: General{
		GapsIn:      0,
		GapsOut:     0,
		BorderSize:  1,
		FloatWidth:  800,
		FloatHeight: 600,
	},
	Dwindle: Dwindle{
		DefaultSplitRatio: 0.5,
	},
	Master: Master{
		MFact:       0.55,
		Orientation: "left",
	},
	Group: Group{
		ActiveBorder:   []string{"0x66ffff00"},
		InactiveBorder: []string{"0x66777700"},
	},
	Animations: Animations{
		Enabled:     true,
		DurationMS:  200,
		WindowCurve: "default",
		Curves:      []Curve{},
	},
	Events: Events{
		Socket: "",
	},
	API: API{
		Host: "127.0.0.1",
		Port: 8080,
	},
}

func DefaultConfig() Config {
	cfg := defaultConfig
	cfg.Group.ActiveBorder = append([]string{}, defaultConfig.Group.ActiveBorder...)
	cfg.Group.InactiveBorder = append([]string{}, defaultConfig.Group.InactiveBorder...)
	cfg.Animations.Curves = []Curve{}
	return cfg
}

type Config struct {
	Layout     string     `json:"layout" yaml:"layout" toml:"layout"`
	General    General    `json:"general" yaml:"general" toml:"general"`
	Dwindle    Dwindle    `json:"dwindle" yaml:"dwindle" toml:"dwindle"`
	Master     Master     `json:"master" yaml:"master" toml:"master"`
	Group      Group      `json:"group" yaml:"group" toml:"group"`
	Animations Animations `json:"animations" yaml:"animations" toml:"animations"`
	Events     Events     `json:"events" yaml:"events" toml:"events"`
	API        API        `json:"api" yaml:"api" toml:"api"`
}

type General struct {
	GapsIn      float64 `json:"gaps_in" yaml:"gaps_in" toml:"gaps_in"`
	GapsOut     float64 `json:"gaps_out" yaml:"gaps_out" toml:"gaps_out"`
	BorderSize  int     `json:"border_size" yaml:"border_size" toml:"border_size"`
	FloatWidth  float64 `json:"float_width" yaml:"float_width" toml:"float_width"`
	FloatHeight float64 `json:"float_height" yaml:"float_height" toml:"float_height"`
}

type Dwindle struct {
	DefaultSplitRatio float64 `json:"default_split_ratio" yaml:"default_split_ratio" toml:"default_split_ratio"`
	PreserveSplit     bool    `json:"preserve_split" yaml:"preserve_split" toml:"preserve_split"`
	ForceSplit        int     `json:"force_split" yaml:"force_split" toml:"force_split"` // [0 auto, 1 first, 2 second]
	NoGapsWhenOnly    bool    `json:"no_gaps_when_only" yaml:"no_gaps_when_only" toml:"no_gaps_when_only"`
}

type Master struct {
	MFact       float64 `json:"mfact" yaml:"mfact" toml:"mfact"`
	NewIsMaster bool    `json:"new_is_master" yaml:"new_is_master" toml:"new_is_master"`
	Orientation string  `json:"orientation" yaml:"orientation" toml:"orientation"` // [left, right, top, bottom]
}

type Group struct {
	ActiveBorder   []string `json:"active_border" yaml:"active_border" toml:"active_border"`
	InactiveBorder []string `json:"inactive_border" yaml:"inactive_border" toml:"inactive_border"`
	Angle          float64  `json:"angle" yaml:"angle" toml:"angle"`
}

type Animations struct {
	Enabled     bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	DurationMS  int     `json:"duration_ms" yaml:"duration_ms" toml:"duration_ms"`
	WindowCurve string  `json:"window_curve" yaml:"window_curve" toml:"window_curve"`
	Curves      []Curve `json:"curves" yaml:"curves" toml:"curves"`
}

type Curve struct {
	Name   string    `json:"name" yaml:"name" toml:"name"`
	Points []float64 `json:"points" yaml:"points" toml:"points"` // [x1, y1, x2, y2]
}

type Events struct {
	Socket string `json:"socket" yaml:"socket" toml:"socket"`
}

type API struct {
	Host string `json:"host" yaml:"host" toml:"host"`
	Port int    `json:"port" yaml:"port" toml:"port"`
}
