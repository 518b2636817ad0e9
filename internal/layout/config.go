package layout

type Config struct {
	GapsIn      float64
	GapsOut     float64
	FloatWidth  float64
	FloatHeight float64

	Dwindle DwindleConfig
	Master  MasterConfig

	GroupActiveBorder   Gradient
	GroupInactiveBorder Gradient
}

type DwindleConfig struct {
	DefaultSplitRatio float64
	// PreserveSplit keeps the axis a split got when it was created. Without
	// it, splits made without a direction follow the shape of their area.
	PreserveSplit bool
	// ForceSplit places new windows: 0 by direction, 1 first, 2 second.
	ForceSplit     int
	NoGapsWhenOnly bool
}

type MasterConfig struct {
	MFact       float64
	NewIsMaster bool
	Orientation Orientation
}

func DefaultConfig() Config {
	return Config{
		FloatWidth:  800,
		FloatHeight: 600,
		Dwindle: DwindleConfig{
			DefaultSplitRatio: 0.5,
		},
		Master: MasterConfig{
			MFact:       0.55,
			Orientation: OrientationLeft,
		},
		GroupActiveBorder:   Gradient{Colors: []uint32{0x66ffff00}},
		GroupInactiveBorder: Gradient{Colors: []uint32{0x66777700}},
	}
}
