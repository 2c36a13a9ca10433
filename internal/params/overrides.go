package params

// Overrides is a partial Config. Non-nil fields replace the base value.
type Overrides struct {
	Sensitivity    *float64 `json:"sensitivity,omitempty" yaml:"sensitivity,omitempty"`
	Smoothing      *float64 `json:"smoothing,omitempty" yaml:"smoothing,omitempty"`
	NoiseThreshold *int     `json:"noiseThreshold,omitempty" yaml:"noiseThreshold,omitempty"`
	Density        *int     `json:"density,omitempty" yaml:"density,omitempty"`
	FreqRange      *int     `json:"freqRange,omitempty" yaml:"freqRange,omitempty"`
	Palette        *string  `json:"palette,omitempty" yaml:"palette,omitempty"`
	LineWidth      *float64 `json:"lineWidth,omitempty" yaml:"lineWidth,omitempty"`
	Glow           *float64 `json:"glow,omitempty" yaml:"glow,omitempty"`
	Padding        *float64 `json:"padding,omitempty" yaml:"padding,omitempty"`
	BarWidth       *float64 `json:"barWidth,omitempty" yaml:"barWidth,omitempty"`
	Speed          *float64 `json:"speed,omitempty" yaml:"speed,omitempty"`
	Scale          *float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// Merge applies o over base.
func Merge(base Config, o Overrides) Config {
	setF(&base.Sensitivity, o.Sensitivity)
	setF(&base.Smoothing, o.Smoothing)
	setI(&base.NoiseThreshold, o.NoiseThreshold)
	setI(&base.Density, o.Density)
	setI(&base.FreqRange, o.FreqRange)
	if o.Palette != nil {
		base.Palette = *o.Palette
	}
	setF(&base.LineWidth, o.LineWidth)
	setF(&base.Glow, o.Glow)
	setF(&base.Padding, o.Padding)
	setF(&base.BarWidth, o.BarWidth)
	setF(&base.Speed, o.Speed)
	setF(&base.Scale, o.Scale)
	return base
}

// Combine layers next over o; fields set in next win.
func (o Overrides) Combine(next Overrides) Overrides {
	pick(&o.Sensitivity, next.Sensitivity)
	pick(&o.Smoothing, next.Smoothing)
	pick(&o.NoiseThreshold, next.NoiseThreshold)
	pick(&o.Density, next.Density)
	pick(&o.FreqRange, next.FreqRange)
	pick(&o.Palette, next.Palette)
	pick(&o.LineWidth, next.LineWidth)
	pick(&o.Glow, next.Glow)
	pick(&o.Padding, next.Padding)
	pick(&o.BarWidth, next.BarWidth)
	pick(&o.Speed, next.Speed)
	pick(&o.Scale, next.Scale)
	return o
}

// Diff returns the overrides that turn base into c.
func Diff(base, c Config) Overrides {
	var o Overrides
	if c.Sensitivity != base.Sensitivity {
		o.Sensitivity = Ptr(c.Sensitivity)
	}
	if c.Smoothing != base.Smoothing {
		o.Smoothing = Ptr(c.Smoothing)
	}
	if c.NoiseThreshold != base.NoiseThreshold {
		o.NoiseThreshold = Ptr(c.NoiseThreshold)
	}
	if c.Density != base.Density {
		o.Density = Ptr(c.Density)
	}
	if c.FreqRange != base.FreqRange {
		o.FreqRange = Ptr(c.FreqRange)
	}
	if c.Palette != base.Palette {
		o.Palette = Ptr(c.Palette)
	}
	if c.LineWidth != base.LineWidth {
		o.LineWidth = Ptr(c.LineWidth)
	}
	if c.Glow != base.Glow {
		o.Glow = Ptr(c.Glow)
	}
	if c.Padding != base.Padding {
		o.Padding = Ptr(c.Padding)
	}
	if c.BarWidth != base.BarWidth {
		o.BarWidth = Ptr(c.BarWidth)
	}
	if c.Speed != base.Speed {
		o.Speed = Ptr(c.Speed)
	}
	if c.Scale != base.Scale {
		o.Scale = Ptr(c.Scale)
	}
	return o
}

// Ptr returns a pointer to v, for building Overrides literals.
func Ptr[T any](v T) *T { return &v }

func pick[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func setF(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setI(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
