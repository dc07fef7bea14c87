package domain

// PresetAsset is one leg of a preset allocation.
type PresetAsset struct {
	Symbol string  `yaml:"symbol" json:"symbol"`
	Weight float64 `yaml:"weight" json:"weight"` // percent of total, 0-100
}

// Preset describes a named, daily-rebalanced target allocation, e.g.
// "btc-only" (100% BTC) or "btc-eth-70-30".
type Preset struct {
	Name           string        `yaml:"name" json:"name"`
	InitialCapital float64       `yaml:"initial_capital" json:"initial_capital"`
	Assets         []PresetAsset `yaml:"assets" json:"assets"`
}

// Validate ensures the preset's weights sum to 100 percent.
func (p *Preset) Validate() error {
	if p.Name == "" {
		return NewValidationError("name", "cannot be empty")
	}
	if p.InitialCapital <= 0 {
		return NewValidationError("initial_capital", "must be positive")
	}
	if len(p.Assets) == 0 {
		return NewValidationError("assets", "cannot be empty")
	}
	total := 0.0
	for _, a := range p.Assets {
		if NormalizeSymbol(a.Symbol) == "" {
			return NewValidationError("assets", "asset symbol cannot be empty")
		}
		if a.Weight <= 0 {
			return NewValidationError("assets", "asset weight must be positive")
		}
		total += a.Weight
	}
	// Tolerate float noise from YAML parsing.
	if total < 99.999 || total > 100.001 {
		return NewValidationError("assets", "weights must sum to 100")
	}
	return nil
}
