package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPreset() Preset {
	return Preset{
		Name:           "btc-eth-70-30",
		InitialCapital: 10000,
		Assets: []PresetAsset{
			{Symbol: "BTC", Weight: 70},
			{Symbol: "ETH", Weight: 30},
		},
	}
}

func TestPresetValidate(t *testing.T) {
	p := validPreset()
	assert.NoError(t, p.Validate())
}

func TestPresetValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Preset)
	}{
		{"empty name", func(p *Preset) { p.Name = "" }},
		{"zero capital", func(p *Preset) { p.InitialCapital = 0 }},
		{"no assets", func(p *Preset) { p.Assets = nil }},
		{"blank symbol", func(p *Preset) { p.Assets[0].Symbol = "  " }},
		{"negative weight", func(p *Preset) { p.Assets[0].Weight = -70 }},
		{"weights under 100", func(p *Preset) { p.Assets[1].Weight = 20 }},
		{"weights over 100", func(p *Preset) { p.Assets[1].Weight = 40 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPreset()
			tt.mutate(&p)
			err := p.Validate()
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestPresetValidate_ToleratesFloatNoise(t *testing.T) {
	p := validPreset()
	p.Assets[0].Weight = 69.9999
	p.Assets[1].Weight = 30.0005
	assert.NoError(t, p.Validate())
}
