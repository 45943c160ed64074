package optimize

import (
	"podopt/internal/auphonic"
	"podopt/internal/config"
)

// DefaultSettings builds the settings bundle used by the optimize trigger
// from the [optimization] section.
func DefaultSettings(cfg *config.Config) (auphonic.Settings, error) {
	opt := cfg.Optimization
	var settings auphonic.Settings
	if err := settings.SetOutputFormat(opt.OutputFormat); err != nil {
		return auphonic.Settings{}, err
	}
	if err := settings.SetBitrate(opt.Bitrate); err != nil {
		return auphonic.Settings{}, err
	}
	if err := settings.SetLoudnessTarget(opt.LoudnessTarget); err != nil {
		return auphonic.Settings{}, err
	}
	amount, err := auphonic.ParseNoiseReductionAmount(opt.NoiseReductionAmount)
	if err != nil {
		return auphonic.Settings{}, err
	}
	if err := settings.SetNoiseReductionAmount(amount); err != nil {
		return auphonic.Settings{}, err
	}
	settings.SetAdaptiveLeveler(opt.AdaptiveLeveler)
	settings.SetLoudnessNormalization(opt.LoudnessNormalization)
	settings.SetFiltering(opt.Filtering)
	settings.SetNoiseHumReduction(opt.NoiseHumReduction)
	return settings, nil
}
