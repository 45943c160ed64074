package auphonic

import (
	"slices"
	"strconv"
	"strings"
)

// Output formats accepted by Configure.
const (
	FormatMP3  = "mp3"
	FormatWAV  = "wav"
	FormatALAC = "alac"
	FormatAAC  = "aac"
)

// Noise reduction sentinels. Any other accepted amount is in dB.
const (
	NoiseReductionAuto     = 0
	NoiseReductionDisabled = -1
)

var (
	supportedFormats         = []string{FormatMP3, FormatWAV, FormatALAC, FormatAAC}
	supportedBitrates        = []int{32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
	supportedLoudnessTargets = []int{-13, -14, -15, -16, -18, -19, -20, -23, -24, -26, -27, -31}
	supportedNoiseAmounts    = []int{NoiseReductionAuto, NoiseReductionDisabled, 3, 6, 9, 12, 15, 18, 24, 30, 100}
)

// Setting field names, in declaration order.
const (
	FieldOutputFormat          = "output_format"
	FieldBitrate               = "bitrate"
	FieldAdaptiveLeveler       = "adaptive_leveler"
	FieldLoudnessNormalization = "loudness_normalization"
	FieldLoudnessTarget        = "loudness_target"
	FieldFiltering             = "filtering"
	FieldNoiseHumReduction     = "noise_hum_reduction"
	FieldNoiseReductionAmount  = "noise_reduction_amount"
)

// Settings is the bundle of encoding and algorithm options sent to a
// production. The zero value has nothing set; every field must be set
// explicitly before Validate succeeds.
type Settings struct {
	outputFormat          string
	bitrate               int
	adaptiveLeveler       bool
	loudnessNormalization bool
	loudnessTarget        int
	filtering             bool
	noiseHumReduction     bool
	noiseReductionAmount  int

	outputFormatSet          bool
	bitrateSet               bool
	adaptiveLevelerSet       bool
	loudnessNormalizationSet bool
	loudnessTargetSet        bool
	filteringSet             bool
	noiseHumReductionSet     bool
	noiseReductionAmountSet  bool
}

// SetOutputFormat accepts mp3, wav, alac or aac.
func (s *Settings) SetOutputFormat(format string) error {
	if !slices.Contains(supportedFormats, format) {
		return &ParameterNotSupportedError{Parameter: FieldOutputFormat, Value: format}
	}
	s.outputFormat = format
	s.outputFormatSet = true
	return nil
}

// SetBitrate accepts the fixed kbps ladder from 32 to 320.
func (s *Settings) SetBitrate(kbps int) error {
	if !slices.Contains(supportedBitrates, kbps) {
		return &ParameterNotSupportedError{Parameter: FieldBitrate, Value: strconv.Itoa(kbps)}
	}
	s.bitrate = kbps
	s.bitrateSet = true
	return nil
}

// SetLoudnessTarget accepts the supported LUFS targets.
func (s *Settings) SetLoudnessTarget(lufs int) error {
	if !slices.Contains(supportedLoudnessTargets, lufs) {
		return &ParameterNotSupportedError{Parameter: FieldLoudnessTarget, Value: strconv.Itoa(lufs)}
	}
	s.loudnessTarget = lufs
	s.loudnessTargetSet = true
	return nil
}

// SetNoiseReductionAmount accepts a supported dB amount or one of the
// NoiseReductionAuto / NoiseReductionDisabled sentinels.
func (s *Settings) SetNoiseReductionAmount(amount int) error {
	if !slices.Contains(supportedNoiseAmounts, amount) {
		return &ParameterNotSupportedError{Parameter: FieldNoiseReductionAmount, Value: strconv.Itoa(amount)}
	}
	s.noiseReductionAmount = amount
	s.noiseReductionAmountSet = true
	return nil
}

func (s *Settings) SetAdaptiveLeveler(enabled bool) {
	s.adaptiveLeveler = enabled
	s.adaptiveLevelerSet = true
}

func (s *Settings) SetLoudnessNormalization(enabled bool) {
	s.loudnessNormalization = enabled
	s.loudnessNormalizationSet = true
}

func (s *Settings) SetFiltering(enabled bool) {
	s.filtering = enabled
	s.filteringSet = true
}

func (s *Settings) SetNoiseHumReduction(enabled bool) {
	s.noiseHumReduction = enabled
	s.noiseHumReductionSet = true
}

func (s Settings) OutputFormat() string        { return s.outputFormat }
func (s Settings) Bitrate() int                { return s.bitrate }
func (s Settings) AdaptiveLeveler() bool       { return s.adaptiveLeveler }
func (s Settings) LoudnessNormalization() bool { return s.loudnessNormalization }
func (s Settings) LoudnessTarget() int         { return s.loudnessTarget }
func (s Settings) Filtering() bool             { return s.filtering }
func (s Settings) NoiseHumReduction() bool     { return s.noiseHumReduction }
func (s Settings) NoiseReductionAmount() int   { return s.noiseReductionAmount }

// Validate reports every unset field at once, in declaration order.
func (s Settings) Validate() error {
	var missing []string
	if !s.outputFormatSet {
		missing = append(missing, FieldOutputFormat)
	}
	if !s.bitrateSet {
		missing = append(missing, FieldBitrate)
	}
	if !s.adaptiveLevelerSet {
		missing = append(missing, FieldAdaptiveLeveler)
	}
	if !s.loudnessNormalizationSet {
		missing = append(missing, FieldLoudnessNormalization)
	}
	if !s.loudnessTargetSet {
		missing = append(missing, FieldLoudnessTarget)
	}
	if !s.filteringSet {
		missing = append(missing, FieldFiltering)
	}
	if !s.noiseHumReductionSet {
		missing = append(missing, FieldNoiseHumReduction)
	}
	if !s.noiseReductionAmountSet {
		missing = append(missing, FieldNoiseReductionAmount)
	}
	if len(missing) > 0 {
		return &IncompleteSettingsError{Fields: missing}
	}
	return nil
}

// ParseNoiseReductionAmount converts "auto", "disabled" or a dB number into
// the amount understood by SetNoiseReductionAmount.
func ParseNoiseReductionAmount(value string) (int, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "":
		return 0, &ParameterNotSupportedError{Parameter: FieldNoiseReductionAmount, Value: value}
	case "auto":
		return NoiseReductionAuto, nil
	case "disabled", "off":
		return NoiseReductionDisabled, nil
	}
	amount, err := strconv.Atoi(strings.TrimSuffix(trimmed, "db"))
	if err != nil || !slices.Contains(supportedNoiseAmounts, amount) {
		return 0, &ParameterNotSupportedError{Parameter: FieldNoiseReductionAmount, Value: value}
	}
	return amount, nil
}

// NoiseReductionLabel renders an amount the way ParseNoiseReductionAmount reads it.
func NoiseReductionLabel(amount int) string {
	switch amount {
	case NoiseReductionAuto:
		return "auto"
	case NoiseReductionDisabled:
		return "disabled"
	default:
		return strconv.Itoa(amount) + " dB"
	}
}
