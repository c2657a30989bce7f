// Package feedback maps extracted speech metrics to human-readable
// coaching suggestions and chart-ready data.
package feedback

import (
	"github.com/speakbetter/speech-coach/pkg/audio/analysis"
)

// Delivery thresholds. Speech rate is in speech segments per minute
// (the extractor's proxy unit), not literal words per minute.
const (
	SpeechRateSlow = 100.0
	SpeechRateFast = 200.0

	PauseCountLow  = 3
	PauseCountHigh = 15

	VolumeVariationLow = 0.1
)

// MissingFieldError reports a required field absent from the input of
// an otherwise total function.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}

// Report bundles the ordered suggestions with the flat metric map used
// by trend charts.
type Report struct {
	Suggestions []string           `json:"suggestions"`
	ChartData   map[string]float64 `json:"chart_data"`
}

// Generate evaluates the threshold rule table over res. Each category
// contributes at most one suggestion: exactly one pacing remark, an
// optional pause advisory, an optional volume advisory, in that order.
// Generate is deterministic; identical input yields an identical report.
func Generate(res *analysis.Result) (*Report, error) {
	if res == nil {
		return nil, &MissingFieldError{Field: "analysis"}
	}

	var suggestions []string

	switch {
	case res.SpeechRate < SpeechRateSlow:
		suggestions = append(suggestions, "Try speaking a bit faster to maintain engagement.")
	case res.SpeechRate > SpeechRateFast:
		suggestions = append(suggestions, "Consider slowing down slightly for better clarity.")
	default:
		suggestions = append(suggestions, "Your speaking pace is good!")
	}

	if res.PauseCount < PauseCountLow {
		suggestions = append(suggestions, "Add more strategic pauses to emphasize key points.")
	} else if res.PauseCount > PauseCountHigh {
		suggestions = append(suggestions, "Try to reduce unnecessary pauses for smoother delivery.")
	}

	if res.VolumeVariation < VolumeVariationLow {
		suggestions = append(suggestions, "Try varying your volume more to add emphasis.")
	}

	return &Report{
		Suggestions: suggestions,
		ChartData: map[string]float64{
			"speech_rate":      res.SpeechRate,
			"pause_count":      float64(res.PauseCount),
			"volume_variation": res.VolumeVariation,
			"pitch_variation":  res.PitchVariation,
			"energy_level":     res.EnergyLevel,
		},
	}, nil
}
