package score

import "github.com/clearview-uk/clearview/internal/model"

// ratingBand pairs a band with its inclusive lower threshold on the score
// axis. Thresholds are strictly descending and the final band is a
// catch-all, so the mapping is total, non-overlapping and gap-free.
type ratingBand struct {
	threshold float64
	band      model.Band
}

var ratingBands = []ratingBand{
	{3.0, model.Band{Grade: "A", Label: "Strong", Description: "Low risk. Well capitalised with healthy coverage."}},
	{2.6, model.Band{Grade: "B", Label: "Good", Description: "Moderate-low risk. Fundamentally sound."}},
	{1.8, model.Band{Grade: "C", Label: "Fair", Description: "Some concerns. Monitor closely."}},
	{1.1, model.Band{Grade: "D", Label: "Weak", Description: "Elevated risk. Significant concerns present."}},
	{0.0, model.Band{Grade: "E", Label: "Poor", Description: "High risk. Multiple warning signs."}},
}

var criticalBand = model.Band{Grade: "F", Label: "Critical", Description: "Very high risk. May be insolvent."}

// MapRating converts a score into its rating band. Pure and deterministic:
// identical scores always map to the identical band.
func MapRating(score float64) model.Band {
	for _, rb := range ratingBands {
		if score >= rb.threshold {
			return rb.band
		}
	}
	return criticalBand
}
