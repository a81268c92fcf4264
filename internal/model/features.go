package model

// FeatureSchemaVersion tags emitted feature vectors. The field set and the
// Sentinel convention are a compatibility contract with the trained model:
// any change to either requires bumping this tag.
const FeatureSchemaVersion = "v2"

// Sentinel marks a trend feature that could not be computed because fewer
// than two observations exist. The downstream model treats it as its own
// signal, so it must stay distinct from both zero and absent-field nulls.
const Sentinel = -999

// MetricTrend is the trend feature block computed per tracked metric.
type MetricTrend struct {
	Latest         float64 `json:"latest"`
	PctChange      float64 `json:"pct_change"`
	YearsDeclining float64 `json:"years_declining"`
	SignFlipped    float64 `json:"sign_flipped"` // 1 when positive earlier, negative latest
}

// FeatureVector is the per-company trend record consumed by the external
// training pipeline. All fields are plain numerics with Sentinel filling in
// for anything unobserved or lacking history.
type FeatureVector struct {
	SchemaVersion  string `json:"schema_version"`
	CompanyNumber  string `json:"company_number"`
	YearsAvailable int    `json:"years_available"`
	LatestYear     int    `json:"latest_year"`

	NetAssets        MetricTrend `json:"net_assets"`
	TotalAssets      MetricTrend `json:"total_assets"`
	Cash             MetricTrend `json:"cash"`
	RetainedEarnings MetricTrend `json:"retained_earnings"`
	Turnover         MetricTrend `json:"turnover"`
	Employees        MetricTrend `json:"employees"`

	CurrentRatio      float64 `json:"current_ratio"`
	CurrentRatioTrend float64 `json:"current_ratio_trend"`
	Leverage          float64 `json:"leverage"`
	CashRatio         float64 `json:"cash_ratio"`
}
