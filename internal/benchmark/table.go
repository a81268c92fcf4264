// Package benchmark loads the sector benchmark table: expected ratio ranges
// per 2-digit SIC sector plus the calibration constants for the
// balance-sheet-only fallback score. The table is read-only configuration,
// versioned and replaceable without a code change.
package benchmark

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clearview-uk/clearview/internal/common"
)

// Range is an expected low/high band for a ratio within a sector.
type Range struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Mid returns the midpoint of the range.
func (r Range) Mid() float64 {
	return (r.Low + r.High) / 2
}

// Sector holds the expected operating profile of one 2-digit SIC sector,
// used by the MODELLED tier to estimate missing P&L-derived ratios.
type Sector struct {
	Name                string  `yaml:"name"`
	EBITMargin          Range   `yaml:"ebit_margin"`
	AssetTurnover       Range   `yaml:"asset_turnover"`
	TurnoverPerEmployee float64 `yaml:"turnover_per_employee"`
}

// Calibration parameterises the balance-sheet-only fallback score. The
// constants live in configuration, never in code, so they can be revised
// against observed outcomes without a release.
type Calibration struct {
	Intercept          float64 `yaml:"intercept"`
	LeverageWeight     float64 `yaml:"leverage_weight"`
	NetAssetSignWeight float64 `yaml:"net_asset_sign_weight"`
	CurrentRatioWeight float64 `yaml:"current_ratio_weight"`
	CurrentRatioCap    float64 `yaml:"current_ratio_cap"`
}

// Table is the full benchmark configuration injected at startup.
type Table struct {
	Version     string            `yaml:"version"`
	Calibration Calibration       `yaml:"calibration"`
	Sectors     map[string]Sector `yaml:"sectors"`
}

// Load reads and validates a benchmark table from a YAML file.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark table: %w", err)
	}

	var table Table
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark table: %w", err)
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate checks the table is internally consistent.
func (t *Table) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("%w: benchmark table has no version", common.ErrInvalidConfig)
	}
	if t.Calibration.CurrentRatioCap <= 0 {
		return fmt.Errorf("%w: calibration current_ratio_cap must be positive", common.ErrInvalidConfig)
	}
	for code, sector := range t.Sectors {
		if len(code) != 2 {
			return fmt.Errorf("%w: sector code %q is not a 2-digit SIC prefix", common.ErrInvalidConfig, code)
		}
		if sector.EBITMargin.Low > sector.EBITMargin.High {
			return fmt.Errorf("%w: sector %s ebit_margin range inverted", common.ErrInvalidConfig, code)
		}
		if sector.AssetTurnover.Low > sector.AssetTurnover.High {
			return fmt.Errorf("%w: sector %s asset_turnover range inverted", common.ErrInvalidConfig, code)
		}
	}
	return nil
}

// Lookup finds the sector entry for a SIC code, matching on its 2-digit
// prefix. A miss returns ErrNoBenchmark, which callers treat as a degrade
// signal rather than a failure.
func (t *Table) Lookup(sicCode string) (Sector, error) {
	code := strings.TrimSpace(sicCode)
	if len(code) < 2 {
		return Sector{}, fmt.Errorf("%w: %q", common.ErrNoBenchmark, sicCode)
	}
	sector, ok := t.Sectors[code[:2]]
	if !ok {
		return Sector{}, fmt.Errorf("%w: %q", common.ErrNoBenchmark, sicCode)
	}
	return sector, nil
}
