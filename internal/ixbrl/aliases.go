package ixbrl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Canonical field keys. These are the names the alias table and the YAML
// extension format use; the resolver maps them onto statement fields.
const (
	fieldTurnover              = "turnover"
	fieldCostOfSales           = "cost_of_sales"
	fieldGrossProfit           = "gross_profit"
	fieldEBIT                  = "ebit"
	fieldProfitBeforeTax       = "profit_before_tax"
	fieldNetProfit             = "net_profit"
	fieldCurrentAssets         = "current_assets"
	fieldFixedAssets           = "fixed_assets"
	fieldTotalAssets           = "total_assets"
	fieldCurrentLiabilities    = "current_liabilities"
	fieldNonCurrentLiabilities = "non_current_liabilities"
	fieldTotalLiabilities      = "total_liabilities"
	fieldNetAssets             = "net_assets"
	fieldRetainedEarnings      = "retained_earnings"
	fieldCash                  = "cash"
	fieldShareCapital          = "share_capital"
	fieldEmployees             = "employees"
)

// durationFields are income-statement concepts that bind to duration
// contexts. Everything else is a balance-sheet concept bound to instants.
var durationFields = map[string]bool{
	fieldTurnover:        true,
	fieldCostOfSales:     true,
	fieldGrossProfit:     true,
	fieldEBIT:            true,
	fieldProfitBeforeTax: true,
	fieldNetProfit:       true,
	fieldEmployees:       true,
}

// defaultAliases maps canonical fields to taxonomy concept suffixes. UK GAAP,
// FRS101/102 and older taxonomies all name these concepts differently; a
// fact matches when its local name equals or ends with one of the aliases,
// case-insensitively. The table is extensible at runtime via LoadAliases.
var defaultAliases = map[string][]string{
	fieldTurnover: {
		"Turnover", "TurnoverRevenue", "Revenue",
		"TurnoverGrossIncome", "RevenueFromContractsWithCustomers",
	},
	fieldCostOfSales: {
		"CostSales", "CostOfSales",
	},
	fieldGrossProfit: {
		"GrossProfitLoss", "GrossProfit",
	},
	fieldEBIT: {
		"OperatingProfitLoss", "OperatingProfit",
		"ProfitLossOnOrdinaryActivitiesBeforeInterestAndTax",
		"ProfitLossBeforeInterestPayableSimilarCharges",
	},
	fieldProfitBeforeTax: {
		"ProfitLossBeforeTax",
		"ProfitLossOnOrdinaryActivitiesBeforeTax",
	},
	fieldNetProfit: {
		"ProfitLossForPeriod", "ProfitLossForYear",
		"ProfitLossForFinancialYear",
		"ProfitLoss", "ProfitLossAttributableToOwnersOfParent",
	},
	fieldCurrentAssets: {
		"CurrentAssets", "TotalCurrentAssets",
	},
	fieldFixedAssets: {
		"FixedAssets", "NonCurrentAssets", "TangibleFixedAssets",
	},
	fieldTotalAssets: {
		"TotalAssets", "TotalAssetsLessCurrentLiabilities",
	},
	fieldCurrentLiabilities: {
		"CreditorsDueWithinOneYear", "CurrentLiabilities",
		"CreditorAmountsFallingDueWithinOneYear",
	},
	fieldNonCurrentLiabilities: {
		"CreditorsDueAfterOneYear", "NonCurrentLiabilities",
		"CreditorsAmountsFallingDueAfterMoreThanOneYear",
		"CreditorAmountsFallingDueAfterOneYear",
	},
	fieldTotalLiabilities: {
		"TotalLiabilities",
	},
	fieldNetAssets: {
		"NetAssetsLiabilities", "NetAssets",
		"TotalNetAssets", "NetAssetsIncludingPensionAssetLiability",
	},
	fieldRetainedEarnings: {
		"RetainedEarningsAccumulatedLosses",
		"ProfitLossAccountReserve",
		"RetainedEarnings",
	},
	fieldCash: {
		"CashBankInHand", "CashCashEquivalents",
		"CashAtBankInHand", "CashBankOnHand",
	},
	fieldShareCapital: {
		"CalledUpShareCapital", "ShareCapital",
	},
	fieldEmployees: {
		"AverageNumberEmployeesDuringPeriod",
		"EntityAverageNumberOfEmployees",
		"AverageNumberOfEmployees",
		"EmployeesTotal",
	},
}

// LoadAliases reads additional concept aliases from a YAML file keyed by
// canonical field name. New taxonomy versions can be supported without a
// code change by shipping an updated alias file.
func LoadAliases(path string) (map[string][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}

	var aliases map[string][]string
	if err := yaml.Unmarshal(raw, &aliases); err != nil {
		return nil, fmt.Errorf("failed to parse alias file: %w", err)
	}

	for field := range aliases {
		if _, known := defaultAliases[field]; !known {
			return nil, fmt.Errorf("alias file references unknown field %q", field)
		}
	}

	return aliases, nil
}
