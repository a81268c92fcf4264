package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clearview-uk/clearview/internal/model"
)

// statementColumns is the column order shared by the insert and select
// queries in this file. Keep the two query strings in sync with it.
const statementColumns = `company_number, period_end, period_start,
	turnover, cost_of_sales, gross_profit, ebit, profit_before_tax, net_profit,
	current_assets, fixed_assets, total_assets,
	current_liabilities, non_current_liabilities, total_liabilities,
	net_assets, retained_earnings, cash, share_capital, employees, ambiguities`

// SaveStatements upserts parsed financial statements. Re-parsing the same
// filing replaces the stored row, so a re-run converges instead of duplicating.
func (s *SQLiteStorage) SaveStatements(ctx context.Context, statements []model.FinancialStatement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStatements(statements); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO statements (`+statementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, st := range statements {
		ambiguitiesJSON := ""
		if len(st.Ambiguities) > 0 {
			b, marshalErr := json.Marshal(st.Ambiguities)
			if marshalErr != nil {
				return fmt.Errorf("failed to marshal ambiguities for %s: %w", st.CompanyNumber, marshalErr)
			}
			ambiguitiesJSON = string(b)
		}

		_, err = stmt.ExecContext(ctx,
			st.CompanyNumber,
			st.PeriodEnd,
			st.PeriodStart,
			nullFloat(st.Turnover),
			nullFloat(st.CostOfSales),
			nullFloat(st.GrossProfit),
			nullFloat(st.EBIT),
			nullFloat(st.ProfitBeforeTax),
			nullFloat(st.NetProfit),
			nullFloat(st.CurrentAssets),
			nullFloat(st.FixedAssets),
			nullFloat(st.TotalAssets),
			nullFloat(st.CurrentLiabilities),
			nullFloat(st.NonCurrentLiabilities),
			nullFloat(st.TotalLiabilities),
			nullFloat(st.NetAssets),
			nullFloat(st.RetainedEarnings),
			nullFloat(st.Cash),
			nullFloat(st.ShareCapital),
			nullFloat(st.Employees),
			ambiguitiesJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to insert statement %s/%s: %w",
				st.CompanyNumber, st.PeriodEnd.Format("2006-01-02"), err)
		}
	}

	return tx.Commit()
}

// GetStatements returns all stored statements for a company, newest first.
func (s *SQLiteStorage) GetStatements(ctx context.Context, companyNumber string) ([]model.FinancialStatement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(companyNumber, "companyNumber"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+statementColumns+`
		FROM statements
		WHERE company_number = ?
		ORDER BY period_end DESC
	`, companyNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var statements []model.FinancialStatement
	for rows.Next() {
		st, scanErr := scanStatement(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		statements = append(statements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statements: %w", err)
	}

	return statements, nil
}

// HasStatement reports whether a statement for the given company and period
// end is already stored. The parse stage uses it to skip work on resume.
func (s *SQLiteStorage) HasStatement(ctx context.Context, companyNumber string, periodEnd time.Time) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(companyNumber, "companyNumber"); err != nil {
		return false, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM statements
		WHERE company_number = ? AND period_end = ?
	`, companyNumber, periodEnd).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check statement: %w", err)
	}

	return count > 0, nil
}

// ListCompanies returns the distinct company numbers with stored statements.
func (s *SQLiteStorage) ListCompanies(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT company_number FROM statements ORDER BY company_number
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var companies []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("failed to scan company number: %w", err)
		}
		companies = append(companies, number)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating companies: %w", err)
	}

	return companies, nil
}

func scanStatement(rows *sql.Rows) (model.FinancialStatement, error) {
	var st model.FinancialStatement
	var (
		turnover, costOfSales, grossProfit, ebit, pbt, netProfit    sql.NullFloat64
		currentAssets, fixedAssets, totalAssets                     sql.NullFloat64
		currentLiabilities, nonCurrentLiabilities, totalLiabilities sql.NullFloat64
		netAssets, retainedEarnings, cash, shareCapital, employees  sql.NullFloat64
		ambiguitiesJSON                                             string
	)

	err := rows.Scan(
		&st.CompanyNumber,
		&st.PeriodEnd,
		&st.PeriodStart,
		&turnover, &costOfSales, &grossProfit, &ebit, &pbt, &netProfit,
		&currentAssets, &fixedAssets, &totalAssets,
		&currentLiabilities, &nonCurrentLiabilities, &totalLiabilities,
		&netAssets, &retainedEarnings, &cash, &shareCapital, &employees,
		&ambiguitiesJSON,
	)
	if err != nil {
		return st, fmt.Errorf("failed to scan statement: %w", err)
	}

	st.Turnover = floatPtr(turnover)
	st.CostOfSales = floatPtr(costOfSales)
	st.GrossProfit = floatPtr(grossProfit)
	st.EBIT = floatPtr(ebit)
	st.ProfitBeforeTax = floatPtr(pbt)
	st.NetProfit = floatPtr(netProfit)
	st.CurrentAssets = floatPtr(currentAssets)
	st.FixedAssets = floatPtr(fixedAssets)
	st.TotalAssets = floatPtr(totalAssets)
	st.CurrentLiabilities = floatPtr(currentLiabilities)
	st.NonCurrentLiabilities = floatPtr(nonCurrentLiabilities)
	st.TotalLiabilities = floatPtr(totalLiabilities)
	st.NetAssets = floatPtr(netAssets)
	st.RetainedEarnings = floatPtr(retainedEarnings)
	st.Cash = floatPtr(cash)
	st.ShareCapital = floatPtr(shareCapital)
	st.Employees = floatPtr(employees)

	if ambiguitiesJSON != "" {
		if err := json.Unmarshal([]byte(ambiguitiesJSON), &st.Ambiguities); err != nil {
			return st, fmt.Errorf("failed to unmarshal ambiguities: %w", err)
		}
	}

	return st, nil
}

// nullFloat converts a nullable field to a driver-friendly value.
func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
