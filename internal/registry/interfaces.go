// Package registry defines the contract for the remote company registry
// that supplies company profiles and accounts filings. The core pipeline
// only depends on these interfaces; a production client and the local-disk
// reader both satisfy them.
package registry

import (
	"context"
	"io"
	"time"
)

// CompanyProfile holds the registry metadata the scorer needs: the SIC
// sector codes drive benchmark lookup for modelled scoring.
type CompanyProfile struct {
	CompanyNumber string
	Name          string
	Status        string
	SICCodes      []string
	Incorporated  time.Time
}

// Filing describes one accounts filing available for a company.
type Filing struct {
	TransactionID string
	CompanyNumber string
	MadeUpDate    time.Time
	FiledAt       time.Time
	Category      string
}

// Client defines the contract for fetching registry data.
// This interface allows for easy mocking in tests and swapping data sources.
type Client interface {
	GetProfile(ctx context.Context, companyNumber string) (*CompanyProfile, error)
	ListAccountsFilings(ctx context.Context, companyNumber string) ([]Filing, error)
	GetDocument(ctx context.Context, filing Filing) (io.ReadCloser, error)
}
