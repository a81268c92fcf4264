package registry

import (
	"context"
	"io"

	"github.com/clearview-uk/clearview/internal/common"
)

// MockClient is a mock implementation of Client for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	GetProfileFn          func(ctx context.Context, companyNumber string) (*CompanyProfile, error)
	ListAccountsFilingsFn func(ctx context.Context, companyNumber string) ([]Filing, error)
	GetDocumentFn         func(ctx context.Context, filing Filing) (io.ReadCloser, error)

	// Call tracking
	GetProfileCalls          []string
	ListAccountsFilingsCalls []string
	GetDocumentCalls         []Filing
}

// NewMockClient creates a new mock registry client.
func NewMockClient() *MockClient {
	return &MockClient{
		GetProfileCalls:          []string{},
		ListAccountsFilingsCalls: []string{},
		GetDocumentCalls:         []Filing{},
	}
}

// GetProfile implements Client.GetProfile.
func (m *MockClient) GetProfile(ctx context.Context, companyNumber string) (*CompanyProfile, error) {
	m.GetProfileCalls = append(m.GetProfileCalls, companyNumber)

	if m.GetProfileFn != nil {
		return m.GetProfileFn(ctx, companyNumber)
	}

	return nil, common.ErrNotFound
}

// ListAccountsFilings implements Client.ListAccountsFilings.
func (m *MockClient) ListAccountsFilings(ctx context.Context, companyNumber string) ([]Filing, error) {
	m.ListAccountsFilingsCalls = append(m.ListAccountsFilingsCalls, companyNumber)

	if m.ListAccountsFilingsFn != nil {
		return m.ListAccountsFilingsFn(ctx, companyNumber)
	}

	return []Filing{}, nil
}

// GetDocument implements Client.GetDocument.
func (m *MockClient) GetDocument(ctx context.Context, filing Filing) (io.ReadCloser, error) {
	m.GetDocumentCalls = append(m.GetDocumentCalls, filing)

	if m.GetDocumentFn != nil {
		return m.GetDocumentFn(ctx, filing)
	}

	return nil, common.ErrDocumentNotFound
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.GetProfileCalls = []string{}
	m.ListAccountsFilingsCalls = []string{}
	m.GetDocumentCalls = []Filing{}
}

// Ensure MockClient implements the Client interface.
var _ Client = (*MockClient)(nil)
