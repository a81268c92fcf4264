package registry

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// RateLimitedClient wraps a Client with a shared request quota. The UK
// registry allows 600 requests per 5 minutes; every call blocks on the
// limiter before hitting the underlying client, so bulk workers share the
// quota instead of tripping it.
type RateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// DefaultRequestsPerSecond keeps comfortably under the registry quota.
const DefaultRequestsPerSecond = 1.8

// NewRateLimited wraps client with a limiter of rps requests per second.
func NewRateLimited(client Client, rps float64) *RateLimitedClient {
	return &RateLimitedClient{
		inner:   client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// GetProfile implements Client.GetProfile.
func (c *RateLimitedClient) GetProfile(ctx context.Context, companyNumber string) (*CompanyProfile, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.inner.GetProfile(ctx, companyNumber)
}

// ListAccountsFilings implements Client.ListAccountsFilings.
func (c *RateLimitedClient) ListAccountsFilings(ctx context.Context, companyNumber string) ([]Filing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.inner.ListAccountsFilings(ctx, companyNumber)
}

// GetDocument implements Client.GetDocument.
func (c *RateLimitedClient) GetDocument(ctx context.Context, filing Filing) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.inner.GetDocument(ctx, filing)
}

// Ensure RateLimitedClient implements the Client interface.
var _ Client = (*RateLimitedClient)(nil)
