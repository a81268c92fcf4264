// Package session provides the per-session statement cache used by the
// interactive assessment path. A cache is an explicit object bound to one
// session's lifetime: nothing here is global, nothing survives the session,
// and nothing is shared across sessions.
package session

import (
	"context"
	"sync"

	"github.com/clearview-uk/clearview/internal/model"
)

// Cache holds resolved statements and score results for the companies
// looked up during one session, so repeated views of the same company do
// not re-parse its filings. Safe for concurrent use within the session.
type Cache struct {
	mu         sync.RWMutex
	statements map[string][]model.FinancialStatement
	results    map[string]model.ScoreResult
}

// New creates an empty session cache.
func New() *Cache {
	return &Cache{
		statements: make(map[string][]model.FinancialStatement),
		results:    make(map[string]model.ScoreResult),
	}
}

// Statements returns the cached statements for a company, if present.
func (c *Cache) Statements(companyNumber string) ([]model.FinancialStatement, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	statements, ok := c.statements[companyNumber]
	return statements, ok
}

// PutStatements caches the statements resolved for a company.
func (c *Cache) PutStatements(companyNumber string, statements []model.FinancialStatement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements[companyNumber] = statements
}

// Result returns the cached score result for a company, if present.
func (c *Cache) Result(companyNumber string) (model.ScoreResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.results[companyNumber]
	return result, ok
}

// PutResult caches a score result for a company.
func (c *Cache) PutResult(companyNumber string, result model.ScoreResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[companyNumber] = result
}

// Len reports how many companies have cached statements.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.statements)
}

type contextKey struct{}

// WithContext binds a cache to a session-scoped context.
func WithContext(ctx context.Context, cache *Cache) context.Context {
	return context.WithValue(ctx, contextKey{}, cache)
}

// FromContext retrieves the session cache from a context, or nil when the
// context carries none.
func FromContext(ctx context.Context) *Cache {
	cache, _ := ctx.Value(contextKey{}).(*Cache)
	return cache
}
