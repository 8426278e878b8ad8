package services

import (
	"fmt"
	"sync"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
)

// StatusCache maps transaction ids to their last committed status. It is a projection of
// the store, written only after the status change it reflects has committed. An empty
// cache after a restart is expected; readers fall back to the store on a miss.
type StatusCache struct {
	entries sync.Map // transactionID -> domain.TransactionStatus
}

// NewStatusCache creates an empty cache. One instance is shared by the engines of a process.
func NewStatusCache() *StatusCache {
	return &StatusCache{}
}

func (c *StatusCache) Put(transactionID string, status domain.TransactionStatus) {
	c.entries.Store(transactionID, status)
}

// Get returns the cached status, or apperrors.ErrNotFound on a miss.
func (c *StatusCache) Get(transactionID string) (domain.TransactionStatus, error) {
	v, ok := c.entries.Load(transactionID)
	if !ok {
		return "", fmt.Errorf("%w: status of transaction %s is not cached", apperrors.ErrNotFound, transactionID)
	}
	return v.(domain.TransactionStatus), nil
}

func (c *StatusCache) Delete(transactionID string) {
	c.entries.Delete(transactionID)
}

// Len counts the cached entries. It walks the map and is meant for tests and diagnostics.
func (c *StatusCache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
