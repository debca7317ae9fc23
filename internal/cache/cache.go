// Package cache memoizes computed schedules keyed by their loan terms.
package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/mortgage-schedule/internal/config"
	"github.com/iwvelando/mortgage-schedule/pkg/datetime"
)

const keyPrefix = "mortgage-schedule:"

// Cache stores encoded results. A miss and an unreachable backend both
// report ok == false; callers recompute in either case.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// Key derives the cache key of a simulation from its terms and the period
// limits they were validated against.
func Key(terms config.LoanTerms, limits config.SimulatorConfig) string {
	fields := []string{
		strconv.FormatFloat(terms.PropertyValue, 'g', -1, 64),
		strconv.FormatFloat(terms.DownPayment, 'g', -1, 64),
		strconv.FormatFloat(terms.AnnualRatePercent, 'g', -1, 64),
		strconv.Itoa(terms.PeriodCount),
		strconv.FormatFloat(terms.MonthlyLifeInsurancePercent, 'g', -1, 64),
		strconv.FormatFloat(terms.AnnualPropertyInsurancePercent, 'g', -1, 64),
		terms.DisbursementDate.Format(datetime.DateLayout),
		strconv.Itoa(limits.MinPeriods),
		strconv.Itoa(limits.MaxPeriods),
	}
	sum := xxhash.Sum64String(strings.Join(fields, "|"))
	return keyPrefix + strconv.FormatUint(sum, 16)
}

type entry struct {
	value   string
	expires time.Time
}

// MemoryCache is an in-process Cache with a fixed entry lifetime.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	swept   time.Time
}

// NewMemoryCache creates a MemoryCache. A ttl of zero keeps entries forever.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the value stored under key unless it has expired.
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

// Set stores value under key. Expired entries are evicted at most once per
// ttl so that keys which are never read again do not accumulate.
func (m *MemoryCache) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e := entry{value: value}
	if m.ttl > 0 {
		e.expires = now.Add(m.ttl)
		if now.Sub(m.swept) >= m.ttl {
			m.sweep(now)
		}
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryCache) sweep(now time.Time) {
	for key, e := range m.entries {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(m.entries, key)
		}
	}
	m.swept = now
}

// Len reports the number of stored entries. Expired entries count until the
// next read of their key or the next sweep.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
