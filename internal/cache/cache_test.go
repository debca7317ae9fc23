package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-schedule/internal/config"
)

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)

func demoTerms() config.LoanTerms {
	return config.DemoLoanTerms(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
}

func TestKey(t *testing.T) {
	limits := config.DefaultSimulatorConfig()
	base := Key(demoTerms(), limits)

	if !strings.HasPrefix(base, "mortgage-schedule:") {
		t.Errorf("Key() = %s, expected mortgage-schedule: prefix", base)
	}
	if Key(demoTerms(), limits) != base {
		t.Errorf("Key() is not stable for identical terms")
	}

	tests := []struct {
		name   string
		mutate func(terms *config.LoanTerms, limits *config.SimulatorConfig)
	}{
		{name: "Property value", mutate: func(terms *config.LoanTerms, _ *config.SimulatorConfig) { terms.PropertyValue++ }},
		{name: "Down payment", mutate: func(terms *config.LoanTerms, _ *config.SimulatorConfig) { terms.DownPayment++ }},
		{name: "Rate", mutate: func(terms *config.LoanTerms, _ *config.SimulatorConfig) { terms.AnnualRatePercent = 8.5 }},
		{name: "Periods", mutate: func(terms *config.LoanTerms, _ *config.SimulatorConfig) { terms.PeriodCount = 120 }},
		{name: "Life insurance", mutate: func(terms *config.LoanTerms, _ *config.SimulatorConfig) { terms.MonthlyLifeInsurancePercent = 0.04 }},
		{name: "Property insurance", mutate: func(terms *config.LoanTerms, _ *config.SimulatorConfig) { terms.AnnualPropertyInsurancePercent = 0.4 }},
		{name: "Disbursement date", mutate: func(terms *config.LoanTerms, _ *config.SimulatorConfig) {
			terms.DisbursementDate = terms.DisbursementDate.AddDate(0, 0, 1)
		}},
		{name: "Period limits", mutate: func(_ *config.LoanTerms, limits *config.SimulatorConfig) { limits.MaxPeriods = 240 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := demoTerms()
			changed := limits
			tt.mutate(&terms, &changed)
			if Key(terms, changed) == base {
				t.Errorf("Key() did not change when %s changed", tt.name)
			}
		})
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Errorf("expected miss for unknown key")
	}
	if err := c.Set(ctx, "key", "value"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok := c.Get(ctx, "key")
	if !ok || got != "value" {
		t.Errorf("Get() = %q, %v, expected value, true", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", c.Len())
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "key", "value")

	now = now.Add(59 * time.Second)
	if _, ok := c.Get(ctx, "key"); !ok {
		t.Errorf("entry expired early")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get(ctx, "key"); ok {
		t.Errorf("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry was not evicted")
	}
}

func TestMemoryCacheSetEvictsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		_ = c.Set(ctx, "key-"+strconv.Itoa(i), "value")
	}
	if c.Len() != 1000 {
		t.Fatalf("Len() = %d, expected 1000", c.Len())
	}

	now = now.Add(time.Hour)
	if err := c.Set(ctx, "fresh", "value"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, expected expired entries to be evicted", c.Len())
	}
	if _, ok := c.Get(ctx, "fresh"); !ok {
		t.Errorf("fresh entry missing after eviction")
	}
}

func TestMemoryCacheSetKeepsLiveEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "old", "value")
	now = now.Add(30 * time.Second)
	_ = c.Set(ctx, "recent", "value")
	now = now.Add(40 * time.Second)
	_ = c.Set(ctx, "new", "value")

	if c.Len() != 2 {
		t.Errorf("Len() = %d, expected 2", c.Len())
	}
	if _, ok := c.Get(ctx, "recent"); !ok {
		t.Errorf("live entry evicted")
	}
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key(demoTerms(), config.SimulatorConfig{MinPeriods: 12, MaxPeriods: 300 + i})
			_ = c.Set(ctx, key, "value")
			c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if c.Len() != 16 {
		t.Errorf("Len() = %d, expected 16", c.Len())
	}
}
