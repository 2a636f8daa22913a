package harmonize

import (
	"time"

	"github.com/google/uuid"
	"github.com/lacollections/warehouse/internal/domain/warehouse"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxDefectSamples bounds the identifying keys kept per defect category so
// a pathological extract cannot balloon the report.
const maxDefectSamples = 25

// PlatformCounters quantifies one platform's per-record outcomes for a run.
// Per-record issues are always counted and surfaced, never silently
// swallowed, and never abort the batch.
type PlatformCounters struct {
	RawOrders      int
	RawProducts    int
	RawPayments    int
	Customers      int
	Products       int
	Variants       int
	Orders         int
	FactLines      int
	ExcludedOrders int // not on the fulfilled allow-list

	MalformedRecords    int
	Tier2Fallbacks      int
	ImputedRatings      int
	DefaultVariants     int
	UnmappedSkuDrops    int
	UnmappedSkuSamples  []string
	UnresolvedCustomers int

	PricingMismatches      int
	PricingMismatchesTier1 int
	PricingMismatchesTier2 int
	PricingMismatchDelta   decimal.Decimal
}

// RecordUnmappedSku counts a dropped line and keeps its identifying key
func (c *PlatformCounters) RecordUnmappedSku(key string) {
	c.UnmappedSkuDrops++
	if len(c.UnmappedSkuSamples) < maxDefectSamples {
		c.UnmappedSkuSamples = append(c.UnmappedSkuSamples, key)
	}
}

// RecordPricingMismatch counts one row that failed the strict pricing
// invariant, partitioned by pricing provenance.
func (c *PlatformCounters) RecordPricingMismatch(source warehouse.PricingSource, delta decimal.Decimal) {
	c.PricingMismatches++
	if source == warehouse.PricingSourceTier1 {
		c.PricingMismatchesTier1++
	} else {
		c.PricingMismatchesTier2++
	}
	c.PricingMismatchDelta = c.PricingMismatchDelta.Add(delta.Abs())
}

// RunReport is the operator-facing summary of one harmonization run
type RunReport struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Lazada     PlatformCounters
	Shopee     PlatformCounters
}

// NewRunReport creates a report with a fresh run identifier
func NewRunReport() *RunReport {
	return &RunReport{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
		Lazada:    PlatformCounters{PricingMismatchDelta: decimal.Zero},
		Shopee:    PlatformCounters{PricingMismatchDelta: decimal.Zero},
	}
}

// Counters returns the counter block for a platform key
func (r *RunReport) Counters(platformKey int) *PlatformCounters {
	if platformKey == warehouse.PlatformKeyShopee {
		return &r.Shopee
	}
	return &r.Lazada
}

// Log emits the full summary, one entry per platform
func (r *RunReport) Log(logger *zap.Logger) {
	for _, p := range []struct {
		name string
		c    *PlatformCounters
	}{
		{"lazada", &r.Lazada},
		{"shopee", &r.Shopee},
	} {
		logger.Info("harmonization summary",
			zap.String("run_id", r.RunID.String()),
			zap.String("platform", p.name),
			zap.Int("raw_orders", p.c.RawOrders),
			zap.Int("raw_products", p.c.RawProducts),
			zap.Int("raw_payments", p.c.RawPayments),
			zap.Int("customers", p.c.Customers),
			zap.Int("products", p.c.Products),
			zap.Int("variants", p.c.Variants),
			zap.Int("orders", p.c.Orders),
			zap.Int("fact_lines", p.c.FactLines),
			zap.Int("excluded_orders", p.c.ExcludedOrders),
			zap.Int("malformed_records", p.c.MalformedRecords),
			zap.Int("tier2_fallbacks", p.c.Tier2Fallbacks),
			zap.Int("imputed_ratings", p.c.ImputedRatings),
			zap.Int("default_variants", p.c.DefaultVariants),
			zap.Int("unmapped_sku_drops", p.c.UnmappedSkuDrops),
			zap.Strings("unmapped_sku_samples", p.c.UnmappedSkuSamples),
			zap.Int("unresolved_customers", p.c.UnresolvedCustomers),
			zap.Int("pricing_mismatches", p.c.PricingMismatches),
			zap.Int("pricing_mismatches_tier1", p.c.PricingMismatchesTier1),
			zap.Int("pricing_mismatches_tier2", p.c.PricingMismatchesTier2),
			zap.String("pricing_mismatch_delta", p.c.PricingMismatchDelta.StringFixed(2)),
			zap.Duration("elapsed", r.FinishedAt.Sub(r.StartedAt)),
		)
	}
}
