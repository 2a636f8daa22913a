package warehouse

import "context"

// Snapshot is a full harmonization output: every dimension and fact table
// produced by one run. Each run is a pure function from the raw extracts to
// a Snapshot, so persistence is always a wholesale replace.
type Snapshot struct {
	Platforms  []Platform
	TimeDays   []TimeDay
	Customers  []Customer
	Products   []Product
	Variants   []ProductVariant
	Orders     []Order
	FactLines  []FactOrderLine
	Aggregates []FactSalesAggregate
}

// SnapshotRepository persists a harmonization run's output tables
type SnapshotRepository interface {
	// ReplaceAll replaces every dimension and fact table with the
	// snapshot's contents inside a single transaction.
	ReplaceAll(ctx context.Context, snap *Snapshot) error

	// FindFactLines returns all persisted fact lines ordered by key
	FindFactLines(ctx context.Context) ([]FactOrderLine, error)

	// FindAggregates returns all persisted aggregates in grain order
	FindAggregates(ctx context.Context) ([]FactSalesAggregate, error)

	// CountByTable returns persisted row counts keyed by table name
	CountByTable(ctx context.Context) (map[string]int64, error)
}
