package persistence

import (
	"context"
	"fmt"

	"github.com/lacollections/warehouse/internal/domain/warehouse"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const insertBatchSize = 500

// GormSnapshotRepository persists harmonization snapshots using GORM.
// Every load is a wholesale replace inside one transaction; there are no
// upsert semantics anywhere in the warehouse.
type GormSnapshotRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormSnapshotRepository creates a new snapshot repository
func NewGormSnapshotRepository(db *gorm.DB, logger *zap.Logger) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db, logger: logger.Named("snapshot_repo")}
}

// AutoMigrate creates or updates the warehouse tables
func (r *GormSnapshotRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&warehouse.Platform{},
		&warehouse.TimeDay{},
		&warehouse.Customer{},
		&warehouse.Product{},
		&warehouse.ProductVariant{},
		&warehouse.Order{},
		&warehouse.FactOrderLine{},
		&warehouse.FactSalesAggregate{},
	)
}

// ReplaceAll replaces every dimension and fact table with the snapshot's
// contents inside a single transaction.
func (r *GormSnapshotRepository) ReplaceAll(ctx context.Context, snap *warehouse.Snapshot) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		// Facts first so dimension deletes never leave dangling references.
		for _, model := range []any{
			&warehouse.FactSalesAggregate{},
			&warehouse.FactOrderLine{},
			&warehouse.Order{},
			&warehouse.ProductVariant{},
			&warehouse.Product{},
			&warehouse.Customer{},
			&warehouse.TimeDay{},
			&warehouse.Platform{},
		} {
			if err := wipe.Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear table: %w", err)
			}
		}

		if err := createAll(tx, snap); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("snapshot persisted",
		zap.Int("time_days", len(snap.TimeDays)),
		zap.Int("customers", len(snap.Customers)),
		zap.Int("products", len(snap.Products)),
		zap.Int("variants", len(snap.Variants)),
		zap.Int("orders", len(snap.Orders)),
		zap.Int("fact_lines", len(snap.FactLines)),
		zap.Int("aggregates", len(snap.Aggregates)),
	)
	return nil
}

func createAll(tx *gorm.DB, snap *warehouse.Snapshot) error {
	if len(snap.Platforms) > 0 {
		if err := tx.CreateInBatches(snap.Platforms, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert platforms: %w", err)
		}
	}
	if len(snap.TimeDays) > 0 {
		if err := tx.CreateInBatches(snap.TimeDays, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert time dimension: %w", err)
		}
	}
	if len(snap.Customers) > 0 {
		if err := tx.CreateInBatches(snap.Customers, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert customers: %w", err)
		}
	}
	if len(snap.Products) > 0 {
		if err := tx.CreateInBatches(snap.Products, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert products: %w", err)
		}
	}
	if len(snap.Variants) > 0 {
		if err := tx.CreateInBatches(snap.Variants, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert variants: %w", err)
		}
	}
	if len(snap.Orders) > 0 {
		if err := tx.CreateInBatches(snap.Orders, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert orders: %w", err)
		}
	}
	if len(snap.FactLines) > 0 {
		if err := tx.CreateInBatches(snap.FactLines, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert fact lines: %w", err)
		}
	}
	if len(snap.Aggregates) > 0 {
		if err := tx.CreateInBatches(snap.Aggregates, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert aggregates: %w", err)
		}
	}
	return nil
}

// FindFactLines returns all persisted fact lines ordered by key
func (r *GormSnapshotRepository) FindFactLines(ctx context.Context) ([]warehouse.FactOrderLine, error) {
	var lines []warehouse.FactOrderLine
	if err := r.db.WithContext(ctx).Order("order_item_key").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to query fact lines: %w", err)
	}
	return lines, nil
}

// FindAggregates returns all persisted aggregates in grain order
func (r *GormSnapshotRepository) FindAggregates(ctx context.Context) ([]warehouse.FactSalesAggregate, error) {
	var aggs []warehouse.FactSalesAggregate
	err := r.db.WithContext(ctx).
		Order("time_key, platform_key, customer_key, product_key").
		Find(&aggs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query aggregates: %w", err)
	}
	return aggs, nil
}

// CountByTable returns persisted row counts keyed by table name
func (r *GormSnapshotRepository) CountByTable(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, model := range []interface{ TableName() string }{
		warehouse.Platform{},
		warehouse.TimeDay{},
		warehouse.Customer{},
		warehouse.Product{},
		warehouse.ProductVariant{},
		warehouse.Order{},
		warehouse.FactOrderLine{},
		warehouse.FactSalesAggregate{},
	} {
		var n int64
		if err := r.db.WithContext(ctx).Table(model.TableName()).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", model.TableName(), err)
		}
		counts[model.TableName()] = n
	}
	return counts, nil
}
