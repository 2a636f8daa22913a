package harmonize

import (
	"context"
	"fmt"
	"time"

	"github.com/lacollections/warehouse/internal/domain/warehouse"
	"github.com/lacollections/warehouse/internal/infrastructure/config"
	"github.com/lacollections/warehouse/internal/infrastructure/export"
	"github.com/lacollections/warehouse/internal/infrastructure/mapping"
	"github.com/lacollections/warehouse/internal/infrastructure/staging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline orchestrates one full harmonization run: load raw extracts,
// resolve both platforms' dimensions in parallel, build facts after the
// join barrier, roll up aggregates, then persist and export. Each run is a
// pure function from the raw snapshot to the output snapshot; re-running on
// identical inputs with the same seed reproduces it byte for byte.
type Pipeline struct {
	cfg      *config.PipelineConfig
	mappings *mapping.Mappings
	loader   *staging.Loader
	repo     warehouse.SnapshotRepository
	exporter *export.Exporter
	logger   *zap.Logger
}

// NewPipeline creates a pipeline. repo and exporter may be nil when the
// caller only wants the in-memory snapshot.
func NewPipeline(
	cfg *config.PipelineConfig,
	mappings *mapping.Mappings,
	loader *staging.Loader,
	repo warehouse.SnapshotRepository,
	exporter *export.Exporter,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		mappings: mappings,
		loader:   loader,
		repo:     repo,
		exporter: exporter,
		logger:   logger.Named("pipeline"),
	}
}

// Run executes a full harmonization run end to end
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	extracts, err := p.loader.LoadAll()
	if err != nil {
		return nil, err
	}

	snap, report, err := p.Build(ctx, extracts)
	if err != nil {
		return nil, err
	}

	if p.repo != nil {
		if err := p.repo.ReplaceAll(ctx, snap); err != nil {
			return nil, fmt.Errorf("failed to persist snapshot: %w", err)
		}
	}
	if p.exporter != nil {
		if err := p.exporter.ExportSnapshot(snap); err != nil {
			return nil, fmt.Errorf("failed to export snapshot: %w", err)
		}
	}

	report.Log(p.logger)
	return report, nil
}

// Build transforms fully materialized extracts into an output snapshot
// without touching storage.
func (p *Pipeline) Build(ctx context.Context, extracts *staging.Extracts) (*warehouse.Snapshot, *RunReport, error) {
	report := NewRunReport()
	report.Lazada.RawOrders = len(extracts.LazadaOrders)
	report.Lazada.RawProducts = len(extracts.LazadaProducts)
	report.Shopee.RawOrders = len(extracts.ShopeeOrders)
	report.Shopee.RawProducts = len(extracts.ShopeeProducts)
	report.Shopee.RawPayments = len(extracts.ShopeePayments)

	// Anonymous identity synthesis runs single-threaded before any
	// parallel work; its collision set is the pipeline's only shared
	// mutable state and this keeps it out of the concurrent stage.
	anon := NewAnonGenerator(p.cfg.AnonSeed)
	shopeeIDs := ShopeeCustomerIDs(extracts.ShopeeOrders, anon)

	timeDays, timeKeys, err := p.generateTimeDimension(extracts)
	if err != nil {
		return nil, nil, err
	}

	runDate := p.cfg.RunDay()
	customerResolver := NewCustomerResolver(p.logger)
	productResolver := NewProductResolver(p.logger)
	orderResolver := NewOrderResolver(p.logger)

	// Each goroutine fills only its own dims slot; the shared lookup maps
	// are assembled after the join barrier so the concurrent stage never
	// touches a map another goroutine can see.
	type platformDims struct {
		customers *ResolvedCustomers
		products  *ResolvedProducts
		orders    *ResolvedOrders
	}
	var lazada, shopee platformDims

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		c := report.Counters(warehouse.PlatformKeyLazada)
		lazada.customers = customerResolver.ResolveLazada(extracts.LazadaOrders, &p.mappings.Lazada, c)
		lazada.products = productResolver.ResolveLazada(extracts.LazadaProducts, runDate, &p.mappings.Lazada, c)
		lazada.orders = orderResolver.ResolveLazada(extracts.LazadaOrders, c)
		return gctx.Err()
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		c := report.Counters(warehouse.PlatformKeyShopee)
		shopee.customers = customerResolver.ResolveShopee(extracts.ShopeeOrders, shopeeIDs, &p.mappings.Shopee, c)
		shopee.products = productResolver.ResolveShopee(extracts.ShopeeProducts, runDate, &p.mappings.Shopee, c)
		shopee.orders = orderResolver.ResolveShopee(extracts.ShopeeOrders, c)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	customers := map[int]*ResolvedCustomers{
		warehouse.PlatformKeyLazada: lazada.customers,
		warehouse.PlatformKeyShopee: shopee.customers,
	}
	products := map[int]*ResolvedProducts{
		warehouse.PlatformKeyLazada: lazada.products,
		warehouse.PlatformKeyShopee: shopee.products,
	}
	orders := map[int]*ResolvedOrders{
		warehouse.PlatformKeyLazada: lazada.orders,
		warehouse.PlatformKeyShopee: shopee.orders,
	}

	factBuilder := NewFactBuilder(p.logger)
	lines, err := factBuilder.Build(&FactInputs{
		Extracts:  extracts,
		Mappings:  p.mappings,
		TimeKeys:  timeKeys,
		Customers: customers,
		Products:  products,
		Orders:    orders,
	}, report)
	if err != nil {
		return nil, nil, err
	}

	aggregates := BuildAggregates(lines)

	snap := &warehouse.Snapshot{
		Platforms:  warehouse.SeedPlatforms(),
		TimeDays:   timeDays,
		Customers:  append(customers[warehouse.PlatformKeyLazada].Customers, customers[warehouse.PlatformKeyShopee].Customers...),
		Products:   append(products[warehouse.PlatformKeyLazada].Products, products[warehouse.PlatformKeyShopee].Products...),
		Variants:   append(products[warehouse.PlatformKeyLazada].Variants, products[warehouse.PlatformKeyShopee].Variants...),
		Orders:     append(orders[warehouse.PlatformKeyLazada].Orders, orders[warehouse.PlatformKeyShopee].Orders...),
		FactLines:  lines,
		Aggregates: aggregates,
	}

	report.FinishedAt = time.Now()
	return snap, report, nil
}

// generateTimeDimension covers the full observed order-date range, padded
// by the configured slack on both ends. Fact building later treats any
// lookup outside this range as a systemic failure.
func (p *Pipeline) generateTimeDimension(extracts *staging.Extracts) ([]warehouse.TimeDay, map[int]struct{}, error) {
	var minDate, maxDate time.Time
	observe := func(t time.Time) {
		if minDate.IsZero() || t.Before(minDate) {
			minDate = t
		}
		if maxDate.IsZero() || t.After(maxDate) {
			maxDate = t
		}
	}

	for _, o := range extracts.LazadaOrders {
		if t, ok := parseLazadaTime(o.CreatedAt); ok {
			observe(t)
		}
	}
	for _, o := range extracts.ShopeeOrders {
		if o.CreateTime != 0 {
			observe(unixTime(o.CreateTime))
		}
	}
	if minDate.IsZero() {
		runDate := p.cfg.RunDay()
		minDate, maxDate = runDate, runDate
	}

	pad := p.cfg.TimeSpanPad
	days, err := GenerateTimeDimension(minDate.Add(-pad), maxDate.Add(pad), p.mappings.MegaSale.Holidays)
	if err != nil {
		return nil, nil, err
	}

	keys := make(map[int]struct{}, len(days))
	for _, d := range days {
		keys[d.TimeKey] = struct{}{}
	}
	p.logger.Info("time dimension generated",
		zap.Int("days", len(days)),
		zap.Int("from", days[0].TimeKey),
		zap.Int("to", days[len(days)-1].TimeKey))
	return days, keys, nil
}
