package harmonize

import (
	"context"
	"sync"
	"testing"

	"github.com/lacollections/warehouse/internal/domain/warehouse"
	"github.com/lacollections/warehouse/internal/infrastructure/config"
	"github.com/lacollections/warehouse/internal/infrastructure/staging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pipelineFixtureExtracts() *staging.Extracts {
	lazadaOrder := staging.LazadaOrder{
		OrderID:   "9001",
		Statuses:  []string{"delivered"},
		CreatedAt: "2025-05-12 14:00:00",
		AddressShipping: staging.LazadaAddress{
			FirstName: "M***a", Phone: "09171234567", City: "Manila",
		},
		OrderItems: []staging.LazadaOrderItem{
			{ItemID: "555001", SkuID: "901", Quantity: 1, PaidPrice: "110.00", ItemPrice: "110.00"},
		},
	}
	shopeeOrder := staging.ShopeeOrder{
		OrderSN:     "SN500",
		OrderStatus: "COMPLETED",
		CreateTime:  1746867600, // 2025-05-10
		ItemList: []staging.ShopeeOrderItem{
			{ItemID: "777001", ModelID: "881", ModelQuantityPurchased: 1, ModelDiscountedPrice: "100.00", ModelOriginalPrice: "100.00"},
		},
	}
	return &staging.Extracts{
		LazadaOrders: []staging.LazadaOrder{lazadaOrder},
		LazadaProducts: []staging.LazadaProduct{
			lazadaListing("555001", "Car Perfume", "active", 8632,
				staging.LazadaSku{SkuID: "901", SellerSku: "CPF-LAV-500", Variation1: "Lavender", Variation2: "500ml", Price: "110.00"},
			),
		},
		ShopeeOrders:   []staging.ShopeeOrder{shopeeOrder},
		ShopeeProducts: []staging.ShopeeProduct{shopeeFixtureProduct()},
	}
}

func testPipeline() *Pipeline {
	cfg := &config.PipelineConfig{
		RunDate:  "2025-06-01",
		AnonSeed: 42,
	}
	return NewPipeline(cfg, testMappings(), nil, nil, nil, zap.NewNop())
}

func TestPipelineBuild(t *testing.T) {
	t.Run("produces a complete snapshot", func(t *testing.T) {
		snap, report, err := testPipeline().Build(context.Background(), pipelineFixtureExtracts())
		require.NoError(t, err)
		require.NotNil(t, snap)

		assert.Len(t, snap.Platforms, 2)
		assert.NotEmpty(t, snap.TimeDays)
		assert.Len(t, snap.Customers, 2)
		assert.Len(t, snap.Products, 2)
		assert.Len(t, snap.Orders, 2)
		assert.Len(t, snap.FactLines, 2)
		assert.NotEmpty(t, snap.Aggregates)

		assert.Equal(t, 1, report.Lazada.RawOrders)
		assert.Equal(t, 1, report.Lazada.FactLines)
		assert.Equal(t, 1, report.Shopee.FactLines)
		assert.False(t, report.FinishedAt.IsZero())
	})

	t.Run("time dimension covers the observed order range", func(t *testing.T) {
		snap, _, err := testPipeline().Build(context.Background(), pipelineFixtureExtracts())
		require.NoError(t, err)

		keys := make(map[int]struct{}, len(snap.TimeDays))
		for _, d := range snap.TimeDays {
			keys[d.TimeKey] = struct{}{}
		}
		assert.Contains(t, keys, 20250510)
		assert.Contains(t, keys, 20250512)
	})

	t.Run("guest buyers get anonymous identities", func(t *testing.T) {
		snap, _, err := testPipeline().Build(context.Background(), pipelineFixtureExtracts())
		require.NoError(t, err)

		var shopeeCustomers []warehouse.Customer
		for _, c := range snap.Customers {
			if c.PlatformKey == warehouse.PlatformKeyShopee {
				shopeeCustomers = append(shopeeCustomers, c)
			}
		}
		require.Len(t, shopeeCustomers, 1)
		assert.Regexp(t, `^Anon\d{7}$`, shopeeCustomers[0].PlatformCustomerID)
	})

	t.Run("no orphan foreign keys in the fact table", func(t *testing.T) {
		snap, _, err := testPipeline().Build(context.Background(), pipelineFixtureExtracts())
		require.NoError(t, err)

		timeKeys := make(map[int]struct{})
		for _, d := range snap.TimeDays {
			timeKeys[d.TimeKey] = struct{}{}
		}
		customerKeys := make(map[int64]struct{})
		for _, c := range snap.Customers {
			customerKeys[c.CustomerKey] = struct{}{}
		}
		productKeys := make(map[int64]struct{})
		for _, p := range snap.Products {
			productKeys[p.ProductKey] = struct{}{}
		}
		variantKeys := make(map[string]struct{})
		for _, v := range snap.Variants {
			variantKeys[v.ProductVariantKey] = struct{}{}
		}
		orderKeys := make(map[int64]struct{})
		for _, o := range snap.Orders {
			orderKeys[o.OrderKey] = struct{}{}
		}

		for _, l := range snap.FactLines {
			assert.Contains(t, timeKeys, l.TimeKey, l.OrderItemKey)
			assert.Contains(t, customerKeys, l.CustomerKey, l.OrderItemKey)
			assert.Contains(t, productKeys, l.ProductKey, l.OrderItemKey)
			assert.Contains(t, variantKeys, l.ProductVariantKey, l.OrderItemKey)
			assert.Contains(t, orderKeys, l.OrderKey, l.OrderItemKey)
		}
	})

	t.Run("rebuild is idempotent for a fixed seed", func(t *testing.T) {
		first, _, err := testPipeline().Build(context.Background(), pipelineFixtureExtracts())
		require.NoError(t, err)
		second, _, err := testPipeline().Build(context.Background(), pipelineFixtureExtracts())
		require.NoError(t, err)

		assert.Equal(t, first.Customers, second.Customers)
		assert.Equal(t, first.Products, second.Products)
		assert.Equal(t, first.Variants, second.Variants)
		assert.Equal(t, first.Orders, second.Orders)
		assert.Equal(t, first.FactLines, second.FactLines)
		assert.Equal(t, first.Aggregates, second.Aggregates)
	})

	t.Run("parallel resolution stays stable across simultaneous builds", func(t *testing.T) {
		snaps := make([]*warehouse.Snapshot, 8)
		var wg sync.WaitGroup
		for i := range snaps {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				snap, _, err := testPipeline().Build(context.Background(), pipelineFixtureExtracts())
				if assert.NoError(t, err) {
					snaps[i] = snap
				}
			}(i)
		}
		wg.Wait()

		for _, s := range snaps[1:] {
			require.NotNil(t, s)
			assert.Equal(t, snaps[0].Customers, s.Customers)
			assert.Equal(t, snaps[0].FactLines, s.FactLines)
		}
	})

	t.Run("cancelled context aborts the run", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := testPipeline().Build(ctx, pipelineFixtureExtracts())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty extracts still yield a valid snapshot", func(t *testing.T) {
		snap, report, err := testPipeline().Build(context.Background(), &staging.Extracts{})
		require.NoError(t, err)

		assert.Len(t, snap.Platforms, 2)
		assert.NotEmpty(t, snap.TimeDays) // run date fallback
		assert.Empty(t, snap.FactLines)
		assert.Equal(t, 0, report.Lazada.RawOrders)
	})
}
