package harmonize

import (
	"sort"

	"github.com/lacollections/warehouse/internal/domain/warehouse"
	"github.com/shopspring/decimal"
)

type aggregateGrain struct {
	timeKey     int
	platformKey int
	customerKey int64
	productKey  int64
}

type aggregateAccum struct {
	orders         map[int64]struct{}
	totalItemsSold int
	grossRevenue   decimal.Decimal
	totalDiscounts decimal.Decimal
}

// BuildAggregates rolls the fact table up to (time, platform, customer,
// product) grain. The result is purely derived and fully replaces the
// aggregate table each run; merging would risk double counting.
func BuildAggregates(lines []warehouse.FactOrderLine) []warehouse.FactSalesAggregate {
	accum := make(map[aggregateGrain]*aggregateAccum)
	for _, l := range lines {
		grain := aggregateGrain{l.TimeKey, l.PlatformKey, l.CustomerKey, l.ProductKey}
		a, ok := accum[grain]
		if !ok {
			a = &aggregateAccum{
				orders:         make(map[int64]struct{}),
				grossRevenue:   decimal.Zero,
				totalDiscounts: decimal.Zero,
			}
			accum[grain] = a
		}
		a.orders[l.OrderKey] = struct{}{}
		a.totalItemsSold += l.ItemQuantity
		a.grossRevenue = a.grossRevenue.Add(l.PaidPrice)
		a.totalDiscounts = a.totalDiscounts.Add(l.VoucherPlatformAmount).Add(l.VoucherSellerAmount)
	}

	aggs := make([]warehouse.FactSalesAggregate, 0, len(accum))
	for grain, a := range accum {
		aggs = append(aggs, warehouse.FactSalesAggregate{
			TimeKey:        grain.timeKey,
			PlatformKey:    grain.platformKey,
			CustomerKey:    grain.customerKey,
			ProductKey:     grain.productKey,
			TotalOrders:    len(a.orders),
			TotalItemsSold: a.totalItemsSold,
			GrossRevenue:   a.grossRevenue,
			TotalDiscounts: a.totalDiscounts,
			NetSales:       a.grossRevenue.Sub(a.totalDiscounts),
		})
	}

	sort.Slice(aggs, func(i, j int) bool {
		a, b := aggs[i], aggs[j]
		if a.TimeKey != b.TimeKey {
			return a.TimeKey < b.TimeKey
		}
		if a.PlatformKey != b.PlatformKey {
			return a.PlatformKey < b.PlatformKey
		}
		if a.CustomerKey != b.CustomerKey {
			return a.CustomerKey < b.CustomerKey
		}
		return a.ProductKey < b.ProductKey
	})
	return aggs
}
