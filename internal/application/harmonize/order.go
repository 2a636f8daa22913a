package harmonize

import (
	"sort"
	"time"

	"github.com/lacollections/warehouse/internal/domain/warehouse"
	"github.com/lacollections/warehouse/internal/infrastructure/staging"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ResolvedOrders is one platform's order-header dimension plus the lookups
// the fact builder needs. DateByNaturalID is shared so the fact builder
// never re-parses timestamps that could drift from the dimension.
type ResolvedOrders struct {
	Orders          []warehouse.Order
	KeyByNaturalID  map[string]int64
	DateByNaturalID map[string]time.Time
}

// OrderResolver builds the order-header dimension per platform
type OrderResolver struct {
	logger *zap.Logger
}

// NewOrderResolver creates an order resolver
func NewOrderResolver(logger *zap.Logger) *OrderResolver {
	return &OrderResolver{logger: logger.Named("order_resolver")}
}

type orderRow struct {
	naturalID string
	order     warehouse.Order
}

// ResolveLazada maps raw Lazada orders into dimension rows. The status
// string is preserved verbatim; all statuses stay in the dimension even
// though only fulfilled ones reach the fact table.
func (r *OrderResolver) ResolveLazada(orders []staging.LazadaOrder, counters *PlatformCounters) *ResolvedOrders {
	rows := make([]orderRow, 0, len(orders))
	seen := make(map[string]bool, len(orders))

	for _, o := range orders {
		naturalID := o.OrderID.String()
		if naturalID == "" {
			counters.MalformedRecords++
			continue
		}
		if seen[naturalID] {
			continue
		}
		orderDate, ok := parseLazadaTime(o.CreatedAt)
		if !ok {
			counters.MalformedRecords++
			continue
		}
		seen[naturalID] = true

		var updatedAt *time.Time
		if t, ok := parseLazadaTime(o.UpdatedAt); ok {
			updatedAt = &t
		}

		itemCount := o.ItemsCount
		if itemCount == 0 {
			itemCount = len(o.OrderItems)
		}

		rows = append(rows, orderRow{
			naturalID: naturalID,
			order: warehouse.Order{
				PlatformOrderID: naturalID,
				OrderStatus:     o.Status(),
				OrderDate:       orderDate,
				UpdatedAt:       updatedAt,
				PriceTotal:      resolvePriceTotal(num(o.Price), lazadaLineSum(o.OrderItems)),
				TotalItemCount:  itemCount,
				PaymentMethod:   o.PaymentMethod,
				ShippingCity:    o.AddressShipping.City,
				PlatformKey:     warehouse.PlatformKeyLazada,
			},
		})
	}

	return r.finalize(warehouse.PlatformKeyLazada, rows, counters)
}

// ResolveShopee maps raw Shopee orders into dimension rows
func (r *OrderResolver) ResolveShopee(orders []staging.ShopeeOrder, counters *PlatformCounters) *ResolvedOrders {
	rows := make([]orderRow, 0, len(orders))
	seen := make(map[string]bool, len(orders))

	for _, o := range orders {
		if o.OrderSN == "" || o.CreateTime == 0 {
			counters.MalformedRecords++
			continue
		}
		if seen[o.OrderSN] {
			continue
		}
		seen[o.OrderSN] = true

		var updatedAt *time.Time
		if o.UpdateTime != 0 {
			t := unixTime(o.UpdateTime)
			updatedAt = &t
		}

		rows = append(rows, orderRow{
			naturalID: o.OrderSN,
			order: warehouse.Order{
				PlatformOrderID: o.OrderSN,
				OrderStatus:     o.OrderStatus,
				OrderDate:       unixTime(o.CreateTime),
				UpdatedAt:       updatedAt,
				PriceTotal:      resolvePriceTotal(num(o.TotalAmount), shopeeLineSum(o.ItemList)),
				TotalItemCount:  len(o.ItemList),
				PaymentMethod:   o.PaymentMethod,
				ShippingCity:    o.RecipientAddress.City,
				PlatformKey:     warehouse.PlatformKeyShopee,
			},
		})
	}

	return r.finalize(warehouse.PlatformKeyShopee, rows, counters)
}

func (r *OrderResolver) finalize(platformKey int, rows []orderRow, counters *PlatformCounters) *ResolvedOrders {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].naturalID < rows[j].naturalID })

	res := &ResolvedOrders{
		Orders:          make([]warehouse.Order, 0, len(rows)),
		KeyByNaturalID:  make(map[string]int64, len(rows)),
		DateByNaturalID: make(map[string]time.Time, len(rows)),
	}
	for i, row := range rows {
		key := surrogateKey(platformKey, i+1)
		row.order.OrderKey = key
		res.Orders = append(res.Orders, row.order)
		res.KeyByNaturalID[row.naturalID] = key
		res.DateByNaturalID[row.naturalID] = row.order.OrderDate
	}

	counters.Orders = len(res.Orders)
	r.logger.Info("orders resolved",
		zap.Int("platform_key", platformKey),
		zap.Int("orders", len(res.Orders)))
	return res
}

// resolvePriceTotal applies the three-step total resolution: the platform's
// own total when non-zero, then the line-item sum, then null.
func resolvePriceTotal(native, lineSum decimal.Decimal) decimal.NullDecimal {
	if native.IsPositive() {
		return decimal.NullDecimal{Decimal: native, Valid: true}
	}
	if lineSum.IsPositive() {
		return decimal.NullDecimal{Decimal: lineSum, Valid: true}
	}
	return decimal.NullDecimal{}
}

func lazadaLineSum(items []staging.LazadaOrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(num(it.PaidPrice))
	}
	return sum
}

func shopeeLineSum(items []staging.ShopeeOrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		qty := it.ModelQuantityPurchased
		if qty < 1 {
			qty = 1
		}
		sum = sum.Add(num(it.ModelDiscountedPrice).Mul(decimal.NewFromInt(int64(qty))))
	}
	return sum
}
