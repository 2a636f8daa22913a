package harmonize

import (
	"sort"
	"time"

	"github.com/lacollections/warehouse/internal/domain/warehouse"
	"github.com/lacollections/warehouse/internal/infrastructure/mapping"
	"github.com/lacollections/warehouse/internal/infrastructure/staging"
	"go.uber.org/zap"
)

// ResolvedCustomers is one platform's deduplicated customer slice plus the
// lookup tables the fact builder joins through. NaturalIDByOrder is the
// single source of truth for which buyer owns which order; handing it to
// the fact builder instead of letting it re-derive keys is what keeps the
// two sides in agreement.
type ResolvedCustomers struct {
	Customers        []warehouse.Customer
	KeyByNaturalID   map[string]int64
	NaturalIDByOrder map[string]string
}

// CustomerResolver builds the customer dimension per platform
type CustomerResolver struct {
	logger *zap.Logger
}

// NewCustomerResolver creates a customer resolver
func NewCustomerResolver(logger *zap.Logger) *CustomerResolver {
	return &CustomerResolver{logger: logger.Named("customer_resolver")}
}

type customerAccum struct {
	city        string
	firstOrder  time.Time
	lastOrder   time.Time
	totalOrders int // fulfilled orders only
}

// ResolveLazada derives buyer identities from the masked shipping-address
// block of every order and deduplicates by the synthetic natural key.
func (r *CustomerResolver) ResolveLazada(orders []staging.LazadaOrder, pm *mapping.PlatformMapping, counters *PlatformCounters) *ResolvedCustomers {
	accum := make(map[string]*customerAccum)
	byOrder := make(map[string]string, len(orders))

	for _, o := range orders {
		orderID := o.OrderID.String()
		if orderID == "" {
			continue
		}
		orderDate, ok := parseLazadaTime(o.CreatedAt)
		if !ok {
			continue
		}
		naturalID := LazadaCustomerID(o.AddressShipping)
		byOrder[orderID] = naturalID
		merge(accum, naturalID, o.AddressShipping.City, orderDate, pm.IsFulfilled(o.Status()))
	}

	res := r.finalize(warehouse.PlatformKeyLazada, accum, byOrder)
	counters.Customers = len(res.Customers)
	r.logger.Info("customers resolved",
		zap.Int("platform_key", warehouse.PlatformKeyLazada),
		zap.Int("customers", len(res.Customers)),
		zap.Int("orders_mapped", len(byOrder)))
	return res
}

// ResolveShopee deduplicates by buyer handle, using the pre-resolved
// identity map so anonymous identifiers stay consistent across resolvers.
func (r *CustomerResolver) ResolveShopee(orders []staging.ShopeeOrder, idsByOrder map[string]string, pm *mapping.PlatformMapping, counters *PlatformCounters) *ResolvedCustomers {
	accum := make(map[string]*customerAccum)
	byOrder := make(map[string]string, len(orders))

	for _, o := range orders {
		if o.OrderSN == "" || o.CreateTime == 0 {
			continue
		}
		naturalID, ok := idsByOrder[o.OrderSN]
		if !ok {
			continue
		}
		byOrder[o.OrderSN] = naturalID
		merge(accum, naturalID, o.RecipientAddress.City, unixTime(o.CreateTime), pm.IsFulfilled(o.OrderStatus))
	}

	res := r.finalize(warehouse.PlatformKeyShopee, accum, byOrder)
	counters.Customers = len(res.Customers)
	r.logger.Info("customers resolved",
		zap.Int("platform_key", warehouse.PlatformKeyShopee),
		zap.Int("customers", len(res.Customers)),
		zap.Int("orders_mapped", len(byOrder)))
	return res
}

func merge(accum map[string]*customerAccum, naturalID, city string, orderDate time.Time, fulfilled bool) {
	a, ok := accum[naturalID]
	if !ok {
		a = &customerAccum{firstOrder: orderDate, lastOrder: orderDate}
		accum[naturalID] = a
	}
	if city != "" && (a.city == "" || orderDate.Before(a.firstOrder)) {
		a.city = city
	}
	if orderDate.Before(a.firstOrder) {
		a.firstOrder = orderDate
	}
	if orderDate.After(a.lastOrder) {
		a.lastOrder = orderDate
	}
	if fulfilled {
		a.totalOrders++
	}
}

// finalize assigns surrogate keys in sorted natural-key order so the
// dimension is identical across runs on identical inputs.
func (r *CustomerResolver) finalize(platformKey int, accum map[string]*customerAccum, byOrder map[string]string) *ResolvedCustomers {
	naturalIDs := make([]string, 0, len(accum))
	for id := range accum {
		naturalIDs = append(naturalIDs, id)
	}
	sort.Strings(naturalIDs)

	customers := make([]warehouse.Customer, 0, len(naturalIDs))
	keyByNatural := make(map[string]int64, len(naturalIDs))
	for i, id := range naturalIDs {
		a := accum[id]
		key := surrogateKey(platformKey, i+1)
		keyByNatural[id] = key
		customers = append(customers, warehouse.Customer{
			CustomerKey:        key,
			PlatformCustomerID: id,
			City:               a.city,
			BuyerSegment:       warehouse.SegmentFor(a.totalOrders),
			TotalOrders:        a.totalOrders,
			CustomerSince:      truncateToDay(a.firstOrder),
			LastOrderDate:      truncateToDay(a.lastOrder),
			PlatformKey:        platformKey,
		})
	}

	return &ResolvedCustomers{
		Customers:        customers,
		KeyByNaturalID:   keyByNatural,
		NaturalIDByOrder: byOrder,
	}
}
