package harmonize

import (
	"fmt"
	"sort"

	"github.com/lacollections/warehouse/internal/domain/shared"
	"github.com/lacollections/warehouse/internal/domain/warehouse"
	"github.com/lacollections/warehouse/internal/infrastructure/mapping"
	"github.com/lacollections/warehouse/internal/infrastructure/staging"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// pricingTolerance is the rounding slack allowed before a row counts as a
// pricing-invariant mismatch in the validation report.
var pricingTolerance = decimal.NewFromFloat(0.01)

// FactInputs gathers everything the fact builder joins against. All
// dimension resolution must have completed before Build runs.
type FactInputs struct {
	Extracts  *staging.Extracts
	Mappings  *mapping.Mappings
	TimeKeys  map[int]struct{}
	Customers map[int]*ResolvedCustomers
	Products  map[int]*ResolvedProducts
	Orders    map[int]*ResolvedOrders
}

// FactBuilder is the reconciliation engine: it joins raw line items against
// every resolved dimension, applies the two-tier pricing logic and filters
// to fulfilled orders. Rows that cannot resolve all five foreign keys are
// dropped and counted, never emitted with nulls.
type FactBuilder struct {
	logger *zap.Logger
}

// NewFactBuilder creates a fact builder
func NewFactBuilder(logger *zap.Logger) *FactBuilder {
	return &FactBuilder{logger: logger.Named("fact_builder")}
}

// Build produces the full fact table for both platforms, ordered by line
// key. A time-dimension gap is the only hard failure: per-record issues are
// counted in the report and processing continues.
func (b *FactBuilder) Build(in *FactInputs, report *RunReport) ([]warehouse.FactOrderLine, error) {
	var lines []warehouse.FactOrderLine

	lazada, err := b.buildLazada(in, report.Counters(warehouse.PlatformKeyLazada))
	if err != nil {
		return nil, err
	}
	lines = append(lines, lazada...)

	shopee, err := b.buildShopee(in, report.Counters(warehouse.PlatformKeyShopee))
	if err != nil {
		return nil, err
	}
	lines = append(lines, shopee...)

	sort.Slice(lines, func(i, j int) bool { return lines[i].OrderItemKey < lines[j].OrderItemKey })

	b.logger.Info("fact lines built",
		zap.Int("total", len(lines)),
		zap.Int("lazada", len(lazada)),
		zap.Int("shopee", len(shopee)))
	return lines, nil
}

func (b *FactBuilder) buildLazada(in *FactInputs, counters *PlatformCounters) ([]warehouse.FactOrderLine, error) {
	pm := &in.Mappings.Lazada
	customers := in.Customers[warehouse.PlatformKeyLazada]
	products := in.Products[warehouse.PlatformKeyLazada]
	orders := in.Orders[warehouse.PlatformKeyLazada]

	var lines []warehouse.FactOrderLine
	for _, raw := range in.Extracts.LazadaOrders {
		orderID := raw.OrderID.String()
		orderKey, ok := orders.KeyByNaturalID[orderID]
		if !ok {
			// Already counted as malformed during order resolution
			continue
		}
		if !pm.IsFulfilled(raw.Status()) {
			counters.ExcludedOrders++
			continue
		}

		timeKey, err := b.resolveTimeKey(in, orders, orderID)
		if err != nil {
			return nil, err
		}
		customerKey, ok := b.resolveCustomerKey(customers, orderID, counters)
		if !ok {
			continue
		}

		for idx, item := range raw.OrderItems {
			productKey, variantKey, ok := resolveProductKeys(products, item.ItemID.String(), item.SkuID.String())
			if !ok {
				counters.RecordUnmappedSku(fmt.Sprintf("order=%s item=%s sku=%s", orderID, item.ItemID, item.SkuID))
				continue
			}

			qty := item.Count(pm.RawFieldFor("item_quantity"))
			if qty < 1 {
				qty = 1
			}
			paid := num(item.Money(pm.RawFieldFor("paid_price")))
			originalUnit := num(item.Money(pm.RawFieldFor("original_price"))).Div(decimal.NewFromInt(int64(qty)))

			line := warehouse.FactOrderLine{
				OrderItemKey:           warehouse.OrderItemKeyFor(warehouse.PlatformKeyLazada, orderID, idx+1),
				OrderKey:               orderKey,
				ProductKey:             productKey,
				ProductVariantKey:      variantKey,
				TimeKey:                timeKey,
				CustomerKey:            customerKey,
				PlatformKey:            warehouse.PlatformKeyLazada,
				ItemQuantity:           qty,
				PaidPrice:              paid,
				OriginalUnitPrice:      originalUnit,
				VoucherPlatformAmount:  num(item.VoucherPlatform),
				VoucherSellerAmount:    num(item.VoucherSeller),
				ShippingFeePaidByBuyer: num(item.ShippingAmount),
				PricingSource:          warehouse.PricingSourceTier2,
			}
			finishLine(&line, counters)
			lines = append(lines, line)
		}
	}

	counters.FactLines = len(lines)
	return lines, nil
}

func (b *FactBuilder) buildShopee(in *FactInputs, counters *PlatformCounters) ([]warehouse.FactOrderLine, error) {
	pm := &in.Mappings.Shopee
	customers := in.Customers[warehouse.PlatformKeyShopee]
	products := in.Products[warehouse.PlatformKeyShopee]
	orders := in.Orders[warehouse.PlatformKeyShopee]
	payments := indexPayments(in.Extracts.ShopeePayments)

	var lines []warehouse.FactOrderLine
	for _, raw := range in.Extracts.ShopeeOrders {
		orderKey, ok := orders.KeyByNaturalID[raw.OrderSN]
		if !ok {
			continue
		}
		if !pm.IsFulfilled(raw.OrderStatus) {
			counters.ExcludedOrders++
			continue
		}

		timeKey, err := b.resolveTimeKey(in, orders, raw.OrderSN)
		if err != nil {
			return nil, err
		}
		customerKey, ok := b.resolveCustomerKey(customers, raw.OrderSN, counters)
		if !ok {
			continue
		}

		payment, hasPayment := payments[raw.OrderSN]
		var orderLines []warehouse.FactOrderLine
		for idx, item := range raw.ItemList {
			productKey, variantKey, ok := resolveProductKeys(products, item.ItemID.String(), item.ModelID.String())
			if !ok {
				counters.RecordUnmappedSku(fmt.Sprintf("order=%s item=%s model=%s", raw.OrderSN, item.ItemID, item.ModelID))
				continue
			}

			qty := item.Count(pm.RawFieldFor("item_quantity"))
			if qty < 1 {
				qty = 1
			}

			line := warehouse.FactOrderLine{
				OrderItemKey:      warehouse.OrderItemKeyFor(warehouse.PlatformKeyShopee, raw.OrderSN, idx+1),
				OrderKey:          orderKey,
				ProductKey:        productKey,
				ProductVariantKey: variantKey,
				TimeKey:           timeKey,
				CustomerKey:       customerKey,
				PlatformKey:       warehouse.PlatformKeyShopee,
				ItemQuantity:      qty,
			}

			if paymentItem, ok := matchPaymentItem(payment, hasPayment, item); ok {
				applyTier1Pricing(&line, paymentItem, pm, qty)
			} else {
				applyTier2Pricing(&line, item, pm, qty)
				counters.Tier2Fallbacks++
			}

			orderLines = append(orderLines, line)
		}

		if hasPayment {
			apportionShipping(orderLines, num(payment.OrderIncome.BuyerPaidShippingFee))
		}
		for i := range orderLines {
			finishLine(&orderLines[i], counters)
		}
		lines = append(lines, orderLines...)
	}

	counters.RawPayments = len(in.Extracts.ShopeePayments)
	counters.FactLines = len(lines)
	return lines, nil
}

func (b *FactBuilder) resolveTimeKey(in *FactInputs, orders *ResolvedOrders, naturalID string) (int, error) {
	orderDate := orders.DateByNaturalID[naturalID]
	timeKey := warehouse.TimeKeyOf(orderDate)
	if _, ok := in.TimeKeys[timeKey]; !ok {
		return 0, fmt.Errorf("%w: order %s at %d", shared.ErrTimeRangeGap, naturalID, timeKey)
	}
	return timeKey, nil
}

func (b *FactBuilder) resolveCustomerKey(customers *ResolvedCustomers, naturalOrderID string, counters *PlatformCounters) (int64, bool) {
	naturalID, ok := customers.NaturalIDByOrder[naturalOrderID]
	if !ok {
		counters.UnresolvedCustomers++
		return 0, false
	}
	key, ok := customers.KeyByNaturalID[naturalID]
	if !ok {
		counters.UnresolvedCustomers++
		return 0, false
	}
	return key, true
}

// resolveProductKeys looks up the product and variant for a line item,
// falling back to the product's synthesized default variant when the
// platform SKU identifier matches nothing.
func resolveProductKeys(products *ResolvedProducts, itemID, skuID string) (int64, string, bool) {
	productKey, ok := products.KeyByItemID[itemID]
	if !ok {
		return 0, "", false
	}
	if variantKey, ok := products.VariantKeyBySkuID[skuID]; ok {
		return productKey, variantKey, true
	}
	if variantKey, ok := products.DefaultVariantByProduct[productKey]; ok {
		return productKey, variantKey, true
	}
	return 0, "", false
}

// applyTier1Pricing derives the line's money fields from the payment
// record: selling price is a line total, and every disclosed discount
// component is consolidated into the two funding-party buckets.
func applyTier1Pricing(line *warehouse.FactOrderLine, item staging.ShopeePaymentItem, pm *mapping.PlatformMapping, qty int) {
	selling := num(item.SellingPrice)
	platformBucket := sumComponents(item, pm.VoucherPlatformComponents)
	sellerBucket := sumComponents(item, pm.VoucherSellerComponents)

	line.PaidPrice = selling.Sub(platformBucket).Sub(sellerBucket)
	line.OriginalUnitPrice = selling.Div(decimal.NewFromInt(int64(qty)))
	line.VoucherPlatformAmount = platformBucket
	line.VoucherSellerAmount = sellerBucket
	line.PricingSource = warehouse.PricingSourceTier1
}

// applyTier2Pricing falls back to the raw item's per-unit price fields,
// selected through the mapping table. No discount breakdown exists on this
// path, so vouchers stay zero.
func applyTier2Pricing(line *warehouse.FactOrderLine, item staging.ShopeeOrderItem, pm *mapping.PlatformMapping, qty int) {
	qtyDec := decimal.NewFromInt(int64(qty))
	line.PaidPrice = num(item.Money(pm.RawFieldFor("paid_price"))).Mul(qtyDec)
	line.OriginalUnitPrice = num(item.Money(pm.RawFieldFor("original_price")))
	line.VoucherPlatformAmount = decimal.Zero
	line.VoucherSellerAmount = decimal.Zero
	line.PricingSource = warehouse.PricingSourceTier2
}

func sumComponents(item staging.ShopeePaymentItem, components []string) decimal.Decimal {
	sum := decimal.Zero
	for _, name := range components {
		sum = sum.Add(num(item.Component(name)))
	}
	return sum
}

// apportionShipping distributes the order-level buyer-paid shipping fee
// across the order's qualifying lines proportionally to paid price, with
// the rounding remainder on the last line. A zero paid total degrades to an
// equal split.
func apportionShipping(lines []warehouse.FactOrderLine, shipping decimal.Decimal) {
	if len(lines) == 0 || shipping.IsZero() {
		return
	}

	totalPaid := decimal.Zero
	for _, l := range lines {
		if l.PaidPrice.IsPositive() {
			totalPaid = totalPaid.Add(l.PaidPrice)
		}
	}

	allocated := decimal.Zero
	for i := range lines {
		if i == len(lines)-1 {
			lines[i].ShippingFeePaidByBuyer = shipping.Sub(allocated)
			break
		}
		var share decimal.Decimal
		if totalPaid.IsPositive() {
			share = shipping.Mul(lines[i].PaidPrice).Div(totalPaid).Round(2)
		} else {
			share = shipping.Div(decimal.NewFromInt(int64(len(lines)))).Round(2)
		}
		lines[i].ShippingFeePaidByBuyer = share
		allocated = allocated.Add(share)
	}
}

// finishLine enforces the non-negative paid invariant and records rows
// that fail the strict pricing identity. Mismatches are quantified for the
// post-run report, never reconciled here.
func finishLine(line *warehouse.FactOrderLine, counters *PlatformCounters) {
	if line.PaidPrice.IsNegative() {
		line.PaidPrice = decimal.Zero
	}

	expected := line.OriginalUnitPrice.Mul(decimal.NewFromInt(int64(line.ItemQuantity)))
	actual := line.PaidPrice.Add(line.VoucherPlatformAmount).Add(line.VoucherSellerAmount)
	delta := expected.Sub(actual)
	if delta.Abs().GreaterThan(pricingTolerance) {
		counters.RecordPricingMismatch(line.PricingSource, delta)
	}
}

func indexPayments(payments []staging.ShopeePaymentDetail) map[string]staging.ShopeePaymentDetail {
	idx := make(map[string]staging.ShopeePaymentDetail, len(payments))
	for _, p := range payments {
		if p.OrderSN == "" {
			continue
		}
		if _, dup := idx[p.OrderSN]; dup {
			continue
		}
		idx[p.OrderSN] = p
	}
	return idx
}

// matchPaymentItem finds the payment breakdown line for a raw order item by
// its item and model identity.
func matchPaymentItem(payment staging.ShopeePaymentDetail, hasPayment bool, item staging.ShopeeOrderItem) (staging.ShopeePaymentItem, bool) {
	if !hasPayment {
		return staging.ShopeePaymentItem{}, false
	}
	for _, pi := range payment.OrderIncome.Items {
		if pi.ItemID == item.ItemID && pi.ModelID == item.ModelID {
			return pi, true
		}
	}
	return staging.ShopeePaymentItem{}, false
}
