package warehouse

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PricingSource records which pricing path produced a fact row. It is kept
// in memory for the validation report but never persisted.
type PricingSource string

const (
	// PricingSourceTier1 means the row was priced from a payment-detail
	// record with a full discount breakdown.
	PricingSourceTier1 PricingSource = "tier1"
	// PricingSourceTier2 means the row fell back to the raw item's basic
	// price fields with vouchers left at zero.
	PricingSourceTier2 PricingSource = "tier2"
)

// FactOrderLine is the revenue ledger, one row per fulfilled line item.
// Rows are created once per run and regenerated wholesale on re-run. Every
// row has all five foreign keys resolved; lines that cannot resolve a key
// are dropped and counted, never emitted with nulls.
type FactOrderLine struct {
	OrderItemKey           string          `gorm:"primaryKey;type:varchar(120)" csv:"order_item_key"`
	OrderKey               int64           `gorm:"not null;index" csv:"order_key"`
	ProductKey             int64           `gorm:"not null;index" csv:"product_key"`
	ProductVariantKey      string          `gorm:"type:varchar(50);not null" csv:"product_variant_key"`
	TimeKey                int             `gorm:"not null;index" csv:"time_key"`
	CustomerKey            int64           `gorm:"not null;index" csv:"customer_key"`
	PlatformKey            int             `gorm:"not null;index" csv:"platform_key"`
	ItemQuantity           int             `gorm:"not null" csv:"item_quantity"`
	PaidPrice              decimal.Decimal `gorm:"type:decimal(18,4);not null" csv:"paid_price"`
	OriginalUnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null" csv:"original_unit_price"`
	VoucherPlatformAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" csv:"voucher_platform_amount"`
	VoucherSellerAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" csv:"voucher_seller_amount"`
	ShippingFeePaidByBuyer decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" csv:"shipping_fee_paid_by_buyer"`
	PricingSource          PricingSource   `gorm:"-" csv:"-"`
}

// TableName returns the table name for GORM
func (FactOrderLine) TableName() string {
	return "fact_order_line"
}

// OrderItemKeyFor builds the platform-prefixed line identity. The line index
// is the item's position within its order, so keys are stable across runs.
func OrderItemKeyFor(platformKey int, platformOrderID string, lineIndex int) string {
	prefix := "LZ"
	if platformKey == PlatformKeyShopee {
		prefix = "SP"
	}
	return fmt.Sprintf("%s-%s-%d", prefix, platformOrderID, lineIndex)
}

// FactSalesAggregate is the pre-aggregated reporting fact at
// (time, platform, customer, product) grain. Purely derived from
// FactOrderLine and fully replaced on every run.
type FactSalesAggregate struct {
	TimeKey        int             `gorm:"primaryKey;autoIncrement:false" csv:"time_key"`
	PlatformKey    int             `gorm:"primaryKey;autoIncrement:false" csv:"platform_key"`
	CustomerKey    int64           `gorm:"primaryKey;autoIncrement:false" csv:"customer_key"`
	ProductKey     int64           `gorm:"primaryKey;autoIncrement:false" csv:"product_key"`
	TotalOrders    int             `gorm:"not null" csv:"total_orders"`
	TotalItemsSold int             `gorm:"not null" csv:"total_items_sold"`
	GrossRevenue   decimal.Decimal `gorm:"type:decimal(18,4);not null" csv:"gross_revenue"`
	TotalDiscounts decimal.Decimal `gorm:"type:decimal(18,4);not null" csv:"total_discounts"`
	NetSales       decimal.Decimal `gorm:"type:decimal(18,4);not null" csv:"net_sales"`
}

// TableName returns the table name for GORM
func (FactSalesAggregate) TableName() string {
	return "fact_sales_aggregate"
}
