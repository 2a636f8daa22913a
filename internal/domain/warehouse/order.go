package warehouse

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the order-header dimension. OrderStatus keeps the platform's raw
// status string verbatim; the two platforms' vocabularies differ too much for
// a shared enum without losing information downstream filters need. PriceTotal
// is null when neither the platform total nor the line-item sum yields a
// usable value; such orders stay in the dimension for audit but never join
// facts.
type Order struct {
	OrderKey        int64               `gorm:"primaryKey;autoIncrement:false" csv:"order_key"`
	PlatformOrderID string              `gorm:"type:varchar(100);not null;uniqueIndex:idx_order_natural,priority:1" csv:"platform_order_id"`
	OrderStatus     string              `gorm:"type:varchar(50);not null" csv:"order_status"`
	OrderDate       time.Time           `gorm:"not null;index" csv:"order_date"`
	UpdatedAt       *time.Time          `csv:"updated_at"`
	PriceTotal      decimal.NullDecimal `gorm:"type:decimal(18,4)" csv:"price_total"`
	TotalItemCount  int                 `gorm:"not null;default:0" csv:"total_item_count"`
	PaymentMethod   string              `gorm:"type:varchar(50)" csv:"payment_method"`
	ShippingCity    string              `gorm:"type:varchar(100)" csv:"shipping_city"`
	PlatformKey     int                 `gorm:"not null;uniqueIndex:idx_order_natural,priority:2" csv:"platform_key"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "dim_order"
}
