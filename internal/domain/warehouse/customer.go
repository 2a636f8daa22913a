package warehouse

import "time"

// BuyerSegment classifies a customer by completed-order count
type BuyerSegment string

const (
	BuyerSegmentNew       BuyerSegment = "New"
	BuyerSegmentReturning BuyerSegment = "Returning"
)

// Customer is the buyer dimension. PlatformCustomerID is the platform's
// natural key, or a synthesized "Anon" identifier when the platform discloses
// no reusable buyer handle. TotalOrders and LastOrderDate are recomputed from
// the full order history on every run, never incrementally mutated.
type Customer struct {
	CustomerKey        int64        `gorm:"primaryKey;autoIncrement:false" csv:"customer_key"`
	PlatformCustomerID string       `gorm:"type:varchar(100);not null;uniqueIndex:idx_customer_natural,priority:1" csv:"platform_customer_id"`
	City               string       `gorm:"type:varchar(100)" csv:"city"`
	BuyerSegment       BuyerSegment `gorm:"type:varchar(20);not null" csv:"buyer_segment"`
	TotalOrders        int          `gorm:"not null;default:0" csv:"total_orders"`
	CustomerSince      time.Time    `gorm:"type:date;not null" csv:"customer_since"`
	LastOrderDate      time.Time    `gorm:"type:date;not null" csv:"last_order_date"`
	PlatformKey        int          `gorm:"not null;uniqueIndex:idx_customer_natural,priority:2" csv:"platform_key"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "dim_customer"
}

// SegmentFor returns the buyer segment for a completed-order count
func SegmentFor(totalOrders int) BuyerSegment {
	if totalOrders > 1 {
		return BuyerSegmentReturning
	}
	return BuyerSegmentNew
}
