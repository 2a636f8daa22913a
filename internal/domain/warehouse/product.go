package warehouse

import "github.com/shopspring/decimal"

// ProductStatus is the cross-platform normalized listing status
type ProductStatus string

const (
	ProductStatusActive          ProductStatus = "Active"
	ProductStatusInactiveRemoved ProductStatus = "Inactive-Removed"
	ProductStatusPendingReview   ProductStatus = "Pending-Review"
)

// Product is the parent listing dimension, one row per distinct
// (product_item_id, platform_key). Rating may be imputed from the
// platform-wide average when the listing has no reviews.
type Product struct {
	ProductKey    int64               `gorm:"primaryKey;autoIncrement:false" csv:"product_key"`
	ProductItemID string              `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_natural,priority:1" csv:"product_item_id"`
	Name          string              `gorm:"type:varchar(300);not null" csv:"name"`
	Category      string              `gorm:"type:varchar(100)" csv:"category"`
	Status        ProductStatus       `gorm:"type:varchar(20);not null" csv:"status"`
	Rating        decimal.NullDecimal `gorm:"type:decimal(3,2)" csv:"rating"`
	PlatformKey   int                 `gorm:"not null;uniqueIndex:idx_product_natural,priority:2" csv:"platform_key"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "dim_product"
}
