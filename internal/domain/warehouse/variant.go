package warehouse

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSkuPrefix marks a synthesized variant created for products whose raw
// record carries no SKU/model data at all.
const DefaultSkuPrefix = "DEFAULT-"

// ProductVariant is the child level of the product dimension. The key is a
// composite string that preserves the owning product and platform lineage.
// Every Product has at least one variant; when the platform exposes no
// SKU/model data a default variant is synthesized with null pricing so fact
// lookups never fail for lack of a variant.
type ProductVariant struct {
	ProductVariantKey string              `gorm:"primaryKey;type:varchar(50)" csv:"product_variant_key"`
	ProductKey        int64               `gorm:"not null;index" csv:"product_key"`
	PlatformSkuID     string              `gorm:"type:varchar(100);not null" csv:"platform_sku_id"`
	CanonicalSku      string              `gorm:"type:varchar(100);not null;index" csv:"canonical_sku"`
	Scent             string              `gorm:"type:varchar(100)" csv:"scent"`
	Volume            string              `gorm:"type:varchar(50)" csv:"volume"`
	CurrentPrice      decimal.NullDecimal `gorm:"type:decimal(18,4)" csv:"current_price"`
	OriginalPrice     decimal.NullDecimal `gorm:"type:decimal(18,4)" csv:"original_price"`
	CreatedAt         time.Time           `gorm:"not null" csv:"created_at"`
	UpdatedAt         time.Time           `gorm:"not null" csv:"updated_at"`
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "dim_product_variant"
}

// VariantKey builds the composite variant key for the n-th variant (1-based)
// of a product on a platform.
func VariantKey(productKey int64, platformKey, ordinal int) string {
	return fmt.Sprintf("%d.%d.%d", productKey, platformKey, ordinal)
}

// IsDefault reports whether the variant was synthesized as a fallback
func (v *ProductVariant) IsDefault() bool {
	return strings.HasPrefix(v.PlatformSkuID, DefaultSkuPrefix)
}

// NewDefaultVariant synthesizes the fallback variant for a product with no
// resolvable SKU/model data. Pricing stays null on purpose.
func NewDefaultVariant(productKey int64, platformKey int, productItemID string, now time.Time) ProductVariant {
	sentinel := DefaultSkuPrefix + productItemID
	return ProductVariant{
		ProductVariantKey: VariantKey(productKey, platformKey, 1),
		ProductKey:        productKey,
		PlatformSkuID:     sentinel,
		CanonicalSku:      sentinel,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
