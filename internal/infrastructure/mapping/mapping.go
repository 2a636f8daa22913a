package mapping

import (
	"fmt"
	"os"
	"strings"

	"github.com/lacollections/warehouse/internal/domain/shared"
	"github.com/lacollections/warehouse/internal/domain/warehouse"
	"github.com/spf13/viper"
)

// Mappings is the declarative platform-to-canonical mapping table. It is
// configuration, not logic: status vocabularies, fulfilled allow-lists,
// category names, discount-component bucketing and mega-sale holidays are
// all editable without a code change.
type Mappings struct {
	Lazada   PlatformMapping `mapstructure:"lazada"`
	Shopee   PlatformMapping `mapstructure:"shopee"`
	MegaSale MegaSaleConfig  `mapstructure:"mega_sale"`
}

// PlatformMapping holds one platform's mapping tables
type PlatformMapping struct {
	// Fields maps every consumed raw field name to its canonical column.
	// The fact builder selects its quantity and money source fields
	// through this table at run time, and the pipeline refuses to start
	// when a required canonical column has no raw source mapped.
	Fields map[string]string `mapstructure:"fields"`
	// StatusNormalization maps raw listing statuses to the three-way enum
	StatusNormalization map[string]string `mapstructure:"status_normalization"`
	// FulfilledStatuses is the order-status allow-list for the fact table
	FulfilledStatuses []string `mapstructure:"fulfilled_statuses"`
	// Categories maps raw category identifiers to display names
	Categories map[string]string `mapstructure:"categories"`
	// Discount components consolidated into the two voucher buckets
	VoucherPlatformComponents []string `mapstructure:"voucher_platform_components"`
	VoucherSellerComponents   []string `mapstructure:"voucher_seller_components"`
}

// MegaSaleConfig lists recurring promotional dates beyond the twin-date days
type MegaSaleConfig struct {
	Holidays []string `mapstructure:"holidays"` // MM-DD
}

// Canonical columns every platform mapping must cover
var requiredColumns = []string{
	"platform_order_id",
	"platform_customer_id",
	"product_item_id",
	"platform_sku_id",
	"item_quantity",
	"paid_price",
	"original_price",
}

// Load reads the mapping file. A missing or incomplete file is a systemic
// failure: the run must not start without an agreed field contract.
func Load(path string) (*Mappings, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingMapping, path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	var m Mappings
	if err := v.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Mappings) validate() error {
	for name, pm := range map[string]*PlatformMapping{"lazada": &m.Lazada, "shopee": &m.Shopee} {
		if len(pm.FulfilledStatuses) == 0 {
			return fmt.Errorf("%w: %s.fulfilled_statuses is empty", shared.ErrMissingMapping, name)
		}
		mapped := make(map[string]bool, len(pm.Fields))
		for _, canonical := range pm.Fields {
			mapped[canonical] = true
		}
		for _, col := range requiredColumns {
			if !mapped[col] {
				return fmt.Errorf("%w: %s has no raw field mapped to %s", shared.ErrMissingMapping, name, col)
			}
		}
	}
	return nil
}

// ForPlatform returns the mapping for a seeded platform key
func (m *Mappings) ForPlatform(platformKey int) (*PlatformMapping, error) {
	switch platformKey {
	case warehouse.PlatformKeyLazada:
		return &m.Lazada, nil
	case warehouse.PlatformKeyShopee:
		return &m.Shopee, nil
	default:
		return nil, shared.ErrUnknownPlatform
	}
}

// RawFieldFor returns the raw field name feeding a canonical column. When
// several raw fields map to the same column the lexicographically smallest
// wins, so the choice is stable across runs.
func (pm *PlatformMapping) RawFieldFor(canonical string) string {
	chosen := ""
	for raw, col := range pm.Fields {
		if col != canonical {
			continue
		}
		if chosen == "" || raw < chosen {
			chosen = raw
		}
	}
	return chosen
}

// NormalizeStatus maps a raw listing status onto the shared enum. Unknown
// statuses deliberately land on Inactive-Removed, the conservative default.
func (pm *PlatformMapping) NormalizeStatus(raw string) warehouse.ProductStatus {
	if mapped, ok := pm.StatusNormalization[strings.ToLower(strings.TrimSpace(raw))]; ok {
		switch warehouse.ProductStatus(mapped) {
		case warehouse.ProductStatusActive, warehouse.ProductStatusInactiveRemoved, warehouse.ProductStatusPendingReview:
			return warehouse.ProductStatus(mapped)
		}
	}
	return warehouse.ProductStatusInactiveRemoved
}

// IsFulfilled reports whether a raw order status is on the platform's
// revenue allow-list. The comparison is case-insensitive because the
// platforms are not consistent about casing across API versions.
func (pm *PlatformMapping) IsFulfilled(rawStatus string) bool {
	for _, s := range pm.FulfilledStatuses {
		if strings.EqualFold(s, strings.TrimSpace(rawStatus)) {
			return true
		}
	}
	return false
}

// CategoryName resolves a raw category identifier to its display name,
// falling back to a tagged identifier when unmapped.
func (pm *PlatformMapping) CategoryName(rawID string) string {
	if rawID == "" {
		return ""
	}
	if name, ok := pm.Categories[rawID]; ok {
		return name
	}
	return "Category_" + rawID
}
