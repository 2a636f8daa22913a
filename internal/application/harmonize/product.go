package harmonize

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lacollections/warehouse/internal/domain/warehouse"
	"github.com/lacollections/warehouse/internal/infrastructure/mapping"
	"github.com/lacollections/warehouse/internal/infrastructure/staging"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ResolvedProducts is one platform's two-level product dimension plus the
// lookup tables used for fact-level joins.
type ResolvedProducts struct {
	Products                []warehouse.Product
	Variants                []warehouse.ProductVariant
	KeyByItemID             map[string]int64
	VariantKeyBySkuID       map[string]string
	DefaultVariantByProduct map[int64]string
}

// ProductResolver builds the product and variant dimensions per platform
type ProductResolver struct {
	logger *zap.Logger
}

// NewProductResolver creates a product resolver
func NewProductResolver(logger *zap.Logger) *ProductResolver {
	return &ProductResolver{logger: logger.Named("product_resolver")}
}

// ResolveLazada maps raw Lazada listings into products and variants.
// Promotional SKU prices only apply when the run date falls inside the
// special-price window.
func (r *ProductResolver) ResolveLazada(products []staging.LazadaProduct, runDate time.Time, pm *mapping.PlatformMapping, counters *PlatformCounters) *ResolvedProducts {
	ordered := make([]staging.LazadaProduct, len(products))
	copy(ordered, products)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ItemID < ordered[j].ItemID })

	res := newResolvedProducts(len(ordered))
	ordinal := 0
	for _, p := range ordered {
		itemID := p.ItemID.String()
		if itemID == "" {
			counters.MalformedRecords++
			continue
		}
		if _, dup := res.KeyByItemID[itemID]; dup {
			continue
		}
		ordinal++
		productKey := surrogateKey(warehouse.PlatformKeyLazada, ordinal)
		res.KeyByItemID[itemID] = productKey
		res.Products = append(res.Products, warehouse.Product{
			ProductKey:    productKey,
			ProductItemID: itemID,
			Name:          p.Attributes.Name,
			Category:      pm.CategoryName(strconv.FormatInt(p.PrimaryCategory, 10)),
			Status:        pm.NormalizeStatus(p.Status),
			PlatformKey:   warehouse.PlatformKeyLazada,
		})

		if len(p.Skus) == 0 {
			r.addDefaultVariant(res, productKey, warehouse.PlatformKeyLazada, itemID, runDate, counters)
			continue
		}
		for i, sku := range p.Skus {
			scent, volume := SplitAttributes([]string{sku.Variation1, sku.Variation2, sku.Variation3})
			variant := warehouse.ProductVariant{
				ProductVariantKey: warehouse.VariantKey(productKey, warehouse.PlatformKeyLazada, i+1),
				ProductKey:        productKey,
				PlatformSkuID:     sku.SkuID.String(),
				CanonicalSku:      canonicalSku(sku.SellerSku, sku.SkuID.String()),
				Scent:             scent,
				Volume:            volume,
				CurrentPrice:      lazadaCurrentPrice(sku, runDate),
				OriginalPrice:     nullNum(sku.Price),
				CreatedAt:         runDate,
				UpdatedAt:         runDate,
			}
			res.Variants = append(res.Variants, variant)
			if variant.PlatformSkuID != "" {
				res.VariantKeyBySkuID[variant.PlatformSkuID] = variant.ProductVariantKey
			}
		}
	}

	// Lazada exposes no per-listing rating, so imputation is a no-op here
	// unless upstream extraction starts delivering one.
	imputeRatings(res.Products, counters)

	counters.Products = len(res.Products)
	counters.Variants = len(res.Variants)
	r.logResolved(warehouse.PlatformKeyLazada, res)
	return res
}

// ResolveShopee maps raw Shopee listings, resolving model attributes
// through the tier-variation tables.
func (r *ProductResolver) ResolveShopee(products []staging.ShopeeProduct, runDate time.Time, pm *mapping.PlatformMapping, counters *PlatformCounters) *ResolvedProducts {
	ordered := make([]staging.ShopeeProduct, len(products))
	copy(ordered, products)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ItemID < ordered[j].ItemID })

	res := newResolvedProducts(len(ordered))
	ordinal := 0
	for _, p := range ordered {
		itemID := p.ItemID.String()
		if itemID == "" {
			counters.MalformedRecords++
			continue
		}
		if _, dup := res.KeyByItemID[itemID]; dup {
			continue
		}
		ordinal++
		productKey := surrogateKey(warehouse.PlatformKeyShopee, ordinal)
		res.KeyByItemID[itemID] = productKey
		res.Products = append(res.Products, warehouse.Product{
			ProductKey:    productKey,
			ProductItemID: itemID,
			Name:          p.ItemName,
			Category:      pm.CategoryName(strconv.FormatInt(p.CategoryID, 10)),
			Status:        pm.NormalizeStatus(p.ItemStatus),
			Rating:        nullNum(p.RatingStar),
			PlatformKey:   warehouse.PlatformKeyShopee,
		})

		if len(p.ModelList) == 0 {
			r.addDefaultVariant(res, productKey, warehouse.PlatformKeyShopee, itemID, runDate, counters)
			continue
		}
		for i, model := range p.ModelList {
			scent, volume := SplitAttributes(tierOptions(p.TierVariation, model.TierIndex))
			current := nullNum(model.Price)
			if !current.Valid {
				current = nullNum(p.PriceInfo.CurrentPrice)
			}
			original := nullNum(model.OriginalPrice)
			if !original.Valid {
				original = nullNum(p.PriceInfo.OriginalPrice)
			}
			variant := warehouse.ProductVariant{
				ProductVariantKey: warehouse.VariantKey(productKey, warehouse.PlatformKeyShopee, i+1),
				ProductKey:        productKey,
				PlatformSkuID:     model.ModelID.String(),
				CanonicalSku:      canonicalSku(model.ModelSku, model.ModelID.String()),
				Scent:             scent,
				Volume:            volume,
				CurrentPrice:      current,
				OriginalPrice:     original,
				CreatedAt:         runDate,
				UpdatedAt:         runDate,
			}
			res.Variants = append(res.Variants, variant)
			if variant.PlatformSkuID != "" {
				res.VariantKeyBySkuID[variant.PlatformSkuID] = variant.ProductVariantKey
			}
		}
	}

	imputeRatings(res.Products, counters)

	counters.Products = len(res.Products)
	counters.Variants = len(res.Variants)
	r.logResolved(warehouse.PlatformKeyShopee, res)
	return res
}

func newResolvedProducts(capacity int) *ResolvedProducts {
	return &ResolvedProducts{
		Products:                make([]warehouse.Product, 0, capacity),
		KeyByItemID:             make(map[string]int64, capacity),
		VariantKeyBySkuID:       make(map[string]string),
		DefaultVariantByProduct: make(map[int64]string),
	}
}

func (r *ProductResolver) addDefaultVariant(res *ResolvedProducts, productKey int64, platformKey int, itemID string, runDate time.Time, counters *PlatformCounters) {
	variant := warehouse.NewDefaultVariant(productKey, platformKey, itemID, runDate)
	res.Variants = append(res.Variants, variant)
	res.DefaultVariantByProduct[productKey] = variant.ProductVariantKey
	counters.DefaultVariants++
}

func (r *ProductResolver) logResolved(platformKey int, res *ResolvedProducts) {
	r.logger.Info("products resolved",
		zap.Int("platform_key", platformKey),
		zap.Int("products", len(res.Products)),
		zap.Int("variants", len(res.Variants)),
		zap.Int("default_variants", len(res.DefaultVariantByProduct)))
}

// canonicalSku normalizes the seller-facing SKU into the cross-platform
// join key: uppercased, trimmed, base segment before the first dash.
func canonicalSku(sellerSku, fallback string) string {
	s := strings.ToUpper(strings.TrimSpace(sellerSku))
	if s == "" {
		return strings.ToUpper(strings.TrimSpace(fallback))
	}
	if i := strings.Index(s, "-"); i > 0 {
		return s[:i]
	}
	return s
}

// lazadaCurrentPrice picks the promotional price only while the run date is
// inside the special-price window, otherwise the base price.
func lazadaCurrentPrice(sku staging.LazadaSku, runDate time.Time) decimal.NullDecimal {
	special := nullNum(sku.SpecialPrice)
	if special.Valid && special.Decimal.IsPositive() {
		from, okFrom := parseLazadaTime(sku.SpecialFromTime)
		to, okTo := parseLazadaTime(sku.SpecialToTime)
		if okFrom && okTo && !runDate.Before(from) && !runDate.After(to) {
			return special
		}
	}
	return nullNum(sku.Price)
}

// imputeRatings fills unrated products with the platform-wide average of
// rated ones, keeping the column usable in aggregate reporting. Platforms
// with zero rated products keep nulls.
func imputeRatings(products []warehouse.Product, counters *PlatformCounters) {
	sum := decimal.Zero
	rated := 0
	for _, p := range products {
		if p.Rating.Valid {
			sum = sum.Add(p.Rating.Decimal)
			rated++
		}
	}
	if rated == 0 {
		return
	}
	avg := sum.Div(decimal.NewFromInt(int64(rated))).Round(2)
	for i := range products {
		if !products[i].Rating.Valid {
			products[i].Rating = decimal.NullDecimal{Decimal: avg, Valid: true}
			counters.ImputedRatings++
		}
	}
}

// tierOptions resolves a model's tier indexes into their option labels
func tierOptions(tiers []staging.ShopeeTier, tierIndex []int) []string {
	opts := make([]string, 0, len(tierIndex))
	for tier, idx := range tierIndex {
		if tier >= len(tiers) {
			break
		}
		options := tiers[tier].OptionList
		if idx < 0 || idx >= len(options) {
			continue
		}
		opts = append(opts, options[idx].Option)
	}
	return opts
}
