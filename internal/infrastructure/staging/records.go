package staging

import "encoding/json"

// Raw extract records as produced by the per-platform extraction jobs.
// Monetary and identifier numbers stay json.Number so nothing is rounded
// through float64 before the resolvers convert to decimal.

// LazadaAddress is the shipping-address block on a Lazada order. Names and
// phone arrive masked ("A**********o", "63*********91"); the unmasked
// characters are all the platform ever discloses about the buyer.
type LazadaAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
}

// LazadaOrder is one raw Lazada order with its nested line items
type LazadaOrder struct {
	OrderID         json.Number       `json:"order_id"`
	Statuses        []string          `json:"statuses"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
	Price           json.Number       `json:"price"`
	ItemsCount      int               `json:"items_count"`
	PaymentMethod   string            `json:"payment_method"`
	AddressShipping LazadaAddress     `json:"address_shipping"`
	OrderItems      []LazadaOrderItem `json:"order_items"`
}

// Status returns the order's primary status string
func (o *LazadaOrder) Status() string {
	if len(o.Statuses) == 0 {
		return ""
	}
	return o.Statuses[0]
}

// LazadaOrderItem is one raw Lazada line item. Price fields are line
// totals; voucher amounts are already split by funding party.
type LazadaOrderItem struct {
	ItemID          json.Number `json:"item_id"`
	SkuID           json.Number `json:"sku_id"`
	Name            string      `json:"name"`
	Quantity        int         `json:"quantity"`
	PaidPrice       json.Number `json:"paid_price"`
	ItemPrice       json.Number `json:"item_price"`
	VoucherPlatform json.Number `json:"voucher_platform"`
	VoucherSeller   json.Number `json:"voucher_seller"`
	ShippingAmount  json.Number `json:"shipping_amount"`
}

// Money returns the named raw money field of a line item. The field names
// come from the mapping configuration, not code.
func (i *LazadaOrderItem) Money(name string) json.Number {
	switch name {
	case "paid_price":
		return i.PaidPrice
	case "item_price":
		return i.ItemPrice
	case "voucher_platform":
		return i.VoucherPlatform
	case "voucher_seller":
		return i.VoucherSeller
	case "shipping_amount":
		return i.ShippingAmount
	default:
		return "0"
	}
}

// Count returns the named raw quantity field of a line item
func (i *LazadaOrderItem) Count(name string) int {
	if name == "quantity" {
		return i.Quantity
	}
	return 0
}

// LazadaProduct is one raw Lazada listing with its nested SKUs
type LazadaProduct struct {
	ItemID          json.Number `json:"item_id"`
	PrimaryCategory int64       `json:"primary_category"`
	Status          string      `json:"status"`
	Attributes      struct {
		Name string `json:"name"`
	} `json:"attributes"`
	Skus []LazadaSku `json:"skus"`
}

// LazadaSku is one SKU entry on a Lazada listing. The promotional price is
// only valid inside the special_from_time/special_to_time window.
type LazadaSku struct {
	SkuID           json.Number `json:"SkuId"`
	SellerSku       string      `json:"SellerSku"`
	Variation1      string      `json:"Variation1"`
	Variation2      string      `json:"Variation2"`
	Variation3      string      `json:"Variation3"`
	Price           json.Number `json:"price"`
	SpecialPrice    json.Number `json:"special_price"`
	SpecialFromTime string      `json:"special_from_time"`
	SpecialToTime   string      `json:"special_to_time"`
}

// ShopeeOrder is one raw Shopee order. Timestamps are unix seconds.
// BuyerUsername is empty for guest or privacy-redacted checkouts.
type ShopeeOrder struct {
	OrderSN          string            `json:"order_sn"`
	OrderStatus      string            `json:"order_status"`
	CreateTime       int64             `json:"create_time"`
	UpdateTime       int64             `json:"update_time"`
	TotalAmount      json.Number       `json:"total_amount"`
	PaymentMethod    string            `json:"payment_method"`
	BuyerUsername    string            `json:"buyer_username"`
	RecipientAddress struct {
		City string `json:"city"`
	} `json:"recipient_address"`
	ItemList []ShopeeOrderItem `json:"item_list"`
}

// ShopeeOrderItem is one raw Shopee line item. Prices are per unit.
type ShopeeOrderItem struct {
	ItemID                 json.Number `json:"item_id"`
	ModelID                json.Number `json:"model_id"`
	ModelSku               string      `json:"model_sku"`
	ItemName               string      `json:"item_name"`
	ModelQuantityPurchased int         `json:"model_quantity_purchased"`
	ModelOriginalPrice     json.Number `json:"model_original_price"`
	ModelDiscountedPrice   json.Number `json:"model_discounted_price"`
}

// Money returns the named raw money field of a line item. The field names
// come from the mapping configuration, not code.
func (i *ShopeeOrderItem) Money(name string) json.Number {
	switch name {
	case "model_discounted_price":
		return i.ModelDiscountedPrice
	case "model_original_price":
		return i.ModelOriginalPrice
	default:
		return "0"
	}
}

// Count returns the named raw quantity field of a line item
func (i *ShopeeOrderItem) Count(name string) int {
	if name == "model_quantity_purchased" {
		return i.ModelQuantityPurchased
	}
	return 0
}

// ShopeeProduct is one raw Shopee listing with its model list and tier
// variation tables. Model attributes are resolved through tier_index.
type ShopeeProduct struct {
	ItemID     json.Number `json:"item_id"`
	ItemName   string      `json:"item_name"`
	CategoryID int64       `json:"category_id"`
	ItemStatus string      `json:"item_status"`
	RatingStar json.Number `json:"rating_star"`
	PriceInfo  struct {
		CurrentPrice  json.Number `json:"current_price"`
		OriginalPrice json.Number `json:"original_price"`
	} `json:"price_info"`
	ModelList     []ShopeeModel `json:"model_list"`
	TierVariation []ShopeeTier  `json:"tier_variation"`
}

// ShopeeModel is one sellable variant of a Shopee listing
type ShopeeModel struct {
	ModelID       json.Number `json:"model_id"`
	ModelSku      string      `json:"model_sku"`
	TierIndex     []int       `json:"tier_index"`
	Price         json.Number `json:"price"`
	OriginalPrice json.Number `json:"original_price"`
}

// ShopeeTier is one variation axis with its option labels
type ShopeeTier struct {
	Name       string `json:"name"`
	OptionList []struct {
		Option string `json:"option"`
	} `json:"option_list"`
}

// ShopeePaymentDetail is the richer per-order payment record with a full
// discount breakdown. Coverage is partial; orders without one fall back to
// the raw item price fields.
type ShopeePaymentDetail struct {
	OrderSN       string            `json:"order_sn"`
	BuyerUserName string            `json:"buyer_user_name"`
	OrderIncome   ShopeeOrderIncome `json:"order_income"`
}

// ShopeeOrderIncome carries the order-level money breakdown
type ShopeeOrderIncome struct {
	Items                []ShopeePaymentItem `json:"items"`
	BuyerPaidShippingFee json.Number         `json:"buyer_paid_shipping_fee"`
	ActualShippingFee    json.Number         `json:"actual_shipping_fee"`
	VoucherFromShopee    json.Number         `json:"voucher_from_shopee"`
	VoucherFromSeller    json.Number         `json:"voucher_from_seller"`
	OrderSellerDiscount  json.Number         `json:"order_seller_discount"`
}

// ShopeePaymentItem is one line of the payment breakdown. SellingPrice is a
// line total, not a unit price. Discount components carry their funding
// party in the field name.
type ShopeePaymentItem struct {
	ItemID                    json.Number `json:"item_id"`
	ModelID                   json.Number `json:"model_id"`
	SellingPrice              json.Number `json:"selling_price"`
	DiscountedPrice           json.Number `json:"discounted_price"`
	DiscountFromVoucherShopee json.Number `json:"discount_from_voucher_shopee"`
	DiscountFromVoucherSeller json.Number `json:"discount_from_voucher_seller"`
	DiscountFromCoin          json.Number `json:"discount_from_coin"`
}

// Extracts is the fully materialized raw input set for one run
type Extracts struct {
	LazadaOrders   []LazadaOrder
	LazadaProducts []LazadaProduct
	ShopeeOrders   []ShopeeOrder
	ShopeeProducts []ShopeeProduct
	ShopeePayments []ShopeePaymentDetail
}

// Component returns the named discount component from a payment item. The
// component names come from the mapping configuration, not code.
func (i *ShopeePaymentItem) Component(name string) json.Number {
	switch name {
	case "discount_from_voucher_shopee":
		return i.DiscountFromVoucherShopee
	case "discount_from_voucher_seller":
		return i.DiscountFromVoucherSeller
	case "discount_from_coin":
		return i.DiscountFromCoin
	default:
		return "0"
	}
}
