package harmonize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lacollections/warehouse/internal/infrastructure/staging"
)

// Natural-key extraction lives here as shared pure functions so the
// customer resolver and the fact builder cannot disagree about which raw
// fields constitute a buyer's identity. Historically the two sides each
// reimplemented extraction and drifted apart, which silently turned an
// entire platform's buyers anonymous.

var nonDigits = regexp.MustCompile(`[^\d]`)

// LazadaCustomerID derives the synthetic Lazada buyer key from the masked
// shipping-address block: "LZ" + first and last unmasked name characters +
// first two and last two phone digits. Lazada never exposes a buyer handle,
// so this is the only stable identity available.
func LazadaCustomerID(addr staging.LazadaAddress) string {
	return "LZ" + lazadaNameChars(addr.FirstName) + lazadaPhoneDigits(addr.Phone)
}

func lazadaNameChars(name string) string {
	cleaned := strings.ReplaceAll(name, "*", "")
	runes := []rune(cleaned)
	switch {
	case len(runes) >= 2:
		return strings.ToUpper(string(runes[0])) + strings.ToUpper(string(runes[len(runes)-1]))
	case len(runes) == 1:
		return strings.ToUpper(string(runes[0])) + "X"
	default:
		return "XX"
	}
}

func lazadaPhoneDigits(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	switch {
	case len(digits) >= 4:
		return digits[:2] + digits[len(digits)-2:]
	case len(digits) >= 2:
		// Too short for distinct ends, reuse the leading pair
		return digits[:2] + digits[:2]
	default:
		return "0000"
	}
}

// ShopeeCustomerIDs resolves every Shopee order's buyer identity up front,
// in a single deterministic pass. Orders with a buyer_username use it as-is;
// guest and privacy-redacted checkouts each get a synthesized anonymous
// identifier. The result is shared by the customer resolver and the fact
// builder so both sides see the same key per order.
func ShopeeCustomerIDs(orders []staging.ShopeeOrder, gen *AnonGenerator) map[string]string {
	for _, o := range orders {
		gen.Reserve(strings.TrimSpace(o.BuyerUsername))
	}

	// Anonymous identifiers are handed out in sorted order-number order so
	// a fixed seed yields the same assignment on every run.
	sns := make([]string, 0, len(orders))
	userBySN := make(map[string]string, len(orders))
	for _, o := range orders {
		if o.OrderSN == "" {
			continue
		}
		if _, seen := userBySN[o.OrderSN]; seen {
			continue
		}
		userBySN[o.OrderSN] = strings.TrimSpace(o.BuyerUsername)
		sns = append(sns, o.OrderSN)
	}
	sort.Strings(sns)

	ids := make(map[string]string, len(sns))
	for _, sn := range sns {
		if handle := userBySN[sn]; handle != "" {
			ids[sn] = handle
		} else {
			ids[sn] = gen.Next()
		}
	}
	return ids
}
