package harmonize

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// surrogateKeyBand separates the platforms' surrogate key ranges so both
// sides can be resolved in parallel and still produce deterministic keys.
const surrogateKeyBand = 1_000_000

func surrogateKey(platformKey, ordinal int) int64 {
	return int64(platformKey)*surrogateKeyBand + int64(ordinal)
}

// num converts a raw JSON number to decimal, treating absent or garbage
// values as zero. Malformed-record accounting happens at the record level,
// not per field.
func num(n json.Number) decimal.Decimal {
	if n == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// nullNum converts a raw JSON number to a nullable decimal
func nullNum(n json.Number) decimal.NullDecimal {
	if n == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// Lazada timestamps arrive in a handful of formats depending on API version
var lazadaTimeLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02",
}

func parseLazadaTime(s string) (time.Time, bool) {
	for _, layout := range lazadaTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// unixTime converts Shopee's unix-second timestamps
func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
