package harmonize

import (
	"strings"
	"testing"

	"github.com/lacollections/warehouse/internal/infrastructure/staging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazadaCustomerID(t *testing.T) {
	t.Run("masked name and phone", func(t *testing.T) {
		id := LazadaCustomerID(staging.LazadaAddress{
			FirstName: "A**********o",
			Phone:     "63*********91",
		})
		assert.Equal(t, "LZAO6391", id)
	})

	t.Run("uppercases unmasked characters", func(t *testing.T) {
		id := LazadaCustomerID(staging.LazadaAddress{
			FirstName: "maria s***a",
			Phone:     "09171234567",
		})
		assert.Equal(t, "LZMA0967", id)
	})

	t.Run("single visible character pads with X", func(t *testing.T) {
		id := LazadaCustomerID(staging.LazadaAddress{
			FirstName: "J****",
			Phone:     "0917000011",
		})
		assert.Equal(t, "LZJX0911", id)
	})

	t.Run("fully masked name falls back to XX", func(t *testing.T) {
		id := LazadaCustomerID(staging.LazadaAddress{
			FirstName: "******",
			Phone:     "0917000011",
		})
		assert.Equal(t, "LZXX0911", id)
	})

	t.Run("short phone reuses leading pair", func(t *testing.T) {
		id := LazadaCustomerID(staging.LazadaAddress{
			FirstName: "Ana",
			Phone:     "63*",
		})
		assert.Equal(t, "LZAA6363", id)
	})

	t.Run("missing phone falls back to zeros", func(t *testing.T) {
		id := LazadaCustomerID(staging.LazadaAddress{
			FirstName: "Ana",
			Phone:     "",
		})
		assert.Equal(t, "LZAA0000", id)
	})

	t.Run("same masked identity collapses to one key", func(t *testing.T) {
		a := LazadaCustomerID(staging.LazadaAddress{FirstName: "M***a", Phone: "0917***4567"})
		b := LazadaCustomerID(staging.LazadaAddress{FirstName: "M*********a", Phone: "09171234567"})
		assert.Equal(t, a, b)
	})
}

func TestShopeeCustomerIDs(t *testing.T) {
	orders := []staging.ShopeeOrder{
		{OrderSN: "SN003", BuyerUsername: ""},
		{OrderSN: "SN001", BuyerUsername: "buyer_one"},
		{OrderSN: "SN002", BuyerUsername: ""},
		{OrderSN: "SN001", BuyerUsername: "buyer_one"}, // duplicate order record
	}

	t.Run("handles pass through and guests get anonymous ids", func(t *testing.T) {
		ids := ShopeeCustomerIDs(orders, NewAnonGenerator(1))
		require.Len(t, ids, 3)
		assert.Equal(t, "buyer_one", ids["SN001"])
		assert.True(t, strings.HasPrefix(ids["SN002"], "Anon"))
		assert.True(t, strings.HasPrefix(ids["SN003"], "Anon"))
		assert.NotEqual(t, ids["SN002"], ids["SN003"])
	})

	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		first := ShopeeCustomerIDs(orders, NewAnonGenerator(42))
		second := ShopeeCustomerIDs(orders, NewAnonGenerator(42))
		assert.Equal(t, first, second)
	})

	t.Run("assignment independent of input order", func(t *testing.T) {
		shuffled := []staging.ShopeeOrder{orders[2], orders[0], orders[1]}
		first := ShopeeCustomerIDs(orders, NewAnonGenerator(42))
		second := ShopeeCustomerIDs(shuffled, NewAnonGenerator(42))
		assert.Equal(t, first["SN002"], second["SN002"])
		assert.Equal(t, first["SN003"], second["SN003"])
	})
}

func TestAnonGenerator(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		id := NewAnonGenerator(7).Next()
		assert.Regexp(t, `^Anon\d{7}$`, id)
	})

	t.Run("deterministic per seed", func(t *testing.T) {
		a := NewAnonGenerator(99)
		b := NewAnonGenerator(99)
		for i := 0; i < 10; i++ {
			assert.Equal(t, a.Next(), b.Next())
		}
	})

	t.Run("never repeats within a run", func(t *testing.T) {
		g := NewAnonGenerator(3)
		seen := make(map[string]struct{})
		for i := 0; i < 1000; i++ {
			id := g.Next()
			_, dup := seen[id]
			require.False(t, dup)
			seen[id] = struct{}{}
		}
	})

	t.Run("reserved handles are never produced", func(t *testing.T) {
		probe := NewAnonGenerator(5)
		first := probe.Next()

		g := NewAnonGenerator(5)
		g.Reserve(first)
		assert.NotEqual(t, first, g.Next())
	})
}
