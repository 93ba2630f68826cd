package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyJSONHasTwoPlaces(t *testing.T) {
	snap := Snapshot{
		Lines: []CartLine{{Product: Product{Price: MustMoney("9.5")}, Quantity: 4, Subtotal: MustMoney("9.5").Times(4)}},
		Total: MustMoney("38"),
	}
	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var got struct {
		Lines []struct {
			Product  struct{ Price string }
			Subtotal string
		}
		Total string
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "38.00", got.Total)
	assert.Equal(t, "9.50", got.Lines[0].Product.Price)
	assert.Equal(t, "38.00", got.Lines[0].Subtotal)
}

func TestMoneyRoundTrip(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"12.30"`), &m))
	assert.True(t, m.Equal(MustMoney("12.3").Decimal))
	assert.Equal(t, "0.00", ZeroMoney.StringFixed(2))
	assert.Equal(t, "12.30", m.Plus(ZeroMoney).StringFixed(2))
}
