package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_MarshalJSON(t *testing.T) {
	p := NewPrice(decimal.RequireFromString("22.64"), "R$ 22,64", CurrencyBRL)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":22.64,"formattedAmount":"R$ 22,64","currency":"BRL"}`, string(data))

	var back Price
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Value().Equal(p.Value()))
	assert.Equal(t, CurrencyBRL, back.Currency())
}

func TestNewPrice_RejectsNegative(t *testing.T) {
	assert.Nil(t, NewPrice(decimal.RequireFromString("-3.5"), "-3,50", CurrencyEUR))

	zero := NewPrice(decimal.Zero, "R$ 0,00", CurrencyBRL)
	require.NotNil(t, zero)
	assert.True(t, zero.Value().IsZero())

	var p Price
	assert.Error(t, json.Unmarshal([]byte(`{"value":-1,"formattedAmount":"-1","currency":"BRL"}`), &p))
}

func TestPrice_WithCurrencyLeavesOriginalUntouched(t *testing.T) {
	p := NewPrice(decimal.NewFromInt(10), "10", "")
	q := p.WithCurrency(CurrencyUSD)

	assert.Equal(t, CurrencyCode(""), p.Currency())
	assert.Equal(t, CurrencyUSD, q.Currency())
}

func TestProduct_NullPrices(t *testing.T) {
	data, err := json.Marshal(&Product{Images: []string{}, Rating: "0", Orders: "0", CurrencyCode: CurrencyBRL})
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Nil(t, out["salePrice"])
	assert.Nil(t, out["originalPrice"])
	assert.Equal(t, []interface{}{}, out["images"])
}

func TestDraft_AddImage(t *testing.T) {
	var d Draft
	d.AddImage("https://ae01.alicdn.com/kf/A.jpg")
	d.AddImage("https://ae01.alicdn.com/kf/A.jpg")
	d.AddImage("")
	d.AddImage("https://ae01.alicdn.com/kf/B.jpg")

	assert.Equal(t, []string{
		"https://ae01.alicdn.com/kf/A.jpg",
		"https://ae01.alicdn.com/kf/B.jpg",
	}, d.Images)
}

func TestParseCurrencyCode(t *testing.T) {
	tests := []struct {
		in   string
		want CurrencyCode
		ok   bool
	}{
		{"BRL", CurrencyBRL, true},
		{" usd ", CurrencyUSD, true},
		{"R$", "", false},
		{"EURO", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseCurrencyCode(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
