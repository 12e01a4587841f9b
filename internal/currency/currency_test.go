package currency

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDefaultTable(t *testing.T) {
	tbl := Default()

	usd, ok := tbl.Lookup("USD")
	require.True(t, ok)
	assert.Equal(t, "USD", usd.Code)
	assert.EqualValues(t, 2, usd.DecimalDigits)
	assert.True(t, usd.ConversionRate.Equal(decimal.NewFromInt(1)))

	_, ok = tbl.Lookup("usd")
	assert.False(t, ok, "lookups are exact")
	_, ok = tbl.Lookup("XXX")
	assert.False(t, ok)

	all := tbl.All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Code, all[i].Code)
	}
}

func TestRate(t *testing.T) {
	tbl := Default()

	r, err := tbl.Rate("USD", "CAD")
	require.NoError(t, err)
	assert.True(t, r.Equal(dec("1.36")), r.String())

	r, err = tbl.Rate("CAD", "CAD")
	require.NoError(t, err)
	assert.True(t, r.Equal(decimal.NewFromInt(1)))

	back, err := tbl.Rate("CAD", "USD")
	require.NoError(t, err)
	assert.True(t, back.Mul(dec("1.36")).Round(8).Equal(decimal.NewFromInt(1)))

	_, err = tbl.Rate("USD", "XXX")
	assert.Error(t, err)
	_, err = tbl.Rate("XXX", "USD")
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	got, err := Default().Convert(decimal.NewFromInt(100), "USD", "JPY")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("15120")), got.String())
}

func TestRound(t *testing.T) {
	tbl := Default()
	jpy, _ := tbl.Lookup("JPY")
	kwd, _ := tbl.Lookup("KWD")
	usd, _ := tbl.Lookup("USD")

	assert.Equal(t, "152", jpy.Round(dec("151.5")).String())
	assert.Equal(t, "1.235", kwd.Round(dec("1.2345")).String())
	assert.Equal(t, "10.01", usd.Round(dec("10.005")).String())
}

func TestParse(t *testing.T) {
	tbl, err := Parse([]byte(`{" gbp ":{"name":"Pound","decimal_digits":2,"conversion_rate":"0.79"}}`))
	require.NoError(t, err)
	gbp, ok := tbl.Lookup("GBP")
	require.True(t, ok)
	assert.Equal(t, "GBP", gbp.Code)

	cases := map[string]string{
		"not json":      `[`,
		"zero rate":     `{"ABC":{"decimal_digits":2,"conversion_rate":"0"}}`,
		"negative rate": `{"ABC":{"decimal_digits":2,"conversion_rate":"-1"}}`,
		"bad digits":    `{"ABC":{"decimal_digits":-1,"conversion_rate":"1"}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	tbl, err := Load("")
	require.NoError(t, err)
	_, ok := tbl.Lookup("EUR")
	assert.True(t, ok)

	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ABC":{"decimal_digits":1,"conversion_rate":"2"}}`), 0o600))
	tbl, err = Load(path)
	require.NoError(t, err)
	_, ok = tbl.Lookup("USD")
	assert.False(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
