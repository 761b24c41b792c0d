package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLookup(t *testing.T, name string) Function {
	t.Helper()
	f, ok := Lookup(name)
	require.True(t, ok, "function %s", name)
	return f
}

func TestValidate_CleansArguments(t *testing.T) {
	f := mustLookup(t, FnFilterProductsByPrice)

	out, err := f.Validate(map[string]any{
		"minPrice": "100000",
		"sortBy":   "Highest",
		"limit":    5.0,
		"userId":   "spoofed",
		"category": "  ",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"minPrice": 100000.0, "sortBy": "highest", "limit": 5}, out)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		function string
		args     map[string]any
		param    string
	}{
		{"fractional integer", FnAddToCart, map[string]any{"productId": "p1", "quantity": 1.5}, "quantity"},
		{"huge integer", FnAddToCart, map[string]any{"productId": "p1", "quantity": 1e300}, "quantity"},
		{"negative huge integer", FnSearchProducts, map[string]any{"limit": -1e12}, "limit"},
		{"unknown enum", FnCreateOrderFromCart, map[string]any{"paymentMethod": "bitcoin"}, "paymentMethod"},
		{"number as text", FnSearchProducts, map[string]any{"maxPrice": "cheap"}, "maxPrice"},
		{"list of numbers", FnCompareProducts, map[string]any{"productIds": []any{1.0, 2.0}}, "productIds"},
		{"missing required", FnValidateVoucher, map[string]any{}, "voucherCode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mustLookup(t, tt.function).Validate(tt.args)
			require.Error(t, err)
			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.param, argErr.Param)
			assert.NotEmpty(t, argErr.Clarification())
		})
	}
}

func TestValidate_ContextResolvableMayBeMissing(t *testing.T) {
	out, err := mustLookup(t, FnAddToCart).Validate(map[string]any{"quantity": 2.0})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"quantity": 2}, out)

	_, err = mustLookup(t, FnCheckOrderStatus).Validate(nil)
	assert.NoError(t, err)
}

func TestValidate_NumericIDBecomesString(t *testing.T) {
	out, err := mustLookup(t, FnGetProductDetails).Validate(map[string]any{"productId": 42.0})
	require.NoError(t, err)
	assert.Equal(t, "42", out["productId"])
}

func TestArgs_IntOutOfRange(t *testing.T) {
	args := Args{Values: map[string]any{"quantity": 1e300, "limit": "-9e18", "page": 3.0}}

	assert.Equal(t, 1, args.Int("quantity", 1))
	assert.Equal(t, 10, args.Int("limit", 10))
	assert.Equal(t, 3, args.Int("page", 1))
	assert.Equal(t, 10, args.Limit(10))
}

func TestArgs_Limit(t *testing.T) {
	assert.Equal(t, 10, Args{}.Limit(10))
	assert.Equal(t, 3, Args{Values: map[string]any{"limit": 3}}.Limit(10))
	assert.Equal(t, maxLimit, Args{Values: map[string]any{"limit": 500}}.Limit(10))
	assert.Equal(t, 10, Args{Values: map[string]any{"limit": -1}}.Limit(10))
}

func TestCatalog_RequiredParamsAreDeclared(t *testing.T) {
	for _, f := range Catalog() {
		for _, name := range f.Required {
			_, ok := f.Param(name)
			assert.True(t, ok, "%s requires undeclared %s", f.Name, name)
		}
	}
}
