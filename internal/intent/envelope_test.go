package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// plausibleArgs fills every declared parameter with a value of its type
func plausibleArgs(fn Function) map[string]any {
	values := make(map[string]any, len(fn.Params))
	for _, p := range fn.Params {
		switch {
		case len(p.Enum) > 0:
			values[p.Name] = p.Enum[0]
		case p.Type == TypeNumber:
			values[p.Name] = 150000.0
		case p.Type == TypeInteger:
			values[p.Name] = 2
		case p.Type == TypeBoolean:
			values[p.Name] = true
		case p.Type == TypeStringArray:
			values[p.Name] = []any{"p1", "p2"}
		default:
			values[p.Name] = "p1"
		}
	}
	return values
}

// mistypedArgs puts a value of the wrong shape in every declared parameter
func mistypedArgs(fn Function) map[string]any {
	values := make(map[string]any, len(fn.Params))
	for _, p := range fn.Params {
		switch p.Type {
		case TypeString:
			values[p.Name] = map[string]any{"id": 7}
		default:
			values[p.Name] = "not-a-" + string(p.Type)
		}
	}
	return values
}

func TestHandlers_AlwaysReturnEnvelope(t *testing.T) {
	ctx := context.Background()
	stores := map[string]error{
		"stores fail":       errors.New("connection refused"),
		"stores return nil": nil,
		"nothing found":     domain.ErrProductNotFound,
	}

	for storeName, storeErr := range stores {
		reg := brokenHandlers(storeErr).registry()
		require.Len(t, reg, len(Catalog()))

		for _, fn := range Catalog() {
			call := reg[fn.Name]
			require.NotNil(t, call, fn.Name)

			inputs := map[string]map[string]any{
				"empty":     {},
				"plausible": plausibleArgs(fn),
				"mistyped":  mistypedArgs(fn),
			}
			for inputName, values := range inputs {
				t.Run(storeName+"/"+fn.Name+"/"+inputName, func(t *testing.T) {
					var r Result
					assert.NotPanics(t, func() {
						r = call(ctx, callerArgs(values))
					})
					assert.NotEmpty(t, r.Message)
					if storeErr != nil && !r.Success {
						assert.NotContains(t, r.Message, "Error executing")
					}
				})
			}
		}
	}
}

func TestRecovered_TurnsPanicIntoFailure(t *testing.T) {
	boom := recovered("explode", func(ctx context.Context, args Args) Result {
		var cart *domain.Cart
		_ = cart.Items[0]
		return ok(nil, "unreachable")
	})

	var r Result
	require.NotPanics(t, func() { r = boom(context.Background(), callerArgs(nil)) })

	assert.False(t, r.Success)
	assert.Contains(t, r.Message, "Error executing")
}

func TestValidateVoucher_NilCart(t *testing.T) {
	f := newFixture()
	f.carts.On("GetCart", mock.Anything, "u1").Return(nil, nil)

	r := f.handlers.ValidateVoucher(context.Background(), callerArgs(map[string]any{"voucherCode": "BIG"}))

	assert.False(t, r.Success)
	assert.Contains(t, r.Message, "cart is empty")
	f.discounts.AssertNumberOfCalls(t, "ApplyDiscount", 0)
}
