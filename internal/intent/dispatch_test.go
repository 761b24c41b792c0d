package intent

import (
	"context"
	"testing"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCheckCoverage(t *testing.T) {
	f := newFixture()
	require.NoError(t, CheckCoverage(f.handlers))
	assert.Len(t, f.handlers.registry(), len(Catalog()))
}

func TestNewTable_EveryFunctionBound(t *testing.T) {
	f := newFixture()
	table := NewTable(f.handlers, Caller{UserID: "u1", SessionID: "s1"})
	for _, name := range Names() {
		assert.Contains(t, table, name)
	}
}

func TestNewTable_InjectsCaller(t *testing.T) {
	ctx := context.Background()

	t.Run("payment link gets the client address", func(t *testing.T) {
		f := newFixture()
		f.payments.On("CreatePaymentURL", mock.Anything, "o1", "u1", "203.0.113.7").
			Return(&domain.PaymentLink{PaymentURL: "https://pay.example/o1", TransactionID: "t1"}, nil)
		table := NewTable(f.handlers, Caller{UserID: "u1", SessionID: "s1", IPAddress: "203.0.113.7"})

		r := table[FnCreatePaymentLink](ctx, map[string]any{"orderId": "o1"})

		assert.True(t, r.Success)
		f.payments.AssertExpectations(t)
	})

	t.Run("payment link defaults to loopback", func(t *testing.T) {
		f := newFixture()
		f.payments.On("CreatePaymentURL", mock.Anything, "o1", "u1", DefaultIPAddress).
			Return(&domain.PaymentLink{}, nil)
		table := NewTable(f.handlers, Caller{UserID: "u1", SessionID: "s1"})

		table[FnCreatePaymentLink](ctx, map[string]any{"orderId": "o1"})

		f.payments.AssertExpectations(t)
	})

	t.Run("user id cannot be overridden by arguments", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", mock.Anything, "u1").Return(&domain.Cart{}, nil)
		table := NewTable(f.handlers, Caller{UserID: "u1", SessionID: "s1", IPAddress: "203.0.113.7"})

		r := table[FnViewCart](ctx, map[string]any{"userId": "someone-else"})

		assert.True(t, r.Success)
		f.carts.AssertExpectations(t)
	})
}
