package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "payflow/internal/domain/payment/valueobjects"
)

func mustAmount(t *testing.T, value string) vo.Amount {
	t.Helper()
	a, err := vo.NewAmount(value)
	require.NoError(t, err)
	return a
}

func TestNewPayment_Success(t *testing.T) {
	amount := mustAmount(t, "0.5")
	price := mustAmount(t, "100.25")

	p, err := NewPayment(10, 20, 30, amount, price)
	require.NoError(t, err)

	assert.Equal(t, uint64(10), p.OrderID())
	assert.Equal(t, uint64(20), p.MerchantID())
	assert.Equal(t, uint64(30), p.ProviderID())
	assert.Equal(t, vo.PaymentStatusPending, p.Status())
	assert.False(t, p.Status().IsFinal())
}

func TestNewPayment_ValidationErrors(t *testing.T) {
	amount := mustAmount(t, "1")
	price := mustAmount(t, "2")

	tests := []struct {
		name       string
		orderID    uint64
		merchantID uint64
		providerID uint64
		amount     vo.Amount
		price      vo.Amount
		wantErr    string
	}{
		{"missing order", 0, 20, 30, amount, price, "order ID is required"},
		{"missing merchant", 10, 0, 30, amount, price, "merchant ID is required"},
		{"missing provider", 10, 20, 0, amount, price, "provider ID is required"},
		{"missing amount", 10, 20, 30, vo.Amount{}, price, "amount is required"},
		{"missing price", 10, 20, 30, amount, vo.Amount{}, "price is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPayment(tt.orderID, tt.merchantID, tt.providerID, tt.amount, tt.price)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPayment_Resolve(t *testing.T) {
	t.Run("pending to finished", func(t *testing.T) {
		p, err := NewPayment(10, 20, 30, mustAmount(t, "1"), mustAmount(t, "2"))
		require.NoError(t, err)

		require.NoError(t, p.Resolve(vo.PaymentStatusFinished))
		assert.Equal(t, vo.PaymentStatusFinished, p.Status())
		assert.True(t, p.Status().IsFinal())
	})

	t.Run("pending to failed", func(t *testing.T) {
		p, err := NewPayment(10, 20, 30, mustAmount(t, "1"), mustAmount(t, "2"))
		require.NoError(t, err)

		require.NoError(t, p.Resolve(vo.PaymentStatusFailed))
		assert.Equal(t, vo.PaymentStatusFailed, p.Status())
	})

	t.Run("terminal payments never change", func(t *testing.T) {
		p, err := NewPayment(10, 20, 30, mustAmount(t, "1"), mustAmount(t, "2"))
		require.NoError(t, err)
		require.NoError(t, p.Resolve(vo.PaymentStatusFinished))

		err = p.Resolve(vo.PaymentStatusFailed)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
		assert.Equal(t, vo.PaymentStatusFinished, p.Status())
	})

	t.Run("pending is not a resolution target", func(t *testing.T) {
		p, err := NewPayment(10, 20, 30, mustAmount(t, "1"), mustAmount(t, "2"))
		require.NoError(t, err)

		err = p.Resolve(vo.PaymentStatusPending)
		require.Error(t, err)
		assert.Equal(t, vo.PaymentStatusPending, p.Status())
	})
}

func TestPayment_DTO(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := ReconstructPayment(
		1, 10, 20, 30,
		mustAmount(t, "0.5"), mustAmount(t, "100.25"),
		vo.PaymentStatusFinished,
		now, now,
	)

	dto := p.DTO()
	assert.Equal(t, uint64(1), dto.PaymentID)
	assert.Equal(t, uint64(10), dto.OrderID)
	assert.Equal(t, uint64(20), dto.MerchantID)
	assert.Equal(t, "finished", dto.Status)
	assert.Equal(t, "0.5", dto.Amount)
	assert.Equal(t, "100.25", dto.Price)
}
