package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentSignature(t *testing.T) {
	assert.Equal(t,
		"18bfc0baafae8f6367711ee362f2201aaa3654274683100e5367bb9a2bd29cbe",
		PaymentSignature("order_123", "pay_456", "secret"),
	)
}

func TestVerifyPaymentSignature(t *testing.T) {
	good := PaymentSignature("order_123", "pay_456", "secret")
	assert.True(t, VerifyPaymentSignature("order_123", "pay_456", good, "secret"))

	t.Run("any mutation is rejected", func(t *testing.T) {
		for i := range good {
			mutated := []byte(good)
			if mutated[i] == 'a' {
				mutated[i] = 'b'
			} else {
				mutated[i] = 'a'
			}
			assert.False(t, VerifyPaymentSignature("order_123", "pay_456", string(mutated), "secret"), "position %d", i)
		}
	})

	assert.False(t, VerifyPaymentSignature("order_123", "pay_457", good, "secret"))
	assert.False(t, VerifyPaymentSignature("order_124", "pay_456", good, "secret"))
	assert.False(t, VerifyPaymentSignature("order_123", "pay_456", good, "other"))
	assert.False(t, VerifyPaymentSignature("order_123", "pay_456", "", "secret"))
	assert.False(t, VerifyPaymentSignature("order_123", "pay_456", good, ""))
}
