package payment

import (
	"testing"

	"github.com/farmeet/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayPayConfig(baseURL string) config.PayPayConfig {
	return config.PayPayConfig{
		Enabled:    true,
		BaseURL:    baseURL,
		APIKey:     "api-key",
		APISecret:  "api-secret",
		MerchantID: "merchant-123",
	}
}

func TestNewStripeAdapter(t *testing.T) {
	t.Run("creates adapter with api key", func(t *testing.T) {
		adapter, err := NewStripeAdapter(config.StripeConfig{
			Enabled: true,
			APIKey:  "sk_test_123",
		}, "https://farmeet.example.com/payments/success", "https://farmeet.example.com/payments/cancel", nil)

		require.NoError(t, err)
		assert.NotNil(t, adapter)
	})

	t.Run("rejects missing api key", func(t *testing.T) {
		adapter, err := NewStripeAdapter(config.StripeConfig{Enabled: true}, "", "", nil)

		assert.Error(t, err)
		assert.Nil(t, adapter)
	})
}
