package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "coinqvest-checkout:CHK-1", createCheckoutCacheKey("CHK-1"))
	assert.Equal(t, "coinqvest-webhook:abc", createWebhookEventKey("abc"))
	assert.NotEqual(t, createCheckoutCacheKey("x"), createWebhookEventKey("x"))
}
