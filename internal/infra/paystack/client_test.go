package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "sk_test_secret"

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	c := NewClient("https://api.paystack.co", testSecret, time.Second)
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)

	assert.True(t, c.VerifyWebhookSignature(body, sign(testSecret, body)))
	assert.False(t, c.VerifyWebhookSignature(body, sign("wrong-secret", body)))
	assert.False(t, c.VerifyWebhookSignature(body, "not-a-signature"))
	assert.False(t, c.VerifyWebhookSignature([]byte(`tampered`), sign(testSecret, body)))
}

func TestVerifyTransaction(t *testing.T) {
	t.Run("successful verification", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
			assert.Equal(t, "Bearer "+testSecret, r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":true,"data":{"reference":"ref-1","status":"success","amount":36000,"currency":"NGN"}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, testSecret, time.Second)
		tx, err := c.VerifyTransaction(context.Background(), "ref-1")

		require.NoError(t, err)
		require.NotNil(t, tx)
		assert.Equal(t, "success", tx.Status)
		assert.Equal(t, int64(36000), tx.Amount)
	})

	t.Run("unknown reference returns nil", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, testSecret, time.Second)
		tx, err := c.VerifyTransaction(context.Background(), "ghost")

		assert.NoError(t, err)
		assert.Nil(t, tx)
	})

	t.Run("gateway error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, testSecret, time.Second)
		_, err := c.VerifyTransaction(context.Background(), "ref-1")

		assert.Error(t, err)
	})
}
