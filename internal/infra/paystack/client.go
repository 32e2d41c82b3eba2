package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Transaction struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
}

type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Status    string `json:"status"`
	} `json:"data"`
}

type GatewayInterface interface {
	VerifyTransaction(ctx context.Context, reference string) (*Transaction, error)
	VerifyWebhookSignature(body []byte, signature string) bool
}

var _ GatewayInterface = (*Client)(nil)

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, reference), nil)
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Status bool        `json:"status"`
		Data   Transaction `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if !envelope.Status {
		return nil, nil
	}
	return &envelope.Data, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header: a hex
// HMAC-SHA512 of the raw body under the secret key. hmac.Equal keeps the
// comparison constant-time.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
