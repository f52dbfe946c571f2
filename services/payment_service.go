package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/nearmart/nearmart-api/config"
	"github.com/nearmart/nearmart-api/models"
)

// PaymentOrder is the gateway-side registration of an amount to collect.
// Amount is in minor currency units (paise).
type PaymentOrder struct {
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

// PaymentGateway registers orders with an external payment provider.
// The provider's verification protocol is out of scope here; confirming
// an order happens through the confirm/mock-payment endpoints.
type PaymentGateway interface {
	CreatePaymentOrder(order *models.Order) (*PaymentOrder, error)
}

// HTTPPaymentGateway talks to a REST payment provider
type HTTPPaymentGateway struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// NewHTTPPaymentGateway creates a gateway client from configuration
func NewHTTPPaymentGateway(cfg *config.Config) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		baseURL:   cfg.PaymentGatewayURL,
		keyID:     cfg.PaymentKeyID,
		keySecret: cfg.PaymentKeySecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreatePaymentOrder registers the order's total with the provider and
// returns the provider-side order id the frontend checks out against
func (g *HTTPPaymentGateway) CreatePaymentOrder(order *models.Order) (*PaymentOrder, error) {
	payload := map[string]interface{}{
		"amount":   toMinorUnits(order.TotalAmount),
		"currency": "INR",
		"receipt":  fmt.Sprintf("order_%d", order.ID),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment order: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("warning: failed to close gateway response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var gatewayResp struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gatewayResp); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return &PaymentOrder{
		GatewayOrderID: gatewayResp.ID,
		Amount:         gatewayResp.Amount,
		Currency:       gatewayResp.Currency,
		KeyID:          g.keyID,
	}, nil
}

var paymentGatewayInstance PaymentGateway

// InitPaymentGateway wires the configured gateway, falling back to the
// mock gateway when no provider credentials are set
func InitPaymentGateway(cfg *config.Config) PaymentGateway {
	if cfg.HasPaymentGateway() {
		paymentGatewayInstance = NewHTTPPaymentGateway(cfg)
	} else {
		log.Println("No payment gateway configured, using mock gateway")
		paymentGatewayInstance = NewMockPaymentGateway()
	}
	return paymentGatewayInstance
}

// GetPaymentGateway returns the initialized payment gateway
func GetPaymentGateway() PaymentGateway {
	return paymentGatewayInstance
}

// SetPaymentGateway sets the gateway instance (primarily for testing)
func SetPaymentGateway(gateway PaymentGateway) {
	paymentGatewayInstance = gateway
}

// toMinorUnits converts a rupee amount to paise
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
