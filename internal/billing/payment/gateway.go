// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// # Gateway Contract

// OrderRequest describes the purchase sent to the payment gateway.
type OrderRequest struct {
	MerchantRef string // Our payment ID, echoed back by webhooks.
	AmountCents int64
	Currency    string
	Email       string
	FullName    string
}

// OrderResult is the gateway's answer: the upstream order identifier and the
// token the client uses to complete the payment.
type OrderResult struct {
	OrderID    string
	PaymentKey string
}

// Gateway abstracts the payment provider so the service layer and tests
// never speak HTTP to Paymob directly.
type Gateway interface {
	CreateOrder(ctx context.Context, order OrderRequest) (*OrderResult, error)
}

// # Paymob Implementation

// Endpoint paths of the Paymob acceptance API, relative to the base URL.
const (
	paymobAuthPath       = "/auth/tokens"
	paymobOrderPath      = "/ecommerce/orders"
	paymobPaymentKeyPath = "/acceptance/payment_keys"

	gatewayTimeout = 10 * time.Second

	// paymentKeyTTLSeconds is how long a minted payment key stays usable.
	paymentKeyTTLSeconds = 3600
)

// PaymobGateway implements [Gateway] against the Paymob acceptance API.
//
// # Flow
//
// Every order is a three-call sequence, each authenticated by the token the
// previous call produced:
//
//  1. POST /auth/tokens        — exchange the API key for a bearer token.
//  2. POST /ecommerce/orders   — register the order, producing an order ID.
//  3. POST /acceptance/payment_keys — mint the client-side payment key.
//
// Auth tokens are short-lived, so the sequence re-authenticates per order
// rather than caching tokens across requests.
type PaymobGateway struct {
	baseURL       string
	apiKey        string
	integrationID string
	client        *http.Client
}

// NewPaymobGateway constructs the Paymob client.
func NewPaymobGateway(baseURL, apiKey, integrationID string) *PaymobGateway {
	return &PaymobGateway{
		baseURL:       baseURL,
		apiKey:        apiKey,
		integrationID: integrationID,
		client:        &http.Client{Timeout: gatewayTimeout},
	}
}

/*
CreateOrder runs the full authenticate/register/payment-key sequence.

Parameters:
  - ctx: Request context, bounds all three upstream calls.
  - order: OrderRequest

Returns:
  - *OrderResult: Upstream order ID and payment key
  - error: Wrapped upstream failure; callers map it to a 502
*/
func (gateway *PaymobGateway) CreateOrder(ctx context.Context, order OrderRequest) (*OrderResult, error) {
	authToken, err := gateway.authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("paymob_authenticate_failed: %w", err)
	}

	orderID, err := gateway.registerOrder(ctx, authToken, order)
	if err != nil {
		return nil, fmt.Errorf("paymob_register_order_failed: %w", err)
	}

	paymentKey, err := gateway.createPaymentKey(ctx, authToken, orderID, order)
	if err != nil {
		return nil, fmt.Errorf("paymob_payment_key_failed: %w", err)
	}

	return &OrderResult{
		OrderID:    orderID,
		PaymentKey: paymentKey,
	}, nil
}

// authenticate exchanges the configured API key for a short-lived token.
func (gateway *PaymobGateway) authenticate(ctx context.Context) (string, error) {
	var response struct {
		Token string `json:"token"`
	}

	err := gateway.post(ctx, paymobAuthPath, map[string]string{
		"api_key": gateway.apiKey,
	}, &response)
	if err != nil {
		return "", err
	}
	if response.Token == "" {
		return "", fmt.Errorf("empty auth token in response")
	}

	return response.Token, nil
}

// registerOrder records the purchase upstream and returns the order ID.
func (gateway *PaymobGateway) registerOrder(ctx context.Context, authToken string, order OrderRequest) (string, error) {
	var response struct {
		ID json.Number `json:"id"`
	}

	err := gateway.post(ctx, paymobOrderPath, map[string]interface{}{
		"auth_token":        authToken,
		"amount_cents":      order.AmountCents,
		"currency":          order.Currency,
		"merchant_order_id": order.MerchantRef,
		"delivery_needed":   false,
		"items":             []interface{}{},
	}, &response)
	if err != nil {
		return "", err
	}

	return response.ID.String(), nil
}

// createPaymentKey mints the token the client pays with.
func (gateway *PaymobGateway) createPaymentKey(ctx context.Context, authToken, orderID string, order OrderRequest) (string, error) {
	var response struct {
		Token string `json:"token"`
	}

	// Paymob requires the full billing_data block; fields we do not collect
	// are sent as "NA" per their API reference.
	err := gateway.post(ctx, paymobPaymentKeyPath, map[string]interface{}{
		"auth_token":     authToken,
		"order_id":       orderID,
		"amount_cents":   order.AmountCents,
		"currency":       order.Currency,
		"integration_id": gateway.integrationID,
		"expiration":     paymentKeyTTLSeconds,
		"billing_data": map[string]string{
			"email":        order.Email,
			"first_name":   order.FullName,
			"last_name":    "NA",
			"phone_number": "NA",
			"street":       "NA",
			"building":     "NA",
			"floor":        "NA",
			"apartment":    "NA",
			"city":         "NA",
			"country":      "NA",
		},
	}, &response)
	if err != nil {
		return "", err
	}
	if response.Token == "" {
		return "", fmt.Errorf("empty payment key in response")
	}

	return response.Token, nil
}

// post sends a JSON body and decodes the JSON answer.
func (gateway *PaymobGateway) post(ctx context.Context, path string, body interface{}, target interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, gateway.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := gateway.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("gateway answered %d for %s", response.StatusCode, path)
	}

	return json.NewDecoder(response.Body).Decode(target)
}
