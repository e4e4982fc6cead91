package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/metrics"
	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/utils"
)

// receiptMaxLen is the gateway's limit on the receipt label
const receiptMaxLen = 40

// PaymentGateway creates orders and checks checkout signatures
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req models.OrderRequest) (*models.PaymentOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// RazorpayService talks to the Razorpay Orders API
type RazorpayService struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewRazorpayService creates a gateway client. Missing credentials are
// reported at startup and make every order request fail.
func NewRazorpayService(baseURL, keyID, keySecret string, log *logrus.Logger) *RazorpayService {
	if keyID == "" || keySecret == "" {
		log.Warn("Razorpay credentials not fully configured: set RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET")
	} else {
		log.WithFields(logrus.Fields{
			"baseUrl": baseURL,
			"keyId":   keyID,
		}).Info("Razorpay service configured")
	}

	return &RazorpayService{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

func (s *RazorpayService) KeyID() string {
	return s.keyID
}

// CreateOrder registers a charge of req.Amount paise with the gateway
func (s *RazorpayService) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.PaymentOrder, error) {
	if req.Currency == "" {
		req.Currency = "INR"
	}
	if len(req.Receipt) > receiptMaxLen {
		req.Receipt = req.Receipt[:receiptMaxLen]
	}

	start := time.Now()
	var order models.PaymentOrder
	err := s.makeRequest(ctx, http.MethodPost, "/orders", req, &order)
	metrics.RecordGatewayCall("create_order", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	order.KeyID = s.keyID
	return &order, nil
}

// VerifySignature checks a checkout confirmation against the key secret
func (s *RazorpayService) VerifySignature(orderID, paymentID, signature string) bool {
	return utils.VerifyPaymentSignature(orderID, paymentID, signature, s.keySecret)
}

// makeRequest performs an authenticated JSON request and decodes the response into out
func (s *RazorpayService) makeRequest(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	if s.keyID == "" || s.keySecret == "" {
		return errors.New("missing Razorpay credentials")
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(s.keyID, s.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
	}).Debug("Razorpay API response")

	if resp.StatusCode >= http.StatusBadRequest {
		var gwErr models.GatewayErrorResponse
		if err := json.Unmarshal(respBody, &gwErr); err == nil && gwErr.Error.Description != "" {
			return fmt.Errorf("gateway error %s: %s", gwErr.Error.Code, gwErr.Error.Description)
		}
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
