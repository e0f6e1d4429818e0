package rail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Dan9191/advance-service/internal/config"
	"github.com/Dan9191/advance-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Issuer identifies this service in the tokens it presents to the processor
const Issuer = "advance-service"

// Client handles integration with the payment processor
type Client struct {
	url    string
	secret []byte
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new processor client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url:    strings.TrimRight(cfg.RailURL, "/"),
		secret: []byte(cfg.RailSecret),
		client: &http.Client{
			Timeout: cfg.RailTimeout,
		},
		log: log,
	}
}

// token signs a short-lived bearer token for one request
func (c *Client) token() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// sendRequest sends a request to the processor and returns the response body
func (c *Client) sendRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	token, err := c.token()
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.WithField("request_id", requestID).Debugf("Processor XML response: %s", string(raw))
	return raw, nil
}

// Execute submits a transfer to the processor. accepted is false when the
// processor did not assign a transaction id.
func (c *Client) Execute(ctx context.Context, src, dst int64, amount decimal.Decimal, direction models.Direction) (int64, bool, error) {
	body, err := EncodeTransfer(Transfer{Source: src, Destination: dst, Amount: amount, Direction: direction})
	if err != nil {
		return 0, false, fmt.Errorf("failed to encode transfer: %v", err)
	}
	raw, err := c.sendRequest(ctx, http.MethodPost, "/transactions", body)
	if err != nil {
		return 0, false, err
	}
	railID, accepted, err := DecodeTransferResult(raw)
	if err != nil {
		return 0, false, err
	}
	if !accepted {
		c.log.WithFields(logrus.Fields{"src": src, "dst": dst, "amount": amount.String()}).Warn("Processor rejected transfer")
	}
	return railID, accepted, nil
}

// Report downloads the settlement report
func (c *Client) Report(ctx context.Context) (models.Report, error) {
	raw, err := c.sendRequest(ctx, http.MethodGet, "/report", nil)
	if err != nil {
		return nil, err
	}
	return DecodeReport(raw)
}
