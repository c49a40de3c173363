// internal/payment/yoomoney/client.go
package yoomoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shopbot/internal/payment"
	"shopbot/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://yoomoney.ru"

	quickpayPath         = "/quickpay/confirm.xml"
	operationHistoryPath = "/api/operation-history"

	// historyRecords bounds the operation-history lookup for a label.
	historyRecords = 3
	statusSuccess  = "success"

	paymentTargets = "Balance top-up"
)

// Config configures the YooMoney client.
type Config struct {
	BaseURL  string
	Receiver string // wallet number that receives payments
	Token    string // OAuth token with operation-history scope
}

// Client implements payment.Provider against the YooMoney wallet API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	newLabel   func() string
}

var _ payment.Provider = (*Client)(nil)

// NewClient creates a Client. A nil httpClient gets a 30 second timeout client.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, httpClient: httpClient, newLabel: NewLabel}
}

// NewLabel returns a random UUIDv4 label.
func NewLabel() string {
	return uuid.NewString()
}

// NewPayment builds a quickpay "shop" form link. It does not call the API.
func (c *Client) NewPayment(amount decimal.Decimal) (string, string, error) {
	if c.cfg.Receiver == "" {
		return "", "", fmt.Errorf("yoomoney: receiver is not configured: %w", util.ErrProviderUnavailable)
	}
	label := c.newLabel()
	params := url.Values{}
	params.Set("receiver", c.cfg.Receiver)
	params.Set("quickpay-form", "shop")
	params.Set("targets", paymentTargets)
	params.Set("paymentType", "SB")
	params.Set("sum", amount.StringFixed(2))
	params.Set("label", label)
	return c.cfg.BaseURL + quickpayPath + "?" + params.Encode(), label, nil
}

type operationHistoryResponse struct {
	Error      string      `json:"error,omitempty"`
	Operations []operation `json:"operations"`
}

type operation struct {
	OperationID string          `json:"operation_id"`
	Status      string          `json:"status"`
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   string          `json:"direction"`
}

// IsPaid queries the operation history filtered by label.
func (c *Client) IsPaid(ctx context.Context, label string) (bool, error) {
	if c.cfg.Token == "" {
		return false, fmt.Errorf("yoomoney: token is not configured: %w", util.ErrProviderUnavailable)
	}

	form := url.Values{}
	form.Set("label", label)
	form.Set("records", strconv.Itoa(historyRecords))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+operationHistoryPath, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("yoomoney: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("yoomoney: operation history request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, fmt.Errorf("yoomoney: failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("yoomoney: operation history returned %d: %w", resp.StatusCode, util.ErrProviderUnavailable)
	}

	var history operationHistoryResponse
	if err := json.Unmarshal(body, &history); err != nil {
		return false, fmt.Errorf("yoomoney: malformed operation history: %w", err)
	}
	if history.Error != "" {
		return false, fmt.Errorf("yoomoney: operation history error %q: %w", history.Error, util.ErrProviderUnavailable)
	}

	for _, op := range history.Operations {
		if op.Status == statusSuccess {
			return true, nil
		}
	}
	return false, nil
}
