package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
	"github.com/QuagHug/pet-service/internal/infra/metrics"
)

// Compile-time check
var _ adapter.PaymentGateway = (*Gateway)(nil)

// Config carries the partner credentials and callback URLs for the MoMo v2
// gateway API.
type Config struct {
	Endpoint    string // e.g. https://test-payment.momo.vn/v2/gateway/api
	PartnerCode string
	AccessKey   string
	SecretKey   string
	PartnerName string
	StoreID     string
	RedirectURL string // browser return leg
	IPNURL      string // server-to-server notify leg
	RequestType string // payWithATM
	Lang        string
	Timeout     time.Duration
}

// Gateway implements the payment port using direct HTTP calls. Outbound
// calls have a short finite budget and are never retried locally; the
// provider owns retry behavior for notifications.
type Gateway struct {
	cfg    Config
	client *http.Client
	log    *zerolog.Logger
}

func NewGateway(cfg Config, logger *zerolog.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestType == "" {
		cfg.RequestType = "payWithATM"
	}
	if cfg.Lang == "" {
		cfg.Lang = "vi"
	}
	gwLog := logger.With().Str("component", "MomoGateway").Logger()
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    &gwLog,
	}
}

func (g *Gateway) Name() string { return "momo" }

type createRequest struct {
	PartnerCode string `json:"partnerCode"`
	PartnerName string `json:"partnerName"`
	StoreID     string `json:"storeId"`
	RequestID   string `json:"requestId"`
	Amount      string `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
	Lang        string `json:"lang"`
}

type createResponse struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	PayURL       string `json:"payUrl"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	ResponseTime int64  `json:"responseTime"`
}

// CreatePayment signs and submits a payment request, returning the redirect
// URL for the browser.
func (g *Gateway) CreatePayment(ctx context.Context, orderID, requestID string, amount int64, orderInfo, extraData string) (*adapter.CreatePaymentResult, error) {
	amountStr := strconv.FormatInt(amount, 10)
	raw := CreateRawSignature(
		g.cfg.AccessKey, amountStr, extraData, g.cfg.IPNURL, orderID, orderInfo,
		g.cfg.PartnerCode, g.cfg.RedirectURL, requestID, g.cfg.RequestType,
	)

	body := createRequest{
		PartnerCode: g.cfg.PartnerCode,
		PartnerName: g.cfg.PartnerName,
		StoreID:     g.cfg.StoreID,
		RequestID:   requestID,
		Amount:      amountStr,
		OrderID:     orderID,
		OrderInfo:   orderInfo,
		RedirectURL: g.cfg.RedirectURL,
		IPNURL:      g.cfg.IPNURL,
		ExtraData:   extraData,
		RequestType: g.cfg.RequestType,
		Signature:   Sign(g.cfg.SecretKey, raw),
		Lang:        g.cfg.Lang,
	}

	var resp createResponse
	if err := g.post(ctx, "/create", body, &resp); err != nil {
		return nil, err
	}
	if resp.ResultCode != 0 {
		metrics.IncGatewayCall("create", "rejected")
		return nil, fmt.Errorf("momo create rejected: code %d, message: %s", resp.ResultCode, resp.Message)
	}
	if resp.PayURL == "" {
		return nil, fmt.Errorf("momo create response missing payUrl")
	}
	metrics.IncGatewayCall("create", "ok")
	return &adapter.CreatePaymentResult{
		PayURL:       resp.PayURL,
		ResultCode:   resp.ResultCode,
		Message:      resp.Message,
		ResponseTime: resp.ResponseTime,
	}, nil
}

type queryRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	OrderID     string `json:"orderId"`
	Signature   string `json:"signature"`
	Lang        string `json:"lang"`
}

type queryResponse struct {
	OrderID    string    `json:"orderId"`
	TransID    WireValue `json:"transId"`
	ResultCode int       `json:"resultCode"`
	Message    string    `json:"message"`
	Amount     WireValue `json:"amount"`
}

// QueryStatus asks the provider for the current state of an order.
func (g *Gateway) QueryStatus(ctx context.Context, orderID string) (*adapter.PaymentStatusResult, error) {
	requestID := uuid.NewString()
	raw := fmt.Sprintf("accessKey=%s&orderId=%s&partnerCode=%s&requestId=%s",
		g.cfg.AccessKey, orderID, g.cfg.PartnerCode, requestID)

	body := queryRequest{
		PartnerCode: g.cfg.PartnerCode,
		RequestID:   requestID,
		OrderID:     orderID,
		Signature:   Sign(g.cfg.SecretKey, raw),
		Lang:        g.cfg.Lang,
	}

	var resp queryResponse
	if err := g.post(ctx, "/query", body, &resp); err != nil {
		return nil, err
	}
	metrics.IncGatewayCall("query", "ok")
	transID, _ := resp.TransID.Int64()
	amount, _ := resp.Amount.Int64()
	return &adapter.PaymentStatusResult{
		OrderID:    resp.OrderID,
		TransID:    transID,
		ResultCode: resp.ResultCode,
		Message:    resp.Message,
		Amount:     amount,
	}, nil
}

// VerifyCallback checks the signature of a webhook or redirect callback
// against the partner secret. A mismatch means the payload must be treated
// as unauthenticated and rejected.
func (g *Gateway) VerifyCallback(n *Notification) bool {
	return VerifyCallbackSignature(g.cfg.AccessKey, g.cfg.SecretKey, n.CallbackParams(), n.Signature)
}

func (g *Gateway) post(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		metrics.IncGatewayCall(path[1:], "transport_error")
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveGatewayLatency(path[1:], time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w, body: %s", err, string(raw))
	}
	return nil
}
