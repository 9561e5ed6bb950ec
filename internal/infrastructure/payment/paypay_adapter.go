package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/shared/valueobject"
	"github.com/farmeet/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	paypayCreateCodePath   = "/v2/codes"
	paypayPaymentDetailFmt = "/v2/codes/payments/%s"
	paypayRefundPath       = "/v2/refunds"
)

// PayPayAdapter implements billing.PaymentGateway for the PayPay wallet
// using the Open Payment API. Checkout creates a dynamic web cashier code;
// the merchantPaymentId doubles as the session handle.
type PayPayAdapter struct {
	config     config.PayPayConfig
	redirect   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPayPayAdapter creates a new PayPay adapter
func NewPayPayAdapter(cfg config.PayPayConfig, redirectURL string, logger *zap.Logger) (*PayPayAdapter, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("paypay: api key and secret are required")
	}
	if cfg.MerchantID == "" {
		return nil, fmt.Errorf("paypay: merchant ID is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PayPayAdapter{
		config:   cfg,
		redirect: redirectURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

type paypayMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type paypayCreateCodeRequest struct {
	MerchantPaymentID string            `json:"merchantPaymentId"`
	Amount            paypayMoney       `json:"amount"`
	CodeType          string            `json:"codeType"`
	OrderDescription  string            `json:"orderDescription,omitempty"`
	RedirectURL       string            `json:"redirectUrl,omitempty"`
	RedirectType      string            `json:"redirectType,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type paypayResultInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	CodeID  string `json:"codeId"`
}

type paypayCreateCodeResponse struct {
	ResultInfo paypayResultInfo `json:"resultInfo"`
	Data       struct {
		CodeID            string `json:"codeId"`
		URL               string `json:"url"`
		MerchantPaymentID string `json:"merchantPaymentId"`
	} `json:"data"`
}

type paypayPaymentDetailResponse struct {
	ResultInfo paypayResultInfo `json:"resultInfo"`
	Data       struct {
		PaymentID         string      `json:"paymentId"`
		Status            string      `json:"status"`
		MerchantPaymentID string      `json:"merchantPaymentId"`
		Amount            paypayMoney `json:"amount"`
	} `json:"data"`
}

type paypayRefundRequest struct {
	MerchantRefundID string      `json:"merchantRefundId"`
	PaymentID        string      `json:"paymentId"`
	Amount           paypayMoney `json:"amount"`
	Reason           string      `json:"reason,omitempty"`
}

type paypayRefundResponse struct {
	ResultInfo paypayResultInfo `json:"resultInfo"`
	Data       struct {
		RefundID string `json:"refundId"`
		Status   string `json:"status"`
	} `json:"data"`
}

// CreateCheckout creates a PayPay web cashier code and returns its URL
func (a *PayPayAdapter) CreateCheckout(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	merchantPaymentID := req.Metadata["payment_id"]
	if merchantPaymentID == "" {
		merchantPaymentID = uuid.New().String()
	}

	body := paypayCreateCodeRequest{
		MerchantPaymentID: merchantPaymentID,
		Amount: paypayMoney{
			Amount:   req.Amount.Amount().IntPart(),
			Currency: string(req.Amount.Currency()),
		},
		CodeType:         "ORDER_QR",
		OrderDescription: req.Description,
		RedirectURL:      a.redirect,
		RedirectType:     "WEB_LINK",
		Metadata:         req.Metadata,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("paypay: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, paypayCreateCodePath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var resp paypayCreateCodeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("paypay: failed to parse response: %w", err)
	}
	if resp.ResultInfo.Code != "SUCCESS" {
		return nil, fmt.Errorf("paypay: create code rejected: %s - %s", resp.ResultInfo.Code, resp.ResultInfo.Message)
	}

	a.logger.Info("created paypay checkout code",
		zap.String("merchant_payment_id", merchantPaymentID),
		zap.String("code_id", resp.Data.CodeID))

	return &billing.CheckoutSession{
		SessionID:   merchantPaymentID,
		RedirectURL: resp.Data.URL,
	}, nil
}

// ConfirmCheckout fetches the payment backing a cashier code session
func (a *PayPayAdapter) ConfirmCheckout(ctx context.Context, sessionID string) (*billing.CheckoutStatus, error) {
	path := fmt.Sprintf(paypayPaymentDetailFmt, sessionID)

	respBody, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp paypayPaymentDetailResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("paypay: failed to parse response: %w", err)
	}
	if resp.ResultInfo.Code != "SUCCESS" {
		return nil, fmt.Errorf("paypay: payment detail rejected: %s - %s", resp.ResultInfo.Code, resp.ResultInfo.Message)
	}

	return &billing.CheckoutStatus{
		Paid:             resp.Data.Status == "COMPLETED",
		ExternalChargeID: resp.Data.PaymentID,
	}, nil
}

// Refund returns part or all of a settled PayPay payment
func (a *PayPayAdapter) Refund(ctx context.Context, externalChargeID string, amount valueobject.Money) error {
	if externalChargeID == "" {
		return fmt.Errorf("paypay: payment ID is required for refund")
	}

	body := paypayRefundRequest{
		MerchantRefundID: uuid.New().String(),
		PaymentID:        externalChargeID,
		Amount: paypayMoney{
			Amount:   amount.Amount().IntPart(),
			Currency: string(amount.Currency()),
		},
		Reason: "Reservation cancelled",
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("paypay: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, paypayRefundPath, bodyBytes)
	if err != nil {
		return err
	}

	var resp paypayRefundResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("paypay: failed to parse response: %w", err)
	}
	if resp.ResultInfo.Code != "SUCCESS" {
		return fmt.Errorf("paypay: refund rejected: %s - %s", resp.ResultInfo.Code, resp.ResultInfo.Message)
	}

	a.logger.Info("created paypay refund",
		zap.String("refund_id", resp.Data.RefundID),
		zap.String("payment_id", externalChargeID))
	return nil
}

// doRequest performs an HTTP request to the PayPay Open Payment API
func (a *PayPayAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	url := a.config.BaseURL + path

	var reqBody io.Reader
	contentType := "empty"
	if body != nil {
		reqBody = bytes.NewReader(body)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("paypay: failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-ASSUME-MERCHANT", a.config.MerchantID)
	req.Header.Set("Authorization", a.generateAuthHeader(method, path, contentType, body))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypay: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paypay: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			ResultInfo paypayResultInfo `json:"resultInfo"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.ResultInfo.Code != "" {
			return nil, fmt.Errorf("paypay: %s - %s", errResp.ResultInfo.Code, errResp.ResultInfo.Message)
		}
		return nil, fmt.Errorf("paypay: HTTP %d", resp.StatusCode)
	}

	return respBody, nil
}

// generateAuthHeader builds the HMAC-SHA256 OPA authorization header.
// The signed payload covers the path, method, nonce, epoch, content type
// and an MD5 digest of the body, per the OPA signing scheme.
func (a *PayPayAdapter) generateAuthHeader(method, path, contentType string, body []byte) string {
	nonce := generatePayPayNonce()
	epoch := strconv.FormatInt(time.Now().Unix(), 10)

	bodyHash := "empty"
	if body != nil {
		digest := md5.New()
		digest.Write([]byte(contentType))
		digest.Write(body)
		bodyHash = base64.StdEncoding.EncodeToString(digest.Sum(nil))
	}

	payload := path + "\n" + method + "\n" + nonce + "\n" + epoch + "\n" + contentType + "\n" + bodyHash
	mac := hmac.New(sha256.New, []byte(a.config.APISecret))
	mac.Write([]byte(payload))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("hmac OPA-Auth:%s:%s:%s:%s:%s:%s",
		a.config.APIKey, signature, nonce, epoch, contentType, bodyHash)
}

// generatePayPayNonce generates a random nonce string
func generatePayPayNonce() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Ensure PayPayAdapter implements PaymentGateway
var _ billing.PaymentGateway = (*PayPayAdapter)(nil)
