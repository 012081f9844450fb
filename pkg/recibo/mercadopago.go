package recibo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"recibo/pkg/services"
)

const mercadoPagoBaseURL = "https://api.mercadopago.com"

// MercadoPago is the PIX gateway implementation of services.PixGateway.
type MercadoPago struct {
	token   string
	baseURL string
}

func NewMercadoPago(token string) *MercadoPago {
	return &MercadoPago{
		token:   token,
		baseURL: mercadoPagoBaseURL,
	}
}

type mpCreatePaymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	ExternalReference string  `json:"external_reference"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
}

type mpPaymentResponse struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	ExternalReference  string      `json:"external_reference"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CreateCharge creates a PIX payment.
func (mp *MercadoPago) CreateCharge(ctx context.Context, req services.CreateChargeRequest) (*services.Charge, error) {
	amount, _ := req.Amount.Float64()
	body := mpCreatePaymentRequest{
		TransactionAmount: amount,
		Description:       req.Description,
		PaymentMethodID:   "pix",
		ExternalReference: req.ExternalReference,
	}
	body.Payer.Email = "comprador@recibo.bot"

	jsonData, _ := json.Marshal(body)

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost,
		mp.baseURL+"/v1/payments",
		bytes.NewBuffer(jsonData))

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+mp.token)
	httpReq.Header.Set("X-Idempotency-Key", req.IdempotencyKey)

	return mp.doPaymentRequest(httpReq)
}

// GetCharge fetches the current state of a payment.
func (mp *MercadoPago) GetCharge(ctx context.Context, id string) (*services.Charge, error) {
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		mp.baseURL+"/v1/payments/"+id, nil)

	httpReq.Header.Set("Authorization", "Bearer "+mp.token)

	return mp.doPaymentRequest(httpReq)
}

func (mp *MercadoPago) doPaymentRequest(req *http.Request) (*services.Charge, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("api error: %s", string(body))
	}

	var result mpPaymentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse payment response: %w", err)
	}

	return &services.Charge{
		ID:                result.ID.String(),
		Status:            result.Status,
		QRCode:            result.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64:      result.PointOfInteraction.TransactionData.QRCodeBase64,
		ExternalReference: result.ExternalReference,
	}, nil
}

// ValidateWebhookSignature checks the x-signature header Mercado Pago sends
// with webhooks: "ts=<unix>,v1=<hmac>", where the HMAC-SHA256 is computed
// over "id:<dataId>;request-id:<requestId>;ts:<ts>;" with the shared
// secret. Comparison is constant-time. An empty secret accepts everything;
// the caller must log that as a configuration risk.
func ValidateWebhookSignature(secret, xSignature, xRequestID, dataID string) bool {
	if secret == "" {
		return true
	}

	ts, v1, ok := parseXSignature(xSignature)
	if !ok {
		return false
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, xRequestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(v1)) == 1
}

func parseXSignature(header string) (ts, v1 string, ok bool) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}

	if ts == "" || v1 == "" {
		return "", "", false
	}
	if _, err := strconv.ParseInt(ts, 10, 64); err != nil {
		return "", "", false
	}

	return ts, v1, true
}
