package momo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/QuagHug/pet-service/internal/domain"
)

// Sign computes the hex HMAC-SHA256 the gateway expects over a raw
// canonical string.
func Sign(secretKey, raw string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

// CreateRawSignature builds the canonical string for the create request.
// Field order is part of the provider contract and must not change.
func CreateRawSignature(accessKey, amount, extraData, ipnURL, orderID, orderInfo, partnerCode, redirectURL, requestID, requestType string) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		accessKey, amount, extraData, ipnURL, orderID, orderInfo, partnerCode, redirectURL, requestID, requestType,
	)
}

// CallbackRawSignature builds the canonical string for webhook and redirect
// callbacks. The field list and order differ from the create request.
func CallbackRawSignature(accessKey string, p CallbackParams) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
		accessKey, p.Amount, p.ExtraData, p.Message, p.OrderID, p.OrderInfo, p.OrderType,
		p.PartnerCode, p.PayType, p.RequestID, p.ResponseTime, p.ResultCode, p.TransID,
	)
}

// CallbackParams holds the callback fields in their wire form. Numeric
// fields stay strings so the signature round-trips byte for byte.
type CallbackParams struct {
	Amount       string
	ExtraData    string
	Message      string
	OrderID      string
	OrderInfo    string
	OrderType    string
	PartnerCode  string
	PayType      string
	RequestID    string
	ResponseTime string
	ResultCode   string
	TransID      string
}

// VerifyCallbackSignature recomputes the callback signature and compares it
// in constant time.
func VerifyCallbackSignature(accessKey, secretKey string, p CallbackParams, signature string) bool {
	expected := Sign(secretKey, CallbackRawSignature(accessKey, p))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type extraDataPayload struct {
	UserID string `json:"userId"`
}

// EncodeExtraData serializes the correlation payload as compact JSON inside
// an opaque ASCII token. Any field added here must remain provider-opaque
// and round-trip exactly through the callbacks.
func EncodeExtraData(userID string) string {
	b, _ := json.Marshal(extraDataPayload{UserID: userID})
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeExtraData reverses EncodeExtraData. Callers must tolerate the error
// without mutating any state: the token crossed an untrusted boundary.
func DecodeExtraData(token string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", domain.ErrBadExtraData
	}
	var p extraDataPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", domain.ErrBadExtraData
	}
	if p.UserID == "" {
		return "", domain.ErrBadExtraData
	}
	return p.UserID, nil
}
