package momo

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// WireValue captures a JSON field that the gateway serializes inconsistently
// (sometimes a number, sometimes a string). The literal text is preserved so
// signatures computed over the wire form still match.
type WireValue string

func (w *WireValue) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*w = WireValue(s)
		return nil
	}
	if string(b) == "null" {
		*w = ""
		return nil
	}
	*w = WireValue(b)
	return nil
}

func (w WireValue) String() string { return string(w) }

func (w WireValue) Int64() (int64, error) {
	return strconv.ParseInt(string(w), 10, 64)
}

// Notification is the webhook body delivered by the gateway after a payment
// attempt finishes.
type Notification struct {
	PartnerCode  string    `json:"partnerCode"`
	OrderID      string    `json:"orderId"`
	RequestID    string    `json:"requestId"`
	Amount       WireValue `json:"amount"`
	OrderInfo    string    `json:"orderInfo"`
	OrderType    string    `json:"orderType"`
	TransID      WireValue `json:"transId"`
	ResultCode   WireValue `json:"resultCode"`
	Message      string    `json:"message"`
	PayType      string    `json:"payType"`
	ResponseTime WireValue `json:"responseTime"`
	ExtraData    string    `json:"extraData"`
	Signature    string    `json:"signature"`
}

// Succeeded normalizes the provider's result code exactly once: numeric 0
// and string "0" both mean success.
func (n *Notification) Succeeded() bool { return n.ResultCode.String() == "0" }

// CallbackParams projects the notification into the canonical signature
// field set.
func (n *Notification) CallbackParams() CallbackParams {
	return CallbackParams{
		Amount:       n.Amount.String(),
		ExtraData:    n.ExtraData,
		Message:      n.Message,
		OrderID:      n.OrderID,
		OrderInfo:    n.OrderInfo,
		OrderType:    n.OrderType,
		PartnerCode:  n.PartnerCode,
		PayType:      n.PayType,
		RequestID:    n.RequestID,
		ResponseTime: n.ResponseTime.String(),
		ResultCode:   n.ResultCode.String(),
		TransID:      n.TransID.String(),
	}
}

// NotificationFromQuery reads the redirect leg, which carries the same
// fields as the webhook but as URL query parameters (all strings).
func NotificationFromQuery(q url.Values) *Notification {
	return &Notification{
		PartnerCode:  q.Get("partnerCode"),
		OrderID:      q.Get("orderId"),
		RequestID:    q.Get("requestId"),
		Amount:       WireValue(q.Get("amount")),
		OrderInfo:    q.Get("orderInfo"),
		OrderType:    q.Get("orderType"),
		TransID:      WireValue(q.Get("transId")),
		ResultCode:   WireValue(q.Get("resultCode")),
		Message:      q.Get("message"),
		PayType:      q.Get("payType"),
		ResponseTime: WireValue(q.Get("responseTime")),
		ExtraData:    q.Get("extraData"),
		Signature:    q.Get("signature"),
	}
}
