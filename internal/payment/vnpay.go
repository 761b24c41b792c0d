// Package payment builds and verifies VNPay hosted checkout requests.
package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Rrens/shop-assistant/internal/config"
	"github.com/shopspring/decimal"
)

const (
	vnpVersion   = "2.1.0"
	vnpCommand   = "pay"
	vnpCurrency  = "VND"
	vnpLocale    = "vn"
	vnpOrderType = "other"
	vnpTimeFmt   = "20060102150405"

	// ResponseSuccess is the response and transaction status of a settled payment
	ResponseSuccess = "00"
)

var ErrInvalidSignature = errors.New("invalid signature")

// VNPay gateway times are in Indochina time
var vnTime = time.FixedZone("ICT", 7*60*60)

// PaymentRequest describes one checkout attempt
type PaymentRequest struct {
	TxnRef    string
	Amount    float64
	OrderInfo string
	IPAddress string
	CreatedAt time.Time
}

// Gateway signs VNPay requests with the merchant secret
type Gateway struct {
	tmnCode    string
	hashSecret []byte
	payURL     string
	returnURL  string
	expireIn   time.Duration
}

// NewGateway creates a gateway from configuration
func NewGateway(cfg config.VNPayConfig) *Gateway {
	expire := cfg.ExpireIn
	if expire <= 0 {
		expire = 15 * time.Minute
	}
	return &Gateway{
		tmnCode:    cfg.TmnCode,
		hashSecret: []byte(cfg.HashSecret),
		payURL:     cfg.PayURL,
		returnURL:  cfg.ReturnURL,
		expireIn:   expire,
	}
}

// IsConfigured reports whether merchant credentials are present
func (g *Gateway) IsConfigured() bool {
	return g.tmnCode != "" && len(g.hashSecret) > 0 && g.payURL != ""
}

// BuildURL returns the signed checkout URL
func (g *Gateway) BuildURL(req PaymentRequest) (string, error) {
	if !g.IsConfigured() {
		return "", errors.New("vnpay is not configured")
	}

	created := req.CreatedAt.In(vnTime)
	params := url.Values{}
	params.Set("vnp_Version", vnpVersion)
	params.Set("vnp_Command", vnpCommand)
	params.Set("vnp_TmnCode", g.tmnCode)
	params.Set("vnp_Amount", Amount(req.Amount))
	params.Set("vnp_CurrCode", vnpCurrency)
	params.Set("vnp_TxnRef", req.TxnRef)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", vnpOrderType)
	params.Set("vnp_Locale", vnpLocale)
	params.Set("vnp_ReturnUrl", g.returnURL)
	params.Set("vnp_IpAddr", req.IPAddress)
	params.Set("vnp_CreateDate", created.Format(vnpTimeFmt))
	params.Set("vnp_ExpireDate", created.Add(g.expireIn).Format(vnpTimeFmt))

	query := canonicalQuery(params)
	return fmt.Sprintf("%s?%s&vnp_SecureHash=%s", g.payURL, query, g.sign(query)), nil
}

// Sign returns the secure hash of the vnp_ parameters
func (g *Gateway) Sign(params url.Values) string {
	signed := url.Values{}
	for k, v := range params {
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" || !strings.HasPrefix(k, "vnp_") {
			continue
		}
		signed[k] = v
	}
	return g.sign(canonicalQuery(signed))
}

// Verify checks the signature on a return or IPN callback
func (g *Gateway) Verify(params url.Values) error {
	got := params.Get("vnp_SecureHash")
	if got == "" {
		return ErrInvalidSignature
	}

	want := g.Sign(params)
	if !hmac.Equal([]byte(strings.ToLower(got)), []byte(want)) {
		return ErrInvalidSignature
	}
	return nil
}

func (g *Gateway) sign(data string) string {
	mac := hmac.New(sha512.New, g.hashSecret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Amount renders a VND total in the gateway's minor units (x100)
func Amount(total float64) string {
	return decimal.NewFromFloat(total).Mul(decimal.NewFromInt(100)).Round(0).String()
}

// ParseAmount converts the gateway amount back to VND
func ParseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %w", err)
	}
	return d.Div(decimal.NewFromInt(100)).InexactFloat64(), nil
}

// canonicalQuery sorts keys and form-encodes values the way the gateway hashes them
func canonicalQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if params.Get(k) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = url.QueryEscape(k) + "=" + url.QueryEscape(params.Get(k))
	}
	return strings.Join(parts, "&")
}
