package service

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// DefaultQRGenerator encodes the public tracking link of an order.
type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) TrackingURL(orderID int) string {
	return fmt.Sprintf("%s/orders/%d", strings.TrimRight(g.BaseURL, "/"), orderID)
}

func (g DefaultQRGenerator) Generate(orderID int) ([]byte, error) {
	return qrcode.Encode(g.TrackingURL(orderID), qrcode.Medium, 256)
}

var _ QRGenerator = DefaultQRGenerator{}
