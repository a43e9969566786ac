package utils

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/skip2/go-qrcode"
)

// GenerateTrackingQR génère un QR de suivi de commande en base64, prêt à
// mettre dans un <img src="...">.
func GenerateTrackingQR(orderID string) (string, error) {
	base := os.Getenv("FRONTEND_URL")
	if base == "" {
		base = "http://localhost:5173"
	}

	png, err := qrcode.Encode(fmt.Sprintf("%s/loader?next=my-orders&order=%s", base, orderID), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
