// internal/intent/keywords.go
package intent

import "regexp"

var (
	orderRefPattern  = regexp.MustCompile(`(?i)\bORD\d+\b`)
	productIDPattern = regexp.MustCompile(`(?i)\bP\d+\b`)

	orderIntentPattern    = regexp.MustCompile(`(?i)\b(pesanan saya|status pesanan|dimana pesanan|my order|order status|order saya|tracking)\b`)
	warrantyIntentPattern = regexp.MustCompile(`(?i)\b(garansi|warranty|jaminan|guarantee)(nya)?\b`)
	productInfoPattern    = regexp.MustCompile(`(?i)\b(kelebihan|kekurangan|deskripsi|detail|pros|cons|description|about|info)\b`)

	// Safeguard trigger only. jaminan and guarantee are left to the fallback rules.
	warrantyContextPattern = regexp.MustCompile(`(?i)\b(garansi|warranty)(nya)?\b`)
)

// NeedsWarrantyContext reports whether the warranty safeguard applies to the message.
func NeedsWarrantyContext(message string) bool {
	return warrantyContextPattern.MatchString(message)
}
