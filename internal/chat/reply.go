// internal/chat/reply.go
package chat

import (
	"fmt"
	"regexp"

	"support-chatbot/internal/models"
)

const (
	defaultReply      = "Ada yang bisa saya bantu?"
	orderNotFoundText = "Anda tidak memiliki pesanan dengan nomor tersebut."
	notAvailable      = "Tidak tersedia"
	warrantyClaimText = "Anda dapat mengklaim garansi dengan mengirim email ke warranty@company.com. " +
		"Pastikan klaim Anda sesuai dengan detail garansi produk. " +
		"Detailnya adalah sebagai berikut.\n\n"
)

var (
	prosKeywords        = regexp.MustCompile(`(?i)\b(kelebihan|keunggulan|pros|advantage)\b`)
	consKeywords        = regexp.MustCompile(`(?i)\b(kekurangan|kelemahan|cons|disadvantage)\b`)
	descriptionKeywords = regexp.MustCompile(`(?i)\b(deskripsi|description|detail|tentang|about)\b`)
)

func orderReply(st models.OrderStatus) string {
	if !st.Found {
		return orderNotFoundText
	}
	reply := fmt.Sprintf("Pesanan %s saat ini berstatus: %s.", st.OrderID, st.Status)
	if st.Tracking != nil && *st.Tracking != "" {
		reply += fmt.Sprintf(" Tracking: %s.", *st.Tracking)
	}
	return reply
}

func warrantyReply(w *models.WarrantyInfo) string {
	return warrantyClaimText + fmt.Sprintf("Produk %s memiliki garansi selama %d bulan. Ketentuan: %s",
		w.Product, w.DurationMonths, w.Terms)
}

func warrantyNotFoundReply(input string) string {
	return fmt.Sprintf("Maaf — saya tidak dapat menemukan informasi garansi untuk produk %s.", input)
}

// productReply picks the pros, cons, description or full card branch from the user's wording.
func productReply(message string, p *models.ProductInfo) string {
	switch {
	case prosKeywords.MatchString(message):
		return fmt.Sprintf("Kelebihan %s: %s", p.Name, orNotAvailable(p.Pros))
	case consKeywords.MatchString(message):
		return fmt.Sprintf("Kekurangan %s: %s", p.Name, orNotAvailable(p.Cons))
	case descriptionKeywords.MatchString(message):
		return fmt.Sprintf("Deskripsi %s: %s", p.Name, p.Description)
	default:
		return fmt.Sprintf("Produk %s (ID: %s).\nDeskripsi: %s\nKelebihan: %s\nKekurangan: %s",
			p.Name, p.ID, p.Description, orNotAvailable(p.Pros), orNotAvailable(p.Cons))
	}
}

func productNotFoundReply(input string) string {
	return fmt.Sprintf("Maaf — saya tidak dapat menemukan informasi produk untuk %s.", input)
}

func unsupportedToolReply(tool models.ToolName) string {
	return fmt.Sprintf("Tool '%s' yang diminta tidak didukung.", tool)
}

func orNotAvailable(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
