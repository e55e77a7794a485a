// internal/llm/prompt.go
package llm

import (
	"fmt"
	"strings"

	"support-chatbot/internal/models"
)

const promptHeader = `Anda adalah asisten customer support e-commerce yang ramah dan membantu. Anda berkomunikasi dalam bahasa Indonesia.
Anda memiliki akses ke tools berikut:
1. get_order_status(order_id) → mengembalikan status pengiriman pesanan.
2. get_warranty_info(product_id ATAU nama_produk) → mengembalikan kebijakan garansi untuk produk.
3. get_product_info(product_id ATAU nama_produk) → mengembalikan deskripsi produk, kelebihan dan kekurangan.
`

const promptRules = `ATURAN DETEKSI INTENT (analisis pesan user dengan cermat):

1. DETEKSI ORDER/PESANAN:
   - Jika ada kode ORD (misal: ORD12345) → get_order_status dengan kode tersebut
   - Kata kunci: 'pesanan', 'order', 'status', 'dimana', 'kapan sampai', 'tracking', 'pengiriman'
   - Jika tidak ada kode ORD tapi menanyakan pesanan → get_order_status dengan input kosong

2. DETEKSI GARANSI:
   - Kata kunci: 'garansi', 'warranty', 'jaminan', 'klaim', 'rusak', 'bermasalah'
   - Jika menyebut produk (ID/nama) + garansi → get_warranty_info dengan produk tersebut
   - Jika hanya 'garansi' tanpa produk spesifik, gunakan produk dari riwayat chat atau pesanan terakhir, atau tanya produk mana

3. DETEKSI INFO PRODUK:
   - Kata kunci: 'kelebihan', 'kekurangan', 'pros', 'cons', 'deskripsi', 'detail', 'spesifikasi', 'tentang', 'info'
   - Nama produk boleh ditulis sebagian (misal 'headphone', 'laptop')

4. KONTEKS:
   - Gunakan riwayat percakapan untuk memahami konteks
   - Jika user bertanya 'garansinya?' setelah membahas produk, asumsikan produk yang sama
`

const promptFooter = `Output format:
1. JSON action di baris pertama: {"action":"nama_tool","action_input":"parameter"}
2. Balasan natural dalam bahasa Indonesia

Contoh:
{"action":"get_order_status","action_input":"ORD12345"}
Saya cek status pesanan ORD12345 dulu ya.

{"action":"get_order_status","action_input":""}
Saya cek pesanan terakhir Anda.

{"action":"get_warranty_info","action_input":"headphone wireless"}
Berikut info garansi untuk Headphone Wireless.

{"action":"none","action_input":""}
Ada yang bisa saya bantu?
`

var roleLabels = map[models.Role]string{
	models.RoleUser:      "User",
	models.RoleAssistant: "Assistant",
	models.RoleTool:      "Tool",
}

// BuildPrompt renders the full prompt. history is most recent first, as returned by the
// conversation store; it is rendered oldest first. When the newest turn is the current user
// message it is not repeated in the transcript.
func BuildPrompt(products []models.Product, history []models.ConversationTurn, message string) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n")

	if len(products) > 0 {
		b.WriteString("Produk yang tersedia di toko kami:\n")
		for _, p := range products {
			fmt.Fprintf(&b, "- %s (ID: %s)\n", p.Name, p.ID)
		}
		b.WriteString("\n")
	}

	b.WriteString(promptRules)
	b.WriteString("\n")

	turns := history
	if len(turns) > 0 && turns[0].Role == models.RoleUser && turns[0].Content == message {
		turns = turns[1:]
	}

	b.WriteString("Riwayat percakapan (gunakan untuk konteks):\n")
	for i := len(turns) - 1; i >= 0; i-- {
		label, ok := roleLabels[turns[i].Role]
		if !ok {
			label = string(turns[i].Role)
		}
		fmt.Fprintf(&b, "%s: %s\n", label, turns[i].Content)
	}
	fmt.Fprintf(&b, "\nUser: %s\n\n", message)

	b.WriteString(promptFooter)
	return b.String()
}
