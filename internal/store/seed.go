// internal/store/seed.go
package store

type seedWarranty struct {
	key            string
	durationMonths int
	terms          string
}

type seedProduct struct {
	id          string
	name        string
	description string
	pros        string
	cons        string
	warrantyKey string
}

type seedOrder struct {
	orderID   string
	userID    string
	status    string
	tracking  *string
	productID string
}

func strPtr(s string) *string { return &s }

var seedWarranties = []seedWarranty{
	{key: "standard", durationMonths: 24, terms: "Hanya mencakup cacat produksi."},
	{key: "accidental", durationMonths: 12, terms: "Termasuk perlindungan kerusakan tidak disengaja."},
}

var seedProducts = []seedProduct{
	{
		id:          "P123",
		name:        "Headphone Wireless",
		description: "Headphone wireless berkualitas tinggi dengan noise cancellation.",
		pros:        "Kualitas suara yang bagus; Nyaman dipakai; Baterai tahan lama",
		cons:        "Harga mahal; Case yang besar",
		warrantyKey: "standard",
	},
	{
		id:          "P234",
		name:        "Smartphone X",
		description: "Smartphone generasi terbaru dengan layar OLED dan sistem triple camera.",
		pros:        "Kamera sangat bagus; Performa cepat; Desain premium",
		cons:        "Harga tinggi; Tidak ada jack headphone",
		warrantyKey: "accidental",
	},
	{
		id:          "P345",
		name:        "Gaming Laptop Pro",
		description: "Laptop gaming yang powerful dengan grafis RTX dan layar high refresh.",
		pros:        "GPU tingkat atas; SSD cepat; Sistem pendingin yang baik",
		cons:        "Berat; Baterai cepat habis",
		warrantyKey: "standard",
	},
}

var seedOrders = []seedOrder{
	{orderID: "ORD12345", userID: "user1", status: "Shipped", tracking: strPtr("TRACK123"), productID: "P123"},
	{orderID: "ORD23456", userID: "user2", status: "Processing", tracking: nil, productID: "P234"},
	{orderID: "ORD34567", userID: "user1", status: "Delivered", tracking: strPtr("TRACK789"), productID: "P345"},
}
