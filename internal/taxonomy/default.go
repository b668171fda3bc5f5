package taxonomy

// ID категорий по умолчанию.
const (
	Acquisition     = "acquisition"
	RightsIssue     = "rights_issue"
	StockAction     = "stock_action"
	Buyback         = "buyback"
	Dividend        = "dividend"
	FinancialReport = "financial_report"
	Regulation      = "regulation"
	Commodity       = "commodity"
	Expansion       = "expansion"
	Other           = "other"
)

// DefaultGenericTokens — общие биржевые маркеры, ведущие в категорию Lainnya.
var DefaultGenericTokens = []string{"saham", "emiten", "idx", "bei", "ihsg"}

// DefaultCategories возвращает таблицу категорий по умолчанию в порядке приоритета.
func DefaultCategories() []Category {
	return []Category{
		{
			ID:     Acquisition,
			Label:  "Akuisisi / MTO / Merger",
			Emoji:  "📣",
			Impact: "Spekulatif naik, volatilitas tinggi.",
			Keywords: []string{
				"akuisisi", "mto", "mandatory tender offer", "merger", "takeover",
				"akuisisi saham", "akuisisi mayoritas", "mitra strategis", "investor strategis",
			},
		},
		{
			ID:     RightsIssue,
			Label:  "Rights Issue / Private Placement",
			Emoji:  "🧾",
			Impact: "Tergantung harga & rasio; potensi dilusi.",
			Keywords: []string{
				"rights issue", "right issue", "hmetd", "put", "pmthmetd", "private placement", "penambahan modal",
			},
		},
		{
			ID:     StockAction,
			Label:  "IPO / Delisting / Stock Action",
			Emoji:  "🆕",
			Impact: "Perubahan struktur/float; minat spekulatif.",
			Keywords: []string{
				"ipo", "listing perdana", "delisting", "reverse stock split", "stock split", "dual listing",
			},
		},
		{
			ID:       Buyback,
			Label:    "Buyback",
			Emoji:    "🔁",
			Impact:   "Biasanya positif (dukungan harga).",
			Keywords: []string{"buyback", "pembelian kembali saham"},
		},
		{
			ID:       Dividend,
			Label:    "Dividen",
			Emoji:    "💰",
			Impact:   "Positif bila yield besar & cumdate dekat.",
			Keywords: []string{"dividen", "deviden", "dividend payout"},
		},
		{
			ID:     FinancialReport,
			Label:  "Laporan Keuangan",
			Emoji:  "📊",
			Impact: "Naik/turun tergantung surprise hasil.",
			Keywords: []string{
				"laba", "rugi", "laba bersih", "pendapatan", "penjualan", "ebitda", "eps",
				"kinerja keuangan", "laporan keuangan",
			},
		},
		{
			ID:     Regulation,
			Label:  "Regulasi / Kebijakan",
			Emoji:  "⚖️",
			Impact: "Sektor terkait bisa bergerak serempak.",
			Keywords: []string{
				"pajak", "subsidi", "bea", "royalti", "larangan ekspor", "izin ekspor", "kuota ekspor",
				"peraturan", "bi rate", "suku bunga", "inflasi", "ojk", "idx mengumumkan",
			},
		},
		{
			ID:     Commodity,
			Label:  "Komoditas / Makro",
			Emoji:  "🌐",
			Impact: "Emiten komoditas sensitif harga acuan.",
			Keywords: []string{
				"batubara", "coal", "hba", "cpo", "minyak", "oil", "nikel", "timah", "emas", "tembaga",
			},
		},
		{
			ID:     Expansion,
			Label:  "Ekspansi / Proyek",
			Emoji:  "🏗️",
			Impact: "Positif jika pendanaan sehat & prospek jelas.",
			Keywords: []string{
				"ekspansi", "pabrik", "kapasitas", "investasi", "joint venture", "kerja sama",
				"kemitraan", "perluasan", "proyek baru",
			},
		},
	}
}

// DefaultCatchAll используется для новостей, опознанных только по общим маркерам.
func DefaultCatchAll() Category {
	return Category{
		ID:     Other,
		Label:  "Lainnya",
		Emoji:  "📢",
		Impact: "Berpotensi menggerakkan harga.",
	}
}

// Default собирает встроенную таксономию.
func Default() *Taxonomy {
	t, err := New(DefaultCategories(), DefaultGenericTokens, DefaultCatchAll())
	if err != nil {
		panic("taxonomy: invalid built-in table: " + err.Error())
	}
	return t
}
