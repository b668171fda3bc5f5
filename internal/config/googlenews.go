package config

// DefaultGoogleNewsSites — индонезийские финансовые издания, по которым ищет Google News.
var DefaultGoogleNewsSites = []string{
	"emitennews.com", "kontan.co.id", "bisnis.com",
	"cnbcindonesia.com", "antaranews.com", "investor.id",
	"idxchannel.com", "kompas.com", "detik.com",
}

// DefaultGoogleNewsQueries — поисковые запросы, по одной ленте на группу событий.
var DefaultGoogleNewsQueries = []string{
	// корпоративные действия
	`akuisisi OR "mandatory tender offer" OR mto OR merger OR takeover`,
	`"rights issue" OR hmetd OR pmthmetd OR "private placement" OR put`,
	`ipo OR "listing perdana" OR delisting OR "stock split" OR "reverse stock split"`,
	`buyback`,
	`dividen OR deviden`,
	// отчётность
	`"laporan keuangan" OR "laba bersih" OR rugi OR ebitda OR eps OR pendapatan`,
	// регулирование и макро
	`pajak OR subsidi OR "larangan ekspor" OR "izin ekspor" OR ojk OR "bi rate" OR inflasi`,
	// сырьё
	`batubara OR coal OR hba OR cpo OR minyak OR oil OR nikel OR timah OR emas OR tembaga`,
	// расширение бизнеса
	`ekspansi OR pabrik OR "joint venture" OR "investor strategis" OR "mitra strategis"`,
}
