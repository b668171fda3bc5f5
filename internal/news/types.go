package news

import "time"

// Fingerprint — детерминированный SHA-1 (hex) нормализованного заголовка и ссылки.
type Fingerprint string

// CandidateItem описывает новость сразу после получения из источника.
// Живёт в пределах одного запуска и никогда не сохраняется.
type CandidateItem struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Link        string    `json:"link"` // уже разрешён относительно базового URL источника
	Body        string    `json:"body"` // текст без разметки, только для классификации
	PublishedAt time.Time `json:"published_at"`
}

// SelectedItem — новость, прошедшая классификацию и проверку новизны.
type SelectedItem struct {
	CategoryID  string      `json:"category_id"`
	Title       string      `json:"title"`
	Link        string      `json:"link"`
	Source      string      `json:"source"`
	Excerpt     string      `json:"excerpt,omitempty"`
	PublishedAt time.Time   `json:"published_at"`
	Fingerprint Fingerprint `json:"fingerprint"`
	Summary     string      `json:"summary,omitempty"` // заполняется опциональным обогащением
}

// SourceReport — итог опроса одного источника.
type SourceReport struct {
	Source string
	Items  int
	Err    error
}
