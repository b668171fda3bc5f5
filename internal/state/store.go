package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maine/idx_news_movers/internal/logger"
	"github.com/maine/idx_news_movers/internal/news"
)

// FileStore хранит отпечатки в JSON-файле: массив строк, от старых к новым.
type FileStore struct {
	path string
}

// NewFileStore создаёт новый файловый стор.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path возвращает путь к файлу состояния.
func (s *FileStore) Path() string {
	return s.path
}

// Load читает состояние из файла.
// Отсутствующий, повреждённый или не того формата файл даёт пустое состояние без ошибки.
// Ошибка возвращается только если файл существует, но не читается; состояние при этом пустое.
func (s *FileStore) Load(ctx context.Context) (news.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return news.State{}, nil
		}
		return news.State{}, fmt.Errorf("read state file: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return news.State{}, nil
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		// повреждённый файл сохраняем рядом для диагностики и начинаем с пустого состояния
		brokenPath := s.path + ".broken"
		_ = os.WriteFile(brokenPath, data, 0o644)
		logger.Warn(ctx, "state file is corrupt, starting empty", "path", s.path, "backup", brokenPath, "error", err)
		return news.State{}, nil
	}

	fps := make([]news.Fingerprint, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fps = append(fps, news.Fingerprint(item))
	}
	return news.NewState(fps...), nil
}

// Save записывает последние news.MaxStateEntries отпечатков атомарно (через временный файл).
func (s *FileStore) Save(ctx context.Context, st news.State) error {
	recent := st.Recent(news.MaxStateEntries)
	out := make([]string, len(recent))
	for i, fp := range recent {
		out[i] = string(fp)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp state file: %w", err)
	}

	return nil
}
