package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/maine/idx_news_movers/internal/news"
)

// SentItem: строка таблицы отправленных отпечатков.
type SentItem struct {
	Seq         int64  `gorm:"primaryKey"`
	Fingerprint string `gorm:"uniqueIndex;size:64;not null"`
	SavedAt     time.Time
}

// SQLiteStore хранит отпечатки в SQLite через GORM. Контракт тот же, что у FileStore.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLiteStore открывает (или создаёт) базу и применяет миграцию.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite state: %w", err)
	}
	if err := db.AutoMigrate(&SentItem{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite state: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close закрывает соединение с базой.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load читает отпечатки в порядке добавления.
func (s *SQLiteStore) Load(ctx context.Context) (news.State, error) {
	var rows []SentItem
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return news.State{}, fmt.Errorf("query sent items: %w", err)
	}

	fps := make([]news.Fingerprint, 0, len(rows))
	for _, r := range rows {
		fps = append(fps, news.Fingerprint(r.Fingerprint))
	}
	return news.NewState(fps...), nil
}

// Save полностью заменяет содержимое таблицы в одной транзакции.
func (s *SQLiteStore) Save(ctx context.Context, st news.State) error {
	recent := st.Recent(news.MaxStateEntries)
	now := time.Now().UTC()

	rows := make([]SentItem, len(recent))
	for i, fp := range recent {
		rows[i] = SentItem{Seq: int64(i + 1), Fingerprint: string(fp), SavedAt: now}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&SentItem{}).Error; err != nil {
			return fmt.Errorf("clear sent items: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("insert sent items: %w", err)
		}
		return nil
	})
}
