package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/tradingfloor/core"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memoryModel maps to the 'memories' table.
type memoryModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Entity    string    `gorm:"column:entity;index"`
	Content   string    `gorm:"column:content"`
	Metadata  string    `gorm:"column:metadata"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (memoryModel) TableName() string { return "memories" }

// SQLStore is a MemoryStore persisted in its own SQLite database.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLStore opens (or creates) the SQLite database at path.
func OpenSQLStore(path string) (*SQLStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("memory database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open memory database %s: %w", path, err)
	}
	return NewSQLStoreFromDB(db)
}

// NewSQLStoreFromDB wraps an existing gorm handle and migrates the schema.
func NewSQLStoreFromDB(db *gorm.DB) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	if err := db.AutoMigrate(&memoryModel{}); err != nil {
		return nil, fmt.Errorf("migrate memories: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return &SQLStore{db: db}, nil
}

// Store implements core.MemoryStore.
func (s *SQLStore) Store(ctx context.Context, entity, content string, metadata map[string]any) (string, error) {
	if content == "" {
		return "", fmt.Errorf("empty memory content")
	}
	md, err := json.Marshal(copyMetadata(metadata))
	if err != nil {
		return "", fmt.Errorf("encode memory metadata: %w", err)
	}
	row := memoryModel{
		ID:        uuid.NewString(),
		Entity:    entity,
		Content:   content,
		Metadata:  string(md),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("store memory: %w", err)
	}
	return row.ID, nil
}

// Search implements core.MemoryStore. Candidate rows are those containing
// any query term; they are then ranked like InMemoryStore ranks them.
func (s *SQLStore) Search(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	terms := queryTerms(query)

	q := s.db.WithContext(ctx).Model(&memoryModel{}).Order("created_at DESC")
	if len(terms) > 0 {
		var clauses []string
		var args []any
		for _, t := range terms {
			clauses = append(clauses, "LOWER(content) LIKE ? OR LOWER(entity) LIKE ?")
			like := "%" + t + "%"
			args = append(args, like, like)
		}
		q = q.Where(strings.Join(clauses, " OR "), args...)
	} else if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []memoryModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}

	results := make([]core.SearchResult, 0, len(rows))
	for _, r := range rows {
		md := map[string]any{}
		if r.Metadata != "" {
			_ = json.Unmarshal([]byte(r.Metadata), &md)
		}
		results = append(results, core.SearchResult{
			ID:        r.ID,
			Entity:    r.Entity,
			Content:   r.Content,
			Score:     matchScore(terms, r.Entity+" "+r.Content),
			CreatedAt: r.CreatedAt,
			Metadata:  md,
		})
	}
	return rank(results, limit), nil
}

// Delete implements core.MemoryStore.
func (s *SQLStore) Delete(ctx context.Context, memoryID string) error {
	res := s.db.WithContext(ctx).Where("id = ?", memoryID).Delete(&memoryModel{})
	if res.Error != nil {
		return fmt.Errorf("delete memory: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, memoryID)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var (
	_ core.MemoryStore = (*SQLStore)(nil)
	_ core.MemoryStore = (*InMemoryStore)(nil)
)

// IsNotFound reports whether err means the memory id does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
