package logstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// logModel maps to the 'logs' table.
type logModel struct {
	ID       int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name     string    `gorm:"column:name;index"`
	Datetime time.Time `gorm:"column:datetime"`
	Type     string    `gorm:"column:type"`
	Message  string    `gorm:"column:message"`
}

func (logModel) TableName() string { return "logs" }

// GormSink keeps records in the SQLite database shared with the accounts
// server.
type GormSink struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenGormSink opens (or creates) the database at path.
func OpenGormSink(path string) (*GormSink, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("log database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open log database %s: %w", path, err)
	}
	return NewGormSinkFromDB(db)
}

// NewGormSinkFromDB wraps an existing gorm handle and migrates the schema.
func NewGormSinkFromDB(db *gorm.DB) (*GormSink, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	if err := db.AutoMigrate(&logModel{}); err != nil {
		return nil, fmt.Errorf("migrate logs: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return &GormSink{db: db, now: time.Now}, nil
}

// Write implements Sink.
func (s *GormSink) Write(ctx context.Context, name, category, message string) error {
	row := logModel{
		Name:     normalizeName(name),
		Datetime: s.now().UTC(),
		Type:     category,
		Message:  message,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("write log for %s: %w", name, err)
	}
	return nil
}

// Read implements Sink.
func (s *GormSink) Read(ctx context.Context, name string, lastN int) ([]Record, error) {
	var rows []logModel
	err := s.db.WithContext(ctx).
		Where("name = ?", normalizeName(name)).
		Order("id DESC").
		Limit(readLimit(lastN)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("read logs for %s: %w", name, err)
	}

	out := make([]Record, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = Record{Timestamp: r.Datetime, Name: r.Name, Category: r.Type, Message: r.Message}
	}
	return out, nil
}

// Close releases the underlying database handle.
func (s *GormSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
