package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Record 一次合约分析的历史记录
type Record struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ContractName     string    `gorm:"column:contract_name"`
	PragmaVersion    string    `gorm:"column:pragma_version"`
	SourceHash       string    `gorm:"column:source_hash;index"`
	TotalFindings    int       `gorm:"column:total_findings"`
	ImprovementScore int       `gorm:"column:improvement_score"`
	OverallScore     int       `gorm:"column:overall_score"`
	DeploymentGas    uint64    `gorm:"column:deployment_gas"`
	ReportPath       string    `gorm:"column:report_path"`
	AnalyzedAt       time.Time `gorm:"column:analyzed_at;index"`
}

func (Record) TableName() string {
	return "analysis_history"
}

type Store struct {
	db *gorm.DB
}

func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Save(record *Record) error {
	if record.AnalyzedAt.IsZero() {
		record.AnalyzedAt = time.Now()
	}
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}
	return nil
}

// Recent 按时间倒序返回最近 limit 条记录
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	var records []Record
	if err := s.db.Order("analyzed_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return records, nil
}

// ByContract 返回某个合约名下的全部记录
func (s *Store) ByContract(name string) ([]Record, error) {
	var records []Record
	if err := s.db.Where("contract_name = ?", name).Order("analyzed_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return records, nil
}
