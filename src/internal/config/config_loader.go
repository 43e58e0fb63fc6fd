package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Name      string `yaml:"name"`
	TableName string `yaml:"table_name"`
}

type StorageConfig struct {
	ReportDir   string `yaml:"report_dir"`
	HistoryPath string `yaml:"history_path"`
}

type AnalysisConfig struct {
	GasPriceGwei     float64 `yaml:"gas_price_gwei"`
	MaxSourceBytes   int     `yaml:"max_source_bytes"`
	LongFunctionLine int     `yaml:"long_function_lines"`
	Workers          int     `yaml:"workers"`
}

type AppConfig struct {
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

var GlobalConfig *AppConfig
var loadOnce sync.Once
var loadedConfig *AppConfig
var loadedErr error

// LoadConfig 加载 YAML 配置
func LoadConfig() (*AppConfig, error) {
	loadOnce.Do(func() {
		configPath := findConfigFile()
		if configPath == "" {
			loadedErr = fmt.Errorf("The configuration file settings.yaml was not found.")
			return
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			loadedErr = fmt.Errorf("Failed to read configuration file: %w", err)
			return
		}

		var config AppConfig
		if err := yaml.Unmarshal(data, &config); err != nil {
			loadedErr = fmt.Errorf("Failed to parse configuration file: %w", err)
			return
		}

		config.applyDefaults()
		loadedConfig = &config
		GlobalConfig = loadedConfig
	})

	if loadedErr != nil {
		return nil, loadedErr
	}
	return loadedConfig, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Storage.ReportDir == "" {
		c.Storage.ReportDir = "reports"
	}
	if c.Storage.HistoryPath == "" {
		c.Storage.HistoryPath = "polaris_history.db"
	}
	if c.Analysis.Workers <= 0 {
		c.Analysis.Workers = 4
	}
	if c.Analysis.LongFunctionLine <= 0 {
		c.Analysis.LongFunctionLine = 50
	}
}

func findConfigFile() string {
	possiblePaths := []string{
		"config/settings.yaml",
		"settings.yaml",
		"src/config/settings.yaml",
		"../config/settings.yaml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func (c *AppConfig) GetDatabaseDSN(includeDBName bool) string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
	)
	if includeDBName {
		dsn += fmt.Sprintf("%s?parseTime=true&charset=utf8mb4", c.Database.Name)
	} else {
		dsn += "?parseTime=true&charset=utf8mb4"
	}
	return dsn
}

func GetConfigPath() string {
	return findConfigFile()
}

func GetConfigDir() string {
	configPath := findConfigFile()
	if configPath == "" {
		return "config"
	}
	return filepath.Dir(configPath)
}
