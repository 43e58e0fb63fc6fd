package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/VectorBits/Polaris/src/internal"
	_ "github.com/go-sql-driver/mysql"
)

var DBPool *sql.DB

// InitDB 初始化 MySQL 连接池
func InitDB(ctx context.Context) (*sql.DB, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("Loading configuration failed: %w", err)
	}

	// 1. 尝试直接连接指定数据库
	dsn := config.GetDatabaseDSN(true)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("InitDB: %w", err)
	}

	// 检查连接
	ctxPing, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	err = db.PingContext(ctxPing)
	cancelPing()

	if err != nil {
		// 2. 如果连接失败（可能是数据库不存在），尝试连接到 MySQL server root 并创建数据库
		fmt.Printf("Database ping failed for '%s': %v\n", config.Database.Name, err)

		dsnRoot := config.GetDatabaseDSN(false)
		dbRoot, errRoot := sql.Open("mysql", dsnRoot)
		if errRoot != nil {
			return nil, fmt.Errorf("InitDB: %w", errRoot)
		}
		defer dbRoot.Close()

		createDBSQL := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", config.Database.Name)
		if _, errExec := dbRoot.ExecContext(ctx, createDBSQL); errExec != nil {
			return nil, fmt.Errorf("InitDB: %w", errExec)
		}
		fmt.Printf("✅  Database '%s' created successfully (or already exists)\n", config.Database.Name)

		// 重新连接到新创建的数据库
		if err := db.Close(); err != nil {
			// ignore close error
		}
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("InitDB: %w", err)
		}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("InitDB ping failed: %w", err)
	}

	// 3. 自动迁移表结构
	if err := AutoMigrate(ctx, db, config); err != nil {
		db.Close()
		return nil, fmt.Errorf("InitDB migrate failed: %w", err)
	}

	DBPool = db
	return db, nil
}

// AutoMigrate 自动检查并创建所需的表
func AutoMigrate(ctx context.Context, db *sql.DB, cfg *AppConfig) error {
	tableName := cfg.Database.TableName
	if tableName == "" {
		return nil
	}

	const tableSchema = `
CREATE TABLE IF NOT EXISTS %s (
    address VARCHAR(42) PRIMARY KEY COMMENT 'Contract Address',
    name VARCHAR(255) NULL COMMENT 'Contract Name',
    source LONGTEXT NOT NULL COMMENT 'Contract Source Code',
    abi LONGTEXT NULL COMMENT 'Contract ABI (JSON)',
    bytecode LONGTEXT NULL COMMENT 'Contract Bytecode',
    createtime DATETIME NOT NULL COMMENT 'Creation Time',
    createblock BIGINT UNSIGNED NOT NULL COMMENT 'Creation Block',
    INDEX idx_createblock (createblock),
    INDEX idx_createtime (createtime)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci COMMENT='Smart Contract Source Table';
`

	query := fmt.Sprintf(tableSchema, tableName)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	// 检查并添加可能缺失的列 (简单的 schema evolution)
	columnsToCheck := []struct {
		ColName string
		ColType string
	}{
		{"abi", "LONGTEXT NULL COMMENT 'Contract ABI (JSON)'"},
		{"bytecode", "LONGTEXT NULL COMMENT 'Contract Bytecode'"},
	}

	for _, col := range columnsToCheck {
		// 先尝试添加，忽略 "Duplicate column name" 错误，兼容旧版 MySQL
		alterQuery := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tableName, col.ColName, col.ColType)
		if _, err := db.ExecContext(ctx, alterQuery); err != nil {
			// 1060 Duplicate column name
		}
	}

	return nil
}

func GetContracts(ctx context.Context, db *sql.DB, limit int) ([]internal.Contract, error) {
	if db == nil {
		return nil, fmt.Errorf("GetContracts: db is nil")
	}

	tableName, err := GetTableName()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT address, name, source, abi, bytecode, createtime, createblock FROM %s", tableName)
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContracts(rows)
}

func GetContractsByAddresses(ctx context.Context, db *sql.DB, addresses []string) ([]internal.Contract, error) {
	if db == nil {
		return nil, fmt.Errorf("GetContractsByAddresses: db is nil")
	}
	if len(addresses) == 0 {
		return nil, fmt.Errorf("GetContractsByAddresses: addresses empty")
	}

	tableName, err := GetTableName()
	if err != nil {
		return nil, err
	}

	placeholders := make([]string, len(addresses))
	args := make([]interface{}, len(addresses))
	for i, addr := range addresses {
		placeholders[i] = "?"
		args[i] = addr
	}

	query := fmt.Sprintf("SELECT address, name, source, abi, bytecode, createtime, createblock FROM %s WHERE address IN (%s)",
		tableName, joinStrings(placeholders, ","))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContracts(rows)
}

func scanContracts(rows *sql.Rows) ([]internal.Contract, error) {
	var out []internal.Contract
	for rows.Next() {
		var c internal.Contract
		var name sql.NullString
		var abiJSON sql.NullString
		var bytecode sql.NullString
		var createBlock int64
		var createTime time.Time

		if err := rows.Scan(&c.Address, &name, &c.Source, &abiJSON, &bytecode, &createTime, &createBlock); err != nil {
			return nil, err
		}

		if name.Valid {
			c.Name = name.String
		}
		if abiJSON.Valid {
			c.ABI = abiJSON.String
		}
		if bytecode.Valid {
			c.Bytecode = bytecode.String
		}
		c.CreateTime = createTime
		c.CreateBlock = uint64(createBlock)

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func GetTableName() (string, error) {
	config, err := LoadConfig()
	if err != nil {
		return "", fmt.Errorf("Loading configuration failed: %w", err)
	}

	if config.Database.TableName == "" {
		return "", fmt.Errorf("database.table_name is not configured")
	}
	return config.Database.TableName, nil
}

func joinStrings(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for i := 1; i < len(strs); i++ {
		result += sep + strs[i]
	}
	return result
}
