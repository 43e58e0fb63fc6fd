package dbutil

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/VectorBits/Polaris/src/internal/config"
	"github.com/ethereum/go-ethereum/common"
)

// BlockRange 限定按创建区块筛选的范围
type BlockRange struct {
	Start uint64
	End   uint64
}

// GetAddressesFromDB 按创建区块倒序取出待分析的合约地址
func GetAddressesFromDB(db *sql.DB, blockRange *BlockRange) ([]string, error) {
	tableName, err := config.GetTableName()
	if err != nil {
		return nil, err
	}

	var query string
	var args []interface{}

	// 基础条件：必须有源码
	baseConditions := "source IS NOT NULL AND source != ''"

	if blockRange != nil {
		query = fmt.Sprintf(`
			SELECT address, createblock
			FROM %s
			WHERE %s AND createblock BETWEEN ? AND ?
			ORDER BY createblock DESC
			LIMIT 1000
		`, tableName, baseConditions)
		args = []interface{}{blockRange.Start, blockRange.End}
	} else {
		query = fmt.Sprintf(`
			SELECT address, createblock
			FROM %s
			WHERE %s
			ORDER BY createblock DESC
			LIMIT 1000
		`, tableName, baseConditions)
		args = []interface{}{}
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addrs := make([]string, 0)
	for rows.Next() {
		var a string
		var createBlock uint64
		if err := rows.Scan(&a, &createBlock); err != nil {
			return nil, err
		}
		a = strings.TrimSpace(a)
		if a == "" || !common.IsHexAddress(a) {
			continue
		}
		addrs = append(addrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return addrs, nil
}
