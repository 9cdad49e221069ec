package metadata

import (
	"sync"

	"github.com/JyotinderSingh/dropdb/record"
	"github.com/JyotinderSingh/dropdb/table"
	"github.com/JyotinderSingh/dropdb/tx"
)

// StatManager keeps cached, periodically refreshed statistics about every
// table in the database, for use by cost-based components outside this
// package.
type StatManager struct {
	tableManager *TableManager
	tableStats   map[string]*StatInfo
	numCalls     int
	mu           sync.Mutex
	refreshLimit int
}

// NewStatManager creates a new StatManager, computing initial statistics by
// scanning every table in the catalog.
func NewStatManager(tableManager *TableManager, transaction *tx.Transaction, refreshLimit int) (*StatManager, error) {
	sm := &StatManager{
		tableManager: tableManager,
		tableStats:   make(map[string]*StatInfo),
		refreshLimit: refreshLimit,
	}
	if err := sm.refreshStatistics(transaction); err != nil {
		return nil, err
	}
	return sm, nil
}

// GetStatInfo returns statistical information about the specified table,
// refreshing all statistics first if the call count has exceeded the
// refresh limit.
func (sm *StatManager) GetStatInfo(tableName string, layout *record.Layout, transaction *tx.Transaction) (*StatInfo, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.numCalls++
	if sm.numCalls > sm.refreshLimit {
		if err := sm.doRefreshStatistics(transaction); err != nil {
			return nil, err
		}
	}

	if statInfo, ok := sm.tableStats[tableName]; ok {
		return statInfo, nil
	}

	statInfo, err := sm.calcTableStats(tableName, layout, transaction)
	if err != nil {
		return nil, err
	}
	sm.tableStats[tableName] = statInfo
	return statInfo, nil
}

func (sm *StatManager) refreshStatistics(transaction *tx.Transaction) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.doRefreshStatistics(transaction)
}

// doRefreshStatistics recalculates statistics for every table in the
// catalog. The caller must already hold sm.mu.
func (sm *StatManager) doRefreshStatistics(transaction *tx.Transaction) error {
	sm.tableStats = make(map[string]*StatInfo)
	sm.numCalls = 0

	tableCatalogLayout, err := sm.tableManager.GetLayout(tableCatalogTableName, transaction)
	if err != nil {
		return err
	}
	tableCatalogScan, err := table.NewTableScan(transaction, tableCatalogTableName, tableCatalogLayout)
	if err != nil {
		return err
	}
	defer tableCatalogScan.Close()

	for {
		hasNext, err := tableCatalogScan.Next()
		if err != nil {
			return err
		}
		if !hasNext {
			break
		}

		tableName, err := tableCatalogScan.GetString(tableNameField)
		if err != nil {
			return err
		}

		layout, err := sm.tableManager.GetLayout(tableName, transaction)
		if err != nil {
			return err
		}

		statInfo, err := sm.calcTableStats(tableName, layout, transaction)
		if err != nil {
			return err
		}
		sm.tableStats[tableName] = statInfo
	}

	return nil
}

// calcTableStats scans the entire table to count its records, blocks, and
// per-field distinct values.
func (sm *StatManager) calcTableStats(tableName string, layout *record.Layout, transaction *tx.Transaction) (*StatInfo, error) {
	numRecords := 0
	numBlocks := 0
	distinctValues := make(map[string]map[any]struct{})
	for _, field := range layout.Schema().Fields() {
		distinctValues[field] = make(map[any]struct{})
	}

	ts, err := table.NewTableScan(transaction, tableName, layout)
	if err != nil {
		return nil, err
	}
	defer ts.Close()

	for {
		hasNext, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if !hasNext {
			break
		}

		numRecords++
		rid := ts.GetRecordID()
		if rid.BlockNumber()+1 > numBlocks {
			numBlocks = rid.BlockNumber() + 1
		}

		for _, field := range layout.Schema().Fields() {
			val, err := ts.GetVal(field)
			if err != nil {
				return nil, err
			}
			distinctValues[field][val] = struct{}{}
		}
	}

	distinctCounts := make(map[string]int)
	for field, values := range distinctValues {
		distinctCounts[field] = len(values)
	}

	return NewStatInfo(numBlocks, numRecords, distinctCounts), nil
}
