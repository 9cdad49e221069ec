package concurrency

import (
	"github.com/JyotinderSingh/dropdb/file"
)

type lockType int

const (
	sLock lockType = iota
	xLock
)

// Manager is the per-transaction concurrency control object. The
// transaction keeps track of which locks it currently holds so that
// Release can give them all back at commit or rollback, and so that
// repeated requests for the same lock don't re-enter the lock table.
type Manager struct {
	lockTable *LockTable
	txNum     int
	locks     map[file.BlockId]lockType
}

// NewManager creates a concurrency manager for a single transaction that
// consults the given (shared, process-wide) lock table.
func NewManager(lockTable *LockTable, txNum int) *Manager {
	return &Manager{
		lockTable: lockTable,
		txNum:     txNum,
		locks:     make(map[file.BlockId]lockType),
	}
}

// SLock obtains a shared lock on the block if the transaction doesn't
// already hold one (of either kind).
func (m *Manager) SLock(block *file.BlockId) error {
	if _, ok := m.locks[*block]; ok {
		return nil
	}
	if err := m.lockTable.SLock(block, m.txNum); err != nil {
		return err
	}
	m.locks[*block] = sLock
	return nil
}

// XLock obtains an exclusive lock on the block, first acquiring a shared
// lock if the transaction doesn't hold one already.
func (m *Manager) XLock(block *file.BlockId) error {
	if m.hasXLock(block) {
		return nil
	}
	if err := m.SLock(block); err != nil {
		return err
	}
	if err := m.lockTable.XLock(block, m.txNum); err != nil {
		return err
	}
	m.locks[*block] = xLock
	return nil
}

// Release gives back every lock held by the transaction.
func (m *Manager) Release() {
	for block := range m.locks {
		block := block
		m.lockTable.Unlock(&block, m.txNum)
	}
	m.locks = make(map[file.BlockId]lockType)
}

func (m *Manager) hasXLock(block *file.BlockId) bool {
	kind, ok := m.locks[*block]
	return ok && kind == xLock
}
