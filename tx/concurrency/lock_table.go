// Package concurrency implements block-level shared/exclusive locking used
// to enforce strict two-phase locking across transactions.
package concurrency

import (
	"fmt"
	"sync"
	"time"

	"github.com/JyotinderSingh/dropdb/file"
)

// maxWaitTime bounds how long a transaction waits for a lock before the
// request is treated as deadlocked and aborted.
const maxWaitTime = 10 * time.Second

// lockEntry tracks which transactions currently hold a shared lock on a
// block, and which transaction (if any) holds the exclusive lock. Keeping
// the shared holders as a set, rather than a bare count, lets a
// transaction that already holds a shared lock upgrade to exclusive
// without being blocked by its own lock.
type lockEntry struct {
	sharedHolders map[int]bool
	exclusiveTxn  int // -1 means no exclusive holder
}

func newLockEntry() *lockEntry {
	return &lockEntry{sharedHolders: make(map[int]bool), exclusiveTxn: -1}
}

// LockTable is the process-wide table of block locks. Transactions never
// use it directly; they go through a per-transaction concurrency Manager.
type LockTable struct {
	mu      sync.Mutex
	cond    *sync.Cond
	entries map[file.BlockId]*lockEntry
}

// NewLockTable creates an empty lock table.
func NewLockTable() *LockTable {
	lt := &LockTable{entries: make(map[file.BlockId]*lockEntry)}
	lt.cond = sync.NewCond(&lt.mu)
	return lt
}

// SLock grants txNum a shared lock on block, blocking while another
// transaction holds the block exclusively. It returns an error if the wait
// exceeds maxWaitTime.
func (lt *LockTable) SLock(block *file.BlockId, txNum int) error {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	deadline := time.Now().Add(maxWaitTime)
	for lt.hasOtherXLock(block, txNum) {
		if !lt.waitUntil(deadline) {
			return fmt.Errorf("lock abort: timed out waiting for slock on block %s", block)
		}
	}

	entry := lt.entryFor(block)
	entry.sharedHolders[txNum] = true
	return nil
}

// XLock grants txNum an exclusive lock on block. The caller must already
// hold a shared lock on the block (the standard SimpleDB locking protocol
// always acquires SLock before XLock). XLock blocks only on shared holders
// other than txNum, so a transaction upgrading its own shared lock never
// waits on itself.
func (lt *LockTable) XLock(block *file.BlockId, txNum int) error {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	deadline := time.Now().Add(maxWaitTime)
	for lt.hasOtherSLock(block, txNum) {
		if !lt.waitUntil(deadline) {
			return fmt.Errorf("lock abort: timed out waiting for xlock on block %s", block)
		}
	}

	entry := lt.entryFor(block)
	entry.exclusiveTxn = txNum
	return nil
}

// Unlock releases every lock txNum holds on block. If the block ends up
// with no holders at all, its entry is removed.
func (lt *LockTable) Unlock(block *file.BlockId, txNum int) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	entry, ok := lt.entries[*block]
	if !ok {
		return
	}

	delete(entry.sharedHolders, txNum)
	if entry.exclusiveTxn == txNum {
		entry.exclusiveTxn = -1
	}

	if len(entry.sharedHolders) == 0 && entry.exclusiveTxn == -1 {
		delete(lt.entries, *block)
	}
	lt.cond.Broadcast()
}

func (lt *LockTable) entryFor(block *file.BlockId) *lockEntry {
	entry, ok := lt.entries[*block]
	if !ok {
		entry = newLockEntry()
		lt.entries[*block] = entry
	}
	return entry
}

func (lt *LockTable) hasOtherXLock(block *file.BlockId, txNum int) bool {
	entry, ok := lt.entries[*block]
	return ok && entry.exclusiveTxn != -1 && entry.exclusiveTxn != txNum
}

func (lt *LockTable) hasOtherSLock(block *file.BlockId, txNum int) bool {
	entry, ok := lt.entries[*block]
	if !ok {
		return false
	}
	for holder := range entry.sharedHolders {
		if holder != txNum {
			return true
		}
	}
	return false
}

// waitUntil blocks on the condition variable until it is signaled or the
// deadline passes. It returns false once the deadline has been reached.
func (lt *LockTable) waitUntil(deadline time.Time) bool {
	if time.Now().After(deadline) {
		return false
	}

	timer := time.AfterFunc(time.Until(deadline), func() {
		lt.mu.Lock()
		lt.cond.Broadcast()
		lt.mu.Unlock()
	})
	defer timer.Stop()

	lt.cond.Wait()
	return time.Now().Before(deadline)
}
