package tx

import (
	"time"

	"github.com/JyotinderSingh/dropdb/buffer"
	"github.com/JyotinderSingh/dropdb/log"
)

// RecoveryManager writes the log records that make crash recovery
// possible and performs the undo-only rollback and recovery algorithms.
// Because Commit forces every modified buffer to disk before its commit
// record is written, a recovered (or rolled-back) transaction never needs
// to redo anything: undoing the uncommitted transactions suffices.
type RecoveryManager struct {
	logManager    *log.Manager
	bufferManager *buffer.Manager
	tx            *Transaction
	txNum         int
}

// NewRecoveryManager creates a recovery manager for the given transaction
// and immediately writes a start record for it.
func NewRecoveryManager(tx *Transaction, txNum int, logManager *log.Manager, bufferManager *buffer.Manager) *RecoveryManager {
	rm := &RecoveryManager{
		logManager:    logManager,
		bufferManager: bufferManager,
		tx:            tx,
		txNum:         txNum,
	}
	// The start record's LSN is not needed; a crash before it reaches disk
	// simply means the transaction never started as far as recovery cares.
	_, _ = WriteStartToLog(logManager, txNum)
	return rm
}

// SetInt writes a SETINT log record recording the buffer's old value at
// offset, returning the new record's LSN.
func (rm *RecoveryManager) SetInt(buff *buffer.Buffer, offset int, _ int) (int, error) {
	oldValue := buff.Contents().GetInt(offset)
	block := buff.Block()
	return WriteSetIntToLog(rm.logManager, rm.txNum, block, offset, oldValue)
}

// SetLong writes a SETLONG log record recording the buffer's old value.
func (rm *RecoveryManager) SetLong(buff *buffer.Buffer, offset int, _ int64) (int, error) {
	oldValue, err := buff.Contents().GetLong(offset)
	if err != nil {
		return -1, err
	}
	block := buff.Block()
	return WriteSetLongToLog(rm.logManager, rm.txNum, block, offset, oldValue)
}

// SetShort writes a SETSHORT log record recording the buffer's old value.
func (rm *RecoveryManager) SetShort(buff *buffer.Buffer, offset int, _ int16) (int, error) {
	oldValue := buff.Contents().GetShort(offset)
	block := buff.Block()
	return WriteSetShortToLog(rm.logManager, rm.txNum, block, offset, oldValue)
}

// SetBool writes a SETBOOL log record recording the buffer's old value.
func (rm *RecoveryManager) SetBool(buff *buffer.Buffer, offset int, _ bool) (int, error) {
	oldValue := buff.Contents().GetBool(offset)
	block := buff.Block()
	return WriteSetBoolToLog(rm.logManager, rm.txNum, block, offset, oldValue)
}

// SetDate writes a SETDATE log record recording the buffer's old value.
func (rm *RecoveryManager) SetDate(buff *buffer.Buffer, offset int, _ time.Time) (int, error) {
	oldValue := buff.Contents().GetDate(offset)
	block := buff.Block()
	return WriteSetDateToLog(rm.logManager, rm.txNum, block, offset, oldValue)
}

// SetString writes a SETSTRING log record recording the buffer's old
// value.
func (rm *RecoveryManager) SetString(buff *buffer.Buffer, offset int, _ string) (int, error) {
	oldValue, err := buff.Contents().GetString(offset)
	if err != nil {
		return -1, err
	}
	block := buff.Block()
	return WriteSetStringToLog(rm.logManager, rm.txNum, block, offset, oldValue)
}

// Commit flushes every buffer this transaction modified, then writes and
// flushes a commit record. The buffer flush must happen first: once the
// commit record is durable, recovery will treat the transaction as
// finished and never revisit its writes.
func (rm *RecoveryManager) Commit() error {
	if err := rm.bufferManager.FlushAll(rm.txNum); err != nil {
		return err
	}
	lsn, err := WriteCommitToLog(rm.logManager, rm.txNum)
	if err != nil {
		return err
	}
	return rm.logManager.Flush(lsn)
}

// Rollback undoes every change this transaction made, flushes the
// affected buffers, and writes a rollback record.
func (rm *RecoveryManager) Rollback() error {
	if err := rm.doRollback(); err != nil {
		return err
	}
	if err := rm.bufferManager.FlushAll(rm.txNum); err != nil {
		return err
	}
	lsn, err := WriteRollbackToLog(rm.logManager, rm.txNum)
	if err != nil {
		return err
	}
	return rm.logManager.Flush(lsn)
}

// Recover undoes every transaction that was active (neither committed nor
// rolled back) when the system last stopped, then writes a checkpoint
// record. It is called once at startup, before any user transaction
// begins.
func (rm *RecoveryManager) Recover() error {
	if err := rm.doRecover(); err != nil {
		return err
	}
	if err := rm.bufferManager.FlushAll(rm.txNum); err != nil {
		return err
	}
	lsn, err := WriteCheckpointToLog(rm.logManager)
	if err != nil {
		return err
	}
	return rm.logManager.Flush(lsn)
}

// doRollback walks the log backwards, undoing every record belonging to
// this transaction, stopping as soon as it reaches the transaction's own
// start record.
func (rm *RecoveryManager) doRollback() error {
	iter, err := rm.logManager.Iterator()
	if err != nil {
		return err
	}

	for iter.HasNext() {
		bytes, err := iter.Next()
		if err != nil {
			return err
		}
		rec, err := CreateLogRecord(bytes)
		if err != nil {
			return err
		}
		if rec.TxNumber() != rm.txNum {
			continue
		}
		if rec.Op() == Start {
			return nil
		}
		if err := rec.Undo(rm.tx); err != nil {
			return err
		}
	}
	return nil
}

// doRecover walks the entire log backwards, undoing every record that
// belongs to a transaction that neither committed nor rolled back before
// the crash. It stops at the most recent checkpoint, since everything
// before it is guaranteed to have already been flushed.
func (rm *RecoveryManager) doRecover() error {
	finished := make(map[int]bool)

	iter, err := rm.logManager.Iterator()
	if err != nil {
		return err
	}

	for iter.HasNext() {
		bytes, err := iter.Next()
		if err != nil {
			return err
		}
		rec, err := CreateLogRecord(bytes)
		if err != nil {
			return err
		}

		switch rec.Op() {
		case Checkpoint:
			return nil
		case Commit, Rollback:
			finished[rec.TxNumber()] = true
		default:
			if !finished[rec.TxNumber()] {
				if err := rec.Undo(rm.tx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
