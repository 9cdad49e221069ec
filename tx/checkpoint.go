package tx

import (
	"github.com/JyotinderSingh/dropdb/file"
	"github.com/JyotinderSingh/dropdb/log"
	"github.com/JyotinderSingh/dropdb/types"
)

// CheckpointRecord marks a point in the log before which recovery never
// needs to look, because every transaction active at that point is
// guaranteed to have finished by the time the checkpoint was written.
type CheckpointRecord struct {
	LogRecord
}

// NewCheckpointRecord creates a new CheckpointRecord.
func NewCheckpointRecord() (*CheckpointRecord, error) {
	return &CheckpointRecord{}, nil
}

// Op returns the type of the log record.
func (r *CheckpointRecord) Op() LogRecordType {
	return Checkpoint
}

// TxNumber returns a dummy value, since a checkpoint record is not
// associated with any transaction.
func (r *CheckpointRecord) TxNumber() int {
	return -1
}

// Undo does nothing. CheckpointRecord does not change any data.
func (r *CheckpointRecord) Undo(_ *Transaction) error {
	return nil
}

// String returns a string representation of the log record.
func (r *CheckpointRecord) String() string {
	return "<CHECKPOINT>"
}

// WriteCheckpointToLog writes a checkpoint record to the log. This log record contains only the
// Checkpoint operator. The method returns the LSN of the new log record.
func WriteCheckpointToLog(logManager *log.Manager) (int, error) {
	record := make([]byte, types.IntSize)

	page := file.NewPageFromBytes(record)
	page.SetInt(0, int(Checkpoint))

	return logManager.Append(record)
}
