package tx

import (
	"errors"
	"github.com/JyotinderSingh/dropdb/file"
)

// LogRecordType is the type of log record.
type LogRecordType int

const (
	Checkpoint LogRecordType = iota + 1
	Start
	Commit
	Rollback
	SetInt
	SetString
	SetBool
	SetShort
	SetLong
	SetDate
)

func (t LogRecordType) String() string {
	switch t {
	case Checkpoint:
		return "Checkpoint"
	case Start:
		return "Start"
	case Commit:
		return "Commit"
	case Rollback:
		return "Rollback"
	case SetInt:
		return "SetInt"
	case SetString:
		return "SetString"
	case SetBool:
		return "SetBool"
	case SetShort:
		return "SetShort"
	case SetLong:
		return "SetLong"
	case SetDate:
		return "SetDate"
	default:
		return "Unknown"
	}
}

func FromCode(code int) (LogRecordType, error) {
	switch LogRecordType(code) {
	case Checkpoint, Start, Commit, Rollback, SetInt, SetString, SetBool, SetShort, SetLong, SetDate:
		return LogRecordType(code), nil
	default:
		return -1, errors.New("unknown LogRecordType code")
	}
}

// LogRecord interface for log records.
type LogRecord interface {
	// Op returns the log record type.
	Op() LogRecordType

	// TxNumber returns the transaction ID stored with the log record.
	TxNumber() int

	// Undo undoes the operation encoded by this log record.
	// Undoes the operation encoded by this log record.
	// Only the SET* record types (SETINT, SETSTRING, SETBOOL, SETLONG, SETSHORT, SETDATE) restore a value;
	// for the other types it does nothing.
	Undo(tx *Transaction) error
}

// CreateLogRecord interprets the bytes to create the appropriate log record. This method assumes that the first int
// (utils.IntSize bytes, as written by Page.SetInt) of the byte array represents the log record type.
func CreateLogRecord(bytes []byte) (LogRecord, error) {
	p := file.NewPageFromBytes(bytes)
	code := p.GetInt(0)
	recordType, err := FromCode(int(code))
	if err != nil {
		return nil, err
	}

	switch recordType {
	case Checkpoint:
		return NewCheckpointRecord()
	case Start:
		return NewStartRecord(p)
	case Commit:
		return NewCommitRecord(p)
	case Rollback:
		return NewRollbackRecord(p)
	case SetInt:
		return NewSetIntRecord(p)
	case SetString:
		return NewSetStringRecord(p)
	case SetBool:
		return NewSetBoolRecord(p)
	case SetShort:
		return NewSetShortRecord(p)
	case SetLong:
		return NewSetLongRecord(p)
	case SetDate:
		return NewSetDateRecord(p)
	default:
		return nil, errors.New("unexpected LogRecordType")
	}
}
