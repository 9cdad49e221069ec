package scan

import "time"

// Scan represents the output of a relational algebra operator, be it a
// stored table or the result of an operator applied to other scans.
type Scan interface {
	// BeforeFirst positions the scan before the first record, so that a
	// subsequent call to Next will move to the first record.
	BeforeFirst() error

	// Next moves the scan to the next record. Returns false if no next
	// record exists.
	Next() (bool, error)

	// GetInt returns the integer value of the specified field in the
	// current record.
	GetInt(fieldName string) (int, error)

	// GetLong returns the long value of the specified field in the
	// current record.
	GetLong(fieldName string) (int64, error)

	// GetShort returns the short value of the specified field in the
	// current record.
	GetShort(fieldName string) (int16, error)

	// GetString returns the string value of the specified field in the
	// current record.
	GetString(fieldName string) (string, error)

	// GetBool returns the boolean value of the specified field in the
	// current record.
	GetBool(fieldName string) (bool, error)

	// GetDate returns the date value of the specified field in the
	// current record.
	GetDate(fieldName string) (time.Time, error)

	// GetVal returns the value of the specified field in the current
	// record, regardless of its type.
	GetVal(fieldName string) (any, error)

	// HasField returns true if the scan has the specified field.
	HasField(fieldName string) bool

	// Close closes the scan and its subscans, if any.
	Close()
}
