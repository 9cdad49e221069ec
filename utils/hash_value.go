package utils

import (
	"fmt"
	"hash/fnv"
	"time"
)

// HashValue computes a deterministic 32-bit hash for any of the scalar
// types the record package supports. It is used to fingerprint field
// values without pulling in a comparison or ordering semantic.
func HashValue(value any) (uint32, error) {
	switch v := value.(type) {
	case int:
		return hashString(fmt.Sprintf("%d", v)), nil
	case int16:
		return hashString(fmt.Sprintf("%d", v)), nil
	case int64:
		return hashString(fmt.Sprintf("%d", v)), nil
	case string:
		return hashString(v), nil
	case bool:
		return hashString(fmt.Sprintf("%t", v)), nil
	case time.Time:
		return hashString(v.UTC().Format(time.RFC3339Nano)), nil
	default:
		return 0, fmt.Errorf("unsupported value type for hashing: %T", value)
	}
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
