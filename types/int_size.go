package types

import "github.com/JyotinderSingh/dropdb/utils"

// IntSize is the width, in bytes, of an encoded int field within a log
// record's wire layout. It tracks utils.IntSize so that log records and
// record slots agree on field spacing on every platform.
var IntSize = utils.IntSize
