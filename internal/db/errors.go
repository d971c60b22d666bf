package db

import "errors"

// Sentinel errors for storage operations.
var (
	ErrKeyNotFound      = errors.New("db: key not found")
	ErrDocumentNotFound = errors.New("db: document not found")
	ErrInvalidID        = errors.New("db: invalid document id")
)

// Op constants name backend operations for error context.
const (
	OpDel         = "DEL"
	OpScan        = "SCAN"
	OpGet         = "GET"
	OpSet         = "SET"
	OpJSONSet     = "JSON.SET"
	OpJSONGet     = "JSON.GET"
	OpFindOne     = "findOne"
	OpFind        = "find"
	OpCount       = "countDocuments"
	OpReplaceOne  = "replaceOne"
	OpDeleteOne   = "deleteOne"
	OpSearch      = "search"
	OpScroll      = "scroll"
	OpClearScroll = "clear_scroll"
	OpBulk        = "bulk"
	OpCreateIndex = "indices.create"
	OpDeleteIndex = "indices.delete"
	OpRefresh     = "indices.refresh"
	OpPutMapping  = "indices.put_mapping"
	OpForceMerge  = "indices.forcemerge"
	OpStats       = "indices.stats"
	OpPing        = "ping"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
