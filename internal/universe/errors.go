package universe

import "github.com/ngudow/SMP-graph/internal/types"

// Universe store error codes
const (
	ErrCodeUpsertFailed       types.ErrorCode = "UNIVERSE_UPSERT_FAILED"
	ErrCodeAppendFailed       types.ErrorCode = "UNIVERSE_APPEND_FAILED"
	ErrCodeReadFailed         types.ErrorCode = "UNIVERSE_READ_FAILED"
	ErrCodeExportFailed       types.ErrorCode = "UNIVERSE_EXPORT_FAILED"
	ErrCodeWipeFailed         types.ErrorCode = "UNIVERSE_WIPE_FAILED"
	ErrCodeInstrumentNotFound types.ErrorCode = "UNIVERSE_INSTRUMENT_NOT_FOUND"
)
