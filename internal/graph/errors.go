package graph

import (
	"errors"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ngudow/SMP-graph/internal/types"
)

// Graph database error codes
const (
	// Connection errors
	ErrCodeConnectionFailed types.ErrorCode = "GRAPH_CONNECTION_FAILED"
	ErrCodeConnectionClosed types.ErrorCode = "GRAPH_CONNECTION_CLOSED"

	// Configuration errors
	ErrCodeInvalidConfig types.ErrorCode = "GRAPH_INVALID_CONFIG"

	// Query errors
	ErrCodeQueryFailed   types.ErrorCode = "GRAPH_QUERY_FAILED"
	ErrCodeInvalidQuery  types.ErrorCode = "GRAPH_INVALID_QUERY"
	ErrCodeResultParsing types.ErrorCode = "GRAPH_RESULT_PARSING"
)

// procedureNotFoundCode is the engine status code reported when a called
// procedure is not registered on the server (e.g. an alpha-tier GDS procedure
// missing from the installed plugin build).
const procedureNotFoundCode = "Neo.ClientError.Procedure.ProcedureNotFound"

// IsProcedureNotFound reports whether err indicates that the called procedure
// does not exist on the engine. Adapters use this to trigger their one-shot
// fallback to an alternate procedure name.
func IsProcedureNotFound(err error) bool {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		if neoErr.Code == procedureNotFoundCode {
			return true
		}
		// Some engine builds report unknown procedures through the generic
		// ProcedureCallFailed code with an explanatory message.
		return strings.Contains(neoErr.Msg, "no procedure with the name")
	}
	return false
}

// IsGraphNotFound reports whether err indicates that a named in-memory
// projection does not exist. The projection manager treats this as success
// during teardown; any other drop failure is surfaced.
func IsGraphNotFound(err error) bool {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		return strings.Contains(neoErr.Msg, "does not exist")
	}
	return false
}
