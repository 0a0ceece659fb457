package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInvalidID          Code = "INVALID_ID"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeNotImplemented     Code = "NOT_IMPLEMENTED"
)

// Dataset errors.
const (
	CodeDatasetIDRequired Code = "DATASET_ID_REQUIRED"
	CodeDatasetNotFound   Code = "DATASET_NOT_FOUND"
	CodeDatasetListFailed Code = "DATASET_LIST_FAILED"
)

// Query errors.
const (
	CodePromptRequired    Code = "PROMPT_REQUIRED"
	CodePromptTooLong     Code = "PROMPT_TOO_LONG"
	CodeQueryFailed       Code = "QUERY_FAILED"
	CodePlanUnparseable   Code = "PLAN_UNPARSEABLE"
	CodeEnvelopeInvalid   Code = "ENVELOPE_INVALID"
	CodeDiagnosticsFailed Code = "DIAGNOSTICS_FAILED"
)

// Visualization errors.
const (
	CodeVisualizationNotFound   Code = "VISUALIZATION_NOT_FOUND"
	CodeVisualizationSaveFailed Code = "VISUALIZATION_SAVE_FAILED"
	CodeVisualizationListFailed Code = "VISUALIZATION_LIST_FAILED"
	CodeSnapshotNotFound        Code = "SNAPSHOT_NOT_FOUND"
)

// Health errors.
const (
	CodeDatabaseNotReady Code = "DATABASE_NOT_READY"
)
