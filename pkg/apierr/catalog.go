package apierr

import (
	"fmt"
	"net/http"
)

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InvalidID(entity string) *Error {
	return New(CodeInvalidID, http.StatusBadRequest, "Invalid "+entity+" ID")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

func NotImplemented(feature string) *Error {
	return New(CodeNotImplemented, http.StatusNotImplemented, feature+" is not enabled on this server")
}

// --- Dataset ---

func DatasetIDRequired() *Error {
	return New(CodeDatasetIDRequired, http.StatusBadRequest, "dataset_id is required")
}

func DatasetNotFound() *Error {
	return New(CodeDatasetNotFound, http.StatusNotFound, "Dataset not found")
}

func DatasetListFailed(cause error) *Error {
	return Wrap(CodeDatasetListFailed, http.StatusInternalServerError, "Failed to list datasets", cause)
}

// --- Query ---

func PromptRequired() *Error {
	return New(CodePromptRequired, http.StatusBadRequest, "prompt is required")
}

func PromptTooLong(max int) *Error {
	return New(CodePromptTooLong, http.StatusBadRequest, fmt.Sprintf("prompt must be at most %d characters", max))
}

// QueryFailed is the single banner-level failure for an ask: nothing from
// the envelope is rendered.
func QueryFailed(cause error) *Error {
	return Wrap(CodeQueryFailed, http.StatusBadGateway, "Failed to fetch insights. Please try again.", cause)
}

func PlanUnparseable(cause error) *Error {
	return Wrap(CodePlanUnparseable, http.StatusBadGateway, "AI returned an unexpected format (expected a JSON array of blocks).", cause)
}

func EnvelopeInvalid(cause error) *Error {
	return Wrap(CodeEnvelopeInvalid, http.StatusBadRequest, "Payload is not a result envelope", cause)
}

func DiagnosticsFailed(cause error) *Error {
	return Wrap(CodeDiagnosticsFailed, http.StatusInternalServerError, "Failed to read diagnostics", cause)
}

// --- Visualization ---

func VisualizationNotFound() *Error {
	return New(CodeVisualizationNotFound, http.StatusNotFound, "Visualization not found")
}

func VisualizationSaveFailed(cause error) *Error {
	return Wrap(CodeVisualizationSaveFailed, http.StatusInternalServerError, "Failed to save visualization", cause)
}

func VisualizationListFailed(cause error) *Error {
	return Wrap(CodeVisualizationListFailed, http.StatusInternalServerError, "Failed to list visualizations", cause)
}

func SnapshotNotFound() *Error {
	return New(CodeSnapshotNotFound, http.StatusNotFound, "No snapshot stored for this visualization")
}

// --- Health ---

func DatabaseNotReady() *Error {
	return New(CodeDatabaseNotReady, http.StatusServiceUnavailable, "Database not ready")
}
