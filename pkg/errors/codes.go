package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by all modules.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
	ErrCodeStorageError       ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"
)

// Short aliases used by generic layers.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Material / catalog module error codes.
const (
	ErrCodeMaterialNotFound      ErrorCode = "MAT_001"
	ErrCodeCatalogEmpty          ErrorCode = "MAT_002"
	ErrCodeCatalogInconsistent   ErrorCode = "MAT_003"
	ErrCodeFormulaInvalid        ErrorCode = "MAT_004"
	ErrCodeStructureInvalid      ErrorCode = "MAT_005"
	ErrCodeScalerDimMismatch     ErrorCode = "MAT_006"
	ErrCodeStructureExportFailed ErrorCode = "MAT_007"
)

// Generation pipeline error codes.
const (
	ErrCodeGenModelNotLoaded      ErrorCode = "GEN_001"
	ErrCodeGenDimMismatch         ErrorCode = "GEN_002"
	ErrCodeGenConstraintInvalid   ErrorCode = "GEN_003"
	ErrCodeGenRecoveryFailed      ErrorCode = "GEN_004"
	ErrCodeGenIndexConfigInvalid  ErrorCode = "GEN_005"
	ErrCodeGenArtifactMissing     ErrorCode = "GEN_006"
	ErrCodeGenArtifactCorrupt     ErrorCode = "GEN_007"
	ErrCodeGenTemperatureInvalid  ErrorCode = "GEN_008"
	ErrCodeGenEmptyResult         ErrorCode = "GEN_009"
	ErrCodeGenSamplerConfigError  ErrorCode = "GEN_010"
)

// AI / NLP backend error codes.
const (
	ErrCodeAIModelNotAvailable  ErrorCode = "AI_001"
	ErrCodeAIInferenceFailed    ErrorCode = "AI_002"
	ErrCodeAIResponseUnparsable ErrorCode = "AI_003"
	ErrCodeAIInputInvalid       ErrorCode = "AI_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeMaterialNotFound:      http.StatusNotFound,
	ErrCodeCatalogEmpty:          http.StatusInternalServerError,
	ErrCodeCatalogInconsistent:   http.StatusInternalServerError,
	ErrCodeFormulaInvalid:        http.StatusBadRequest,
	ErrCodeStructureInvalid:      http.StatusBadRequest,
	ErrCodeScalerDimMismatch:     http.StatusInternalServerError,
	ErrCodeStructureExportFailed: http.StatusInternalServerError,

	ErrCodeGenModelNotLoaded:     http.StatusServiceUnavailable,
	ErrCodeGenDimMismatch:        http.StatusInternalServerError,
	ErrCodeGenConstraintInvalid:  http.StatusBadRequest,
	ErrCodeGenRecoveryFailed:     http.StatusInternalServerError,
	ErrCodeGenIndexConfigInvalid: http.StatusInternalServerError,
	ErrCodeGenArtifactMissing:    http.StatusServiceUnavailable,
	ErrCodeGenArtifactCorrupt:    http.StatusInternalServerError,
	ErrCodeGenTemperatureInvalid: http.StatusBadRequest,
	ErrCodeGenEmptyResult:        http.StatusOK,
	ErrCodeGenSamplerConfigError: http.StatusInternalServerError,

	ErrCodeAIModelNotAvailable:  http.StatusServiceUnavailable,
	ErrCodeAIInferenceFailed:    http.StatusInternalServerError,
	ErrCodeAIResponseUnparsable: http.StatusInternalServerError,
	ErrCodeAIInputInvalid:       http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "storage error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeMaterialNotFound:      "material not found",
	ErrCodeCatalogEmpty:          "reference catalog is empty",
	ErrCodeCatalogInconsistent:   "catalog and feature matrix are inconsistent",
	ErrCodeFormulaInvalid:        "invalid chemical formula",
	ErrCodeStructureInvalid:      "invalid crystal structure",
	ErrCodeScalerDimMismatch:     "scaler dimension mismatch",
	ErrCodeStructureExportFailed: "structure export failed",

	ErrCodeGenModelNotLoaded:     "generative model not loaded",
	ErrCodeGenDimMismatch:        "generation dimension mismatch",
	ErrCodeGenConstraintInvalid:  "invalid property constraint",
	ErrCodeGenRecoveryFailed:     "structure recovery failed",
	ErrCodeGenIndexConfigInvalid: "invalid neighbor index configuration",
	ErrCodeGenArtifactMissing:    "model artifact missing",
	ErrCodeGenArtifactCorrupt:    "model artifact corrupt",
	ErrCodeGenTemperatureInvalid: "invalid sampling temperature",
	ErrCodeGenEmptyResult:        "generation produced no materials",
	ErrCodeGenSamplerConfigError: "invalid sampler configuration",

	ErrCodeAIModelNotAvailable:  "NLP model not available",
	ErrCodeAIInferenceFailed:    "NLP inference failed",
	ErrCodeAIResponseUnparsable: "NLP response could not be parsed",
	ErrCodeAIInputInvalid:       "invalid input for NLP model",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
