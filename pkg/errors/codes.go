package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
)

// Aliases used across the code base.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Log Parsing Error Codes
const (
	ErrCodeUnknownFormat   ErrorCode = "LOG_001"
	ErrCodeMalformedRecord ErrorCode = "LOG_002"
	ErrCodeUnknownCategory ErrorCode = "LOG_003"
	ErrCodeUnknownRingSize ErrorCode = "LOG_004"
	ErrCodeDuplicateSample ErrorCode = "LOG_005"
	ErrCodeNoSamples       ErrorCode = "LOG_006"
	ErrCodeLogReadFailed   ErrorCode = "LOG_007"
	ErrCodeLogParseFailed  ErrorCode = "LOG_008"
)

// Export Error Codes
const (
	ErrCodeExportFailed    ErrorCode = "EXP_001"
	ErrCodeExportFormat    ErrorCode = "EXP_002"
	ErrCodeArchiveFailed   ErrorCode = "EXP_003"
	ErrCodeStorageError    ErrorCode = "EXP_004"
	ErrCodeReportEmpty     ErrorCode = "EXP_005"
	ErrCodeReportBuildFail ErrorCode = "EXP_006"
)

// inputCodes are the codes that describe malformed or unusable input.  An
// error carrying one of them rejects a single log file; it never aborts a run.
var inputCodes = map[ErrorCode]bool{
	ErrCodeUnknownFormat:   true,
	ErrCodeMalformedRecord: true,
	ErrCodeUnknownCategory: true,
	ErrCodeUnknownRingSize: true,
	ErrCodeDuplicateSample: true,
	ErrCodeLogParseFailed:  true,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",

	ErrCodeUnknownFormat:   "unrecognized log format",
	ErrCodeMalformedRecord: "malformed log record",
	ErrCodeUnknownCategory: "unknown parameter category",
	ErrCodeUnknownRingSize: "unknown ring size",
	ErrCodeDuplicateSample: "duplicate sample name",
	ErrCodeNoSamples:       "no samples found",
	ErrCodeLogReadFailed:   "failed to read log file",
	ErrCodeLogParseFailed:  "failed to parse log file",

	ErrCodeExportFailed:    "dataset export failed",
	ErrCodeExportFormat:    "unsupported export format",
	ErrCodeArchiveFailed:   "dataset archive failed",
	ErrCodeStorageError:    "object storage error",
	ErrCodeReportEmpty:     "report has no sections",
	ErrCodeReportBuildFail: "failed to build report",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsInputCode reports whether code classifies a malformed-input condition.
func IsInputCode(code ErrorCode) bool {
	return inputCodes[code]
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
