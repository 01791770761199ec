package orderfiles

import "fmt"

// Error codes surfaced to callers. Per-file codes (RecordNotFound,
// DownloadFailed, MaterializationFailed) never fail the request; they end up
// as placeholder entries inside the archive instead.
const (
	CodeMissingParameter         = "MissingParameter"
	CodeNotFound                 = "NotFound"
	CodeNoFilesFound             = "NoFilesFound"
	CodeUpstreamError            = "UpstreamError"
	CodeRecordNotFound           = "RecordNotFound"
	CodeDownloadFailed           = "DownloadFailed"
	CodeMaterializationFailed    = "MaterializationFailed"
	CodeAllDownloadsFailed       = "AllDownloadsFailed"
	CodeConfigurationUnavailable = "ConfigurationUnavailable"
)

type PipelineError struct {
	Code    string
	Message string
	Err     error
}

func (e PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e PipelineError) Unwrap() error { return e.Err }

func errCode(code, format string, args ...any) PipelineError {
	return PipelineError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapCode(code string, err error, format string, args ...any) PipelineError {
	return PipelineError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}
