package constants

// JobStatus is the status reported by the OCR service for an async text detection job.
type JobStatus string

const (
	JobStatusInProgress     JobStatus = "IN_PROGRESS"
	JobStatusSucceeded      JobStatus = "SUCCEEDED"
	JobStatusFailed         JobStatus = "FAILED"
	JobStatusPartialSuccess JobStatus = "PARTIAL_SUCCESS"
)

// Extraction methods, recorded on results and on extraction errors.
const (
	MethodDirect   = "direct"
	MethodSyncOCR  = "sync-ocr"
	MethodAsyncOCR = "async-ocr"
)

// BlockTypeLine is the only OCR block type that carries extractable text for us.
const BlockTypeLine = "LINE"
