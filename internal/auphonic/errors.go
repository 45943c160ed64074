package auphonic

import (
	"fmt"
	"strings"

	"podopt/internal/services"
)

// ParameterNotSupportedError reports a setting value outside its allow-list.
type ParameterNotSupportedError struct {
	Parameter string
	Value     string
}

func (e *ParameterNotSupportedError) Error() string {
	return fmt.Sprintf("auphonic: %s %q is not supported", e.Parameter, e.Value)
}

func (e *ParameterNotSupportedError) ErrorKind() string { return services.KindConfiguration }

// IncompleteSettingsError lists every setting that was never set.
type IncompleteSettingsError struct {
	Fields []string
}

func (e *IncompleteSettingsError) Error() string {
	return "auphonic: settings incomplete, unset fields: " + strings.Join(e.Fields, ", ")
}

func (e *IncompleteSettingsError) ErrorKind() string { return services.KindConfiguration }

// JobCreationFailedError is returned when the production could not be created.
type JobCreationFailedError struct {
	StatusCode int
	Body       string
}

func (e *JobCreationFailedError) Error() string {
	return fmt.Sprintf("auphonic: create production failed (status %d): %s", e.StatusCode, snippet(e.Body))
}

func (e *JobCreationFailedError) ErrorKind() string { return services.KindRemote }

// UploadFailedError is returned when the source file upload was rejected.
type UploadFailedError struct {
	JobID      string
	StatusCode int
	Body       string
}

func (e *UploadFailedError) Error() string {
	return fmt.Sprintf("auphonic: upload to production %s failed (status %d): %s", e.JobID, e.StatusCode, snippet(e.Body))
}

func (e *UploadFailedError) ErrorKind() string { return services.KindRemote }

// ConfigureFailedError is returned when output files and algorithms were rejected.
type ConfigureFailedError struct {
	JobID      string
	StatusCode int
	Body       string
}

func (e *ConfigureFailedError) Error() string {
	return fmt.Sprintf("auphonic: configure production %s failed (status %d): %s", e.JobID, e.StatusCode, snippet(e.Body))
}

func (e *ConfigureFailedError) ErrorKind() string { return services.KindRemote }

// StartFailedError is returned when the production refused to start.
type StartFailedError struct {
	JobID      string
	StatusCode int
	Body       string
}

func (e *StartFailedError) Error() string {
	return fmt.Sprintf("auphonic: start production %s failed (status %d): %s", e.JobID, e.StatusCode, snippet(e.Body))
}

func (e *StartFailedError) ErrorKind() string { return services.KindRemote }

// JobNotFoundError covers a missing job ID and a production the service
// would not return or delete.
type JobNotFoundError struct {
	JobID      string
	Deletion   bool
	StatusCode int
	Body       string
}

func (e *JobNotFoundError) Error() string {
	switch {
	case e.JobID == "":
		return "auphonic: no production id"
	case e.Deletion:
		return fmt.Sprintf("auphonic: deletion of production %s failed (status %d): %s", e.JobID, e.StatusCode, snippet(e.Body))
	default:
		return fmt.Sprintf("auphonic: production %s not found (status %d)", e.JobID, e.StatusCode)
	}
}

func (e *JobNotFoundError) ErrorKind() string {
	if e.Deletion {
		return services.KindRemote
	}
	return services.KindNotFound
}

// AlgorithmsNotConfiguredError is returned by Start before Configure succeeded.
type AlgorithmsNotConfiguredError struct {
	JobID string
}

func (e *AlgorithmsNotConfiguredError) Error() string {
	return fmt.Sprintf("auphonic: algorithms not configured for production %s", e.JobID)
}

func (e *AlgorithmsNotConfiguredError) ErrorKind() string { return services.KindConfiguration }

// MediaItemNotFoundError is returned when no episode references a production.
type MediaItemNotFoundError struct {
	JobID string
}

func (e *MediaItemNotFoundError) Error() string {
	return fmt.Sprintf("no episode references auphonic production %s", e.JobID)
}

func (e *MediaItemNotFoundError) ErrorKind() string { return services.KindNotFound }

// RemoteOptimizationFailedError is returned when Auphonic reported a failed production.
type RemoteOptimizationFailedError struct {
	JobID string
}

func (e *RemoteOptimizationFailedError) Error() string {
	return fmt.Sprintf("auphonic: production %s failed", e.JobID)
}

func (e *RemoteOptimizationFailedError) ErrorKind() string { return services.KindRemote }

func snippet(body string) string {
	body = strings.TrimSpace(body)
	const limit = 512
	if len(body) > limit {
		return body[:limit] + "..."
	}
	if body == "" {
		return "<empty body>"
	}
	return body
}
