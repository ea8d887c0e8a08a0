package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")

	// ErrorStagedAttachmentNotFound covers an unknown, already committed or
	// pre-restart staged attachment id.
	ErrorStagedAttachmentNotFound = errors.New("staged attachment doesn't exist")

	// ErrorUnauthorized is an external-credential failure that survived the
	// single refresh-and-retry.
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorUpstream is a scan/drive service failure after any retry budget
	// is exhausted.
	ErrorUpstream = errors.New("upstream service error")
)

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
