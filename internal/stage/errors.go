package stage

import (
	"errors"
	"fmt"
)

// Kind classifies a stage failure.
type Kind string

const (
	KindArtifactNotFound Kind = "artifact-not-found"
	KindGit              Kind = "git"
	KindUploadSubmission Kind = "upload-submission"
	KindUploadProcessing Kind = "upload-processing"
	KindUploadNeverReady Kind = "upload-never-ready"
	KindChangelogRead    Kind = "changelog-read"
	KindTemplate         Kind = "template"
	KindMailAuth         Kind = "mail-auth"
	KindMailRefused      Kind = "mail-refused"
	KindMailProtocol     Kind = "mail-protocol"
	KindMailUnclassified Kind = "mail-unclassified"
	KindOutput           Kind = "output"
)

// Error is a classified stage failure.
type Error struct {
	Stage string
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	return sanitizeErrorMessage(fmt.Sprintf("%s: %v", e.Stage, e.Err))
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func stageError(name string, kind Kind, err error) *Error {
	return &Error{Stage: name, Kind: kind, Err: err}
}

func missingInput(name string, kind Kind, what string) *Error {
	return stageError(name, kind, fmt.Errorf("missing %s", what))
}
