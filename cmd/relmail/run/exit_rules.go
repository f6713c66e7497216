package run

import (
	"errors"

	"github.com/flarebyte/relmail/internal/stage"
)

const (
	exitCodeUpload     = 1
	exitCodeNotify     = 2
	exitCodeTemplate   = 3
	exitCodeChangelog  = 4
	exitCodeDescriptor = 5
	exitCodeUsage      = 64
)

type runExitError struct {
	code int
	msg  string
	err  error
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }
func (e runExitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return runExitError{code: exitCodeUsage, msg: err.Error(), err: err}
}

// exitCodeFor maps a stage failure kind to the process exit code.
func exitCodeFor(k stage.Kind) int {
	switch k {
	case stage.KindArtifactNotFound, stage.KindGit:
		return exitCodeDescriptor
	case stage.KindUploadSubmission, stage.KindUploadProcessing, stage.KindUploadNeverReady:
		return exitCodeUpload
	case stage.KindChangelogRead:
		return exitCodeChangelog
	case stage.KindTemplate:
		return exitCodeTemplate
	case stage.KindMailAuth, stage.KindMailRefused, stage.KindMailProtocol, stage.KindMailUnclassified:
		return exitCodeNotify
	default:
		return exitCodeUpload
	}
}

func evaluateRunExit(err error) error {
	if err == nil {
		return nil
	}
	var se *stage.Error
	if !errors.As(err, &se) {
		return runExitError{code: exitCodeUpload, msg: err.Error(), err: err}
	}
	return runExitError{code: exitCodeFor(se.Kind), msg: se.Error(), err: err}
}
