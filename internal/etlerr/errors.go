// Package etlerr defines the stage-level error kinds of a pipeline run.
//
// Packages below the stage boundary return ordinary wrapped errors. The
// pipeline wraps each failure exactly once with the stage it happened in, so
// callers can branch with errors.Is(err, etlerr.ErrLoad) and still reach the
// underlying cause with errors.As.
package etlerr

import (
	"errors"
	"fmt"
)

// Stage names one step of the pipeline.
type Stage string

const (
	StageConfig    Stage = "config"
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)

var (
	ErrConfiguration  = errors.New("configuration error")
	ErrExtraction     = errors.New("extraction error")
	ErrTransformation = errors.New("transformation error")
	ErrLoad           = errors.New("load error")
)

// Error is a failure attributed to one pipeline stage.
type Error struct {
	Stage Stage
	Op    string
	Err   error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Stage.sentinel(), e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage.sentinel(), e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's stage.
func (e *Error) Is(target error) bool {
	return target == e.Stage.sentinel()
}

func (s Stage) sentinel() error {
	switch s {
	case StageConfig:
		return ErrConfiguration
	case StageExtract:
		return ErrExtraction
	case StageTransform:
		return ErrTransformation
	case StageLoad:
		return ErrLoad
	default:
		return errors.New(string(s) + " error")
	}
}

// ExitCode is the process exit status for a failure in this stage.
func (s Stage) ExitCode() int {
	switch s {
	case StageConfig:
		return 2
	case StageExtract:
		return 3
	case StageTransform:
		return 4
	case StageLoad:
		return 5
	default:
		return 1
	}
}

// Wrap attributes err to stage. A nil err stays nil and an error already
// attributed to a stage is returned unchanged.
func Wrap(stage Stage, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Stage: stage, Op: op, Err: err}
}

func Configuration(op string, err error) error  { return Wrap(StageConfig, op, err) }
func Extraction(op string, err error) error     { return Wrap(StageExtract, op, err) }
func Transformation(op string, err error) error { return Wrap(StageTransform, op, err) }
func Load(op string, err error) error           { return Wrap(StageLoad, op, err) }

// StageOf returns the stage err is attributed to, or "" when it carries none.
func StageOf(err error) Stage {
	var se *Error
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
