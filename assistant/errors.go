package assistant

import "errors"

// Stage names the pipeline step a failure came from.
type Stage string

const (
	StageSchemaRead     Stage = "schema-read"
	StagePromptBuild    Stage = "prompt-build"
	StageModelCall      Stage = "model-call"
	StageQueryExecution Stage = "query-execution"
	StageAnswerCompose  Stage = "answer-compose"
)

// StageError tags an error with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage err was tagged with, or "" if it was not.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
