// messages.go defines Bubble Tea messages used for async communication.
//
// The pipeline runs off the UI goroutine; its hooks and final outcome
// come back to the TUI as these messages, so the UI never blocks.
package tui

import (
	"github.com/DachengChen/askSQL/assistant"
	"github.com/DachengChen/askSQL/db"
)

// StateMsg reports that the question moved to a new stage.
type StateMsg struct {
	State assistant.State
}

// SQLMsg carries the generated query as soon as the model returns it.
type SQLMsg struct {
	SQL string
}

// ResultMsg carries the query result as soon as it is materialized.
type ResultMsg struct {
	Result *db.ResultTable
}

// AnswerMsg is sent when the question finished, successfully or not.
type AnswerMsg struct {
	Outcome *assistant.Outcome
	Err     error
}

// SchemaMsg is sent when the schema view finished reading the catalog.
type SchemaMsg struct {
	Schema db.Schema
	Err    error
}

// StatusMsg is a transient status message for the status bar.
type StatusMsg string
