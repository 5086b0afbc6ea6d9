package diag

import (
	"time"

	"flume/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Time     time.Time
	Kind     Kind
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}
