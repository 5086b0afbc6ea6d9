package diag

// Severity defines the importance of a diagnostic. Values are ordered.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
	// SevFatal means the resulting model must be discarded. Fatal implies Error.
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// IsError reports whether s is Error or Fatal.
func (s Severity) IsError() bool { return s >= SevError }
