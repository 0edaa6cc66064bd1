package domain

// FallbackMethod is the method name the server reports when none of the
// configured methods produced a result and a generic fallback was used.
const FallbackMethod = "fallback"

// MethodOutcome describes one resolution method the server attempted.
type MethodOutcome struct {
	MethodName string  `json:"methodName"`
	Config     *string `json:"config,omitempty"`    // nil: method not configured for this path
	ErrorInfo  *string `json:"errorInfo,omitempty"` // nil: no error
}

// Configured returns true if the method applied to the path
func (m MethodOutcome) Configured() bool {
	return m.Config != nil
}

// Succeeded returns true if the method applied and produced no error
func (m MethodOutcome) Succeeded() bool {
	return m.Config != nil && m.ErrorInfo == nil
}

// ResolutionOutcome is the result of resolving one path.
// An empty method name means no method qualified.
type ResolutionOutcome struct {
	PrimaryMethod   string          `json:"primaryMethod"`
	SucceededMethod string          `json:"succeededMethod"`
	Methods         []MethodOutcome `json:"methods,omitempty"`
	ResolvedXML     string          `json:"resolvedXML,omitempty"`

	// Compared is set when a reference comparison was requested.
	// ReferenceXML stays nil if the reference could not be fetched.
	Compared     bool    `json:"compared,omitempty"`
	ReferenceXML *string `json:"referenceXML,omitempty"`
}

// ResolutionStatus classifies an outcome for display
type ResolutionStatus int

const (
	ResolutionError ResolutionStatus = iota
	ResolutionWarning
	ResolutionSuccess
)

func (s ResolutionStatus) String() string {
	switch s {
	case ResolutionSuccess:
		return "success"
	case ResolutionWarning:
		return "warning"
	default:
		return "error"
	}
}

// Status returns success when the primary method itself succeeded,
// warning when only the fallback did, and error otherwise.
func (o *ResolutionOutcome) Status() ResolutionStatus {
	switch {
	case o.SucceededMethod == FallbackMethod:
		return ResolutionWarning
	case o.SucceededMethod != "" && o.SucceededMethod == o.PrimaryMethod:
		return ResolutionSuccess
	default:
		return ResolutionError
	}
}

// Label returns the short text shown next to a resolved path
func (o *ResolutionOutcome) Label() string {
	if o.SucceededMethod == "" {
		return "N/A"
	}
	return o.SucceededMethod
}

// Brief returns a copy without the detailed fields, suitable for caching
func (o *ResolutionOutcome) Brief() *ResolutionOutcome {
	return &ResolutionOutcome{
		PrimaryMethod:   o.PrimaryMethod,
		SucceededMethod: o.SucceededMethod,
	}
}
