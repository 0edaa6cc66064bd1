package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

const (
	// HeaderMethods lists the attempted method names, ';'-separated
	HeaderMethods = "X-Resolution-Methods"
	// HeaderOutcomes lists "config,error" pairs parallel to HeaderMethods
	HeaderOutcomes = "X-Resolution-Outcomes"

	listSeparator = ";"
	pairSeparator = ","
)

// ErrMalformedOutcome marks a "config,error" pair that could not be parsed
var ErrMalformedOutcome = errors.New("malformed method outcome")

// ParseOutcome builds an outcome from the two resolution headers. The
// returned outcome always carries Methods. Malformed pairs are reported in
// err but do not prevent a usable outcome; the affected method is treated
// as not configured.
func ParseOutcome(methodsHeader, outcomesHeader string) (*domain.ResolutionOutcome, error) {
	names := splitList(methodsHeader)
	pairs := splitList(outcomesHeader)

	var errs []error
	methods := make([]domain.MethodOutcome, 0, len(names))

	for idx, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		m := domain.MethodOutcome{MethodName: name}
		if idx < len(pairs) {
			config, errInfo, err := parsePair(pairs[idx])
			if err != nil {
				errs = append(errs, fmt.Errorf("method %q: %w", name, err))
			} else {
				m.Config = config
				m.ErrorInfo = errInfo
			}
		}
		methods = append(methods, m)
	}

	outcome := &domain.ResolutionOutcome{Methods: methods}
	for _, m := range methods {
		if outcome.PrimaryMethod == "" && m.Configured() {
			outcome.PrimaryMethod = m.MethodName
		}
		if m.Succeeded() {
			outcome.SucceededMethod = m.MethodName
			break
		}
	}

	return outcome, errors.Join(errs...)
}

// parsePair splits "config,error". Blank fields come back nil; a blank pair
// means the method was not configured.
func parsePair(raw string) (config, errInfo *string, err error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, nil
	}

	rawConfig, rawErr, ok := strings.Cut(raw, pairSeparator)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrMalformedOutcome, raw)
	}

	return nonBlank(rawConfig), nonBlank(rawErr), nil
}

func splitList(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	return strings.Split(header, listSeparator)
}

func nonBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
