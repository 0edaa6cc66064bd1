package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		name          string
		methods       string
		outcomes      string
		wantPrimary   string
		wantSucceeded string
	}{
		{
			name:          "first configured method succeeds",
			methods:       "manual;auto",
			outcomes:      "cfg1,;cfg2,timeout",
			wantPrimary:   "manual",
			wantSucceeded: "manual",
		},
		{
			name:          "unconfigured first method is skipped",
			methods:       "manual;auto",
			outcomes:      ",err;cfg2,",
			wantPrimary:   "auto",
			wantSucceeded: "auto",
		},
		{
			name:          "primary fails and fallback succeeds",
			methods:       "manual;auto;fallback",
			outcomes:      "cfg1,not found;;defaults,",
			wantPrimary:   "manual",
			wantSucceeded: "fallback",
		},
		{
			name:          "nothing succeeds",
			methods:       "manual;auto",
			outcomes:      "cfg1,boom;cfg2,timeout",
			wantPrimary:   "manual",
			wantSucceeded: "",
		},
		{
			name:          "missing outcome pairs",
			methods:       "manual;auto",
			outcomes:      "",
			wantPrimary:   "",
			wantSucceeded: "",
		},
		{
			name:    "no headers",
			methods: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := ParseOutcome(tt.methods, tt.outcomes)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrimary, outcome.PrimaryMethod)
			assert.Equal(t, tt.wantSucceeded, outcome.SucceededMethod)
		})
	}
}

func TestParseOutcome_MethodDetails(t *testing.T) {
	outcome, err := ParseOutcome("manual; auto ;fallback", "cfg1,;cfg2,timeout")
	require.NoError(t, err)
	require.Len(t, outcome.Methods, 3)

	manual := outcome.Methods[0]
	assert.Equal(t, "manual", manual.MethodName)
	require.NotNil(t, manual.Config)
	assert.Equal(t, "cfg1", *manual.Config)
	assert.Nil(t, manual.ErrorInfo)

	auto := outcome.Methods[1]
	assert.Equal(t, "auto", auto.MethodName)
	require.NotNil(t, auto.ErrorInfo)
	assert.Equal(t, "timeout", *auto.ErrorInfo)

	fallback := outcome.Methods[2]
	assert.False(t, fallback.Configured(), "no pair reported for fallback")
}

func TestParseOutcome_ErrorKeepsCommas(t *testing.T) {
	outcome, err := ParseOutcome("auto", "cfg,failed: a, b")
	require.NoError(t, err)
	require.NotNil(t, outcome.Methods[0].ErrorInfo)
	assert.Equal(t, "failed: a, b", *outcome.Methods[0].ErrorInfo)
}

func TestParseOutcome_MalformedPair(t *testing.T) {
	outcome, err := ParseOutcome("manual;auto", "garbage;cfg2,")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedOutcome)

	// The malformed method counts as unconfigured; the rest still parses
	assert.Equal(t, "auto", outcome.PrimaryMethod)
	assert.Equal(t, "auto", outcome.SucceededMethod)
	assert.False(t, outcome.Methods[0].Configured())
}
