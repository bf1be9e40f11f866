package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverflowPolicy_ZeroValueIsTruncateSilent(t *testing.T) {
	var p OverflowPolicy
	assert.Equal(t, TruncateSilent, p)
	assert.Equal(t, TruncateSilent, Config{}.Policy)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want OverflowPolicy
	}{
		{"truncate-silent", TruncateSilent},
		{"TruncateSilent", TruncateSilent},
		{"truncate_warn", TruncateWarn},
		{" Reject Silent ", RejectSilent},
		{"REJECT-WARN", RejectWarn},
		{"RejectHard", RejectHard},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "truncate", "drop-oldest", "reject-loud"} {
		_, err := ParsePolicy(bad)
		require.ErrorIs(t, err, ErrInvalidPolicy, bad)
	}
}

func TestOverflowPolicy_TextRoundTrip(t *testing.T) {
	for _, p := range Policies() {
		text, err := p.MarshalText()
		require.NoError(t, err)

		var got OverflowPolicy
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, p, got)
	}

	_, err := OverflowPolicy(99).MarshalText()
	require.ErrorIs(t, err, ErrInvalidPolicy)
	assert.Equal(t, "OverflowPolicy(99)", OverflowPolicy(99).String())
}

func TestOverflowPolicy_Predicates(t *testing.T) {
	tests := []struct {
		p      OverflowPolicy
		reject bool
		warn   bool
	}{
		{TruncateSilent, false, false},
		{TruncateWarn, false, true},
		{RejectSilent, true, false},
		{RejectWarn, true, true},
		{RejectHard, true, false},
	}
	for _, tt := range tests {
		assert.True(t, tt.p.Valid(), tt.p.String())
		assert.Equal(t, tt.reject, tt.p.Rejects(), tt.p.String())
		assert.Equal(t, tt.warn, tt.p.Warns(), tt.p.String())
	}
	assert.False(t, OverflowPolicy(-1).Valid())
}
