package clients

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitEmailList(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"comma joined", "a@x.com, B@Y.com", []string{"a@x.com", "b@y.com"}},
		{"json array", `["a@x.com","b@y.com"]`, []string{"a@x.com", "b@y.com"}},
		{"empty", "", nil},
		{"blank entries dropped", "a@x.com,, ,b@y.com", []string{"a@x.com", "b@y.com"}},
		{"malformed json falls back to comma split", `["a@x.com"`, []string{`["a@x.com"`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SplitEmailList(tc.in))
		})
	}
}

func TestEmailListContains(t *testing.T) {
	require.True(t, EmailListContains("a@x.com,b@y.com", "B@Y.com"))
	require.True(t, EmailListContains(`["exec@andina.com"]`, "exec@andina.com"))
	// Membership is exact equality, never substring.
	require.False(t, EmailListContains("executive@x.com", "exec@x.com"))
	require.False(t, EmailListContains("", "a@x.com"))
	require.False(t, EmailListContains("a@x.com", ""))
}
