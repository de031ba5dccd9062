package actorsys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentifierRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		id   Identifier
		want string
	}{
		{"local id", Local(42), "#42"},
		{"local named", LocalNamed("worker"), "worker"},
		{"foreign id", Foreign("node-b", 7), "node-b:#7"},
		{"foreign named", ForeignNamed("node-b", "worker"), "node-b:worker"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, c.want, c.id.String())

			parsed, err := ParseIdentifier(c.want)
			require.NoError(t, err)
			require.Equal(t, c.id, parsed)
		})
	}
}

func TestParseIdentifierRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		":",
		":worker",
		"node-a:",
		"node-a:worker:pool",
		"#",
		"#notanumber",
	}

	for _, s := range cases {
		s := s
		t.Run(s, func(t *testing.T) {
			t.Parallel()

			_, err := ParseIdentifier(s)
			require.Error(t, err)

			var parseErr *IdentifierParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestIdentifierIsLocalTo(t *testing.T) {
	t.Parallel()

	require.True(t, Local(1).IsLocalTo("node-a"))
	require.True(t, LocalNamed("x").IsLocalTo("node-a"))
	require.True(t, Foreign("node-a", 1).IsLocalTo("node-a"))
	require.False(t, Foreign("node-b", 1).IsLocalTo("node-a"))
	require.False(t, ForeignNamed("node-b", "x").IsLocalTo("node-a"))
}
