package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCode(t *testing.T) {
	t.Run("range", func(t *testing.T) {
		require.False(t, Code(99).Valid())
		require.True(t, Continue.Valid())
		require.True(t, Code(599).Valid())
		require.False(t, Code(600).Valid())
	})

	t.Run("class", func(t *testing.T) {
		require.Equal(t, 1, SwitchingProtocols.Class())
		require.Equal(t, 2, NoContent.Class())
		require.Equal(t, 5, InternalServerError.Class())
	})

	t.Run("bodyless codes", func(t *testing.T) {
		for _, code := range []Code{Continue, SwitchingProtocols, NoContent, NotModified} {
			require.False(t, code.AllowsBody(), code)
		}

		for _, code := range []Code{OK, BadRequest, NotFound, InternalServerError} {
			require.True(t, code.AllowsBody(), code)
		}
	})
}
