package sequence

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	code, err := Format("MAT", "250102", 37)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^MAT-250102-011[A-Z2-9]{2}$`), code)
}

func TestFormatLongSequence(t *testing.T) {
	code, err := Format("MAT", "250102", 36*36*36)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^MAT-250102-1000[A-Z2-9]{2}$`), code)
}
