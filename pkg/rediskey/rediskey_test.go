package rediskey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildReceiptSequenceKey(t *testing.T) {
	require.Equal(t, "seq:MAT:250102", BuildReceiptSequenceKey("250102"))
}
