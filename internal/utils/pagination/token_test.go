package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhub/ledgerd/internal/utils/pagination"
)

func TestSeqTokenRoundTrip(t *testing.T) {
	for _, seq := range []int64{0, 1, 42, 1 << 40} {
		token := pagination.EncodeSeqToken(seq)
		got, err := pagination.DecodeSeqToken(token)
		require.NoError(t, err)
		assert.Equal(t, seq, got)
	}
}

func TestDecodeSeqTokenInvalid(t *testing.T) {
	_, err := pagination.DecodeSeqToken("not-base64!!")
	assert.Error(t, err)

	_, err = pagination.DecodeSeqToken("bm90LWEtbnVtYmVy") // "not-a-number"
	assert.Error(t, err)
}
