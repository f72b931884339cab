package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// EncodeSeqToken creates a base64 encoded cursor from an insertion-order
// sequence number. Used for consistent pagination across repositories.
func EncodeSeqToken(seq int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(seq, 10)))
}

// DecodeSeqToken parses a cursor back into its sequence number.
func DecodeSeqToken(token string) (int64, error) {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	seq, err := strconv.ParseInt(string(decoded), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pagination token format (sequence parse): %w", err)
	}
	return seq, nil
}
