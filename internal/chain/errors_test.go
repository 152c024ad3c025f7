package chain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		rateLimited   bool
		rangeTooLarge bool
	}{
		{
			name: "nil error",
		},
		{
			name:        "alchemy style 429",
			err:         errors.New("429 Too Many Requests"),
			rateLimited: true,
		},
		{
			name:        "infura style rate limit",
			err:         errors.New("project ID request rate limit exceeded"),
			rateLimited: true,
		},
		{
			name:          "alchemy log cap",
			err:           errors.New("query returned more than 10000 results"),
			rangeTooLarge: true,
		},
		{
			name:          "bsc style range cap",
			err:           fmt.Errorf("eth_getLogs: %w", errors.New("exceed maximum block range: 5000")),
			rangeTooLarge: true,
		},
		{
			name:        "http status 429",
			err:         errors.New("request failed with status 429"),
			rateLimited: true,
		},
		{
			name:        "json-rpc code 429",
			err:         errors.New("rpc error: code 429"),
			rateLimited: true,
		},
		{
			name: "plain transport error",
			err:  errors.New("connection reset by peer"),
		},
		{
			name: "block number containing 429",
			err:  errors.New("header not found for block 4290"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.rateLimited, IsRateLimitError(tt.err))
			require.Equal(t, tt.rangeTooLarge, IsRangeTooLargeError(tt.err))
			require.Equal(t, tt.rateLimited || tt.rangeTooLarge, IsRetryableRangeError(tt.err))
		})
	}
}
