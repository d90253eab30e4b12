package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatusFromCode(t *testing.T) {
	cases := map[int]int{
		CodeSuccess:           200,
		CodeInvalidParameter:  400,
		CodeInvalidToken:      401,
		CodeRateLimit:         429,
		CodeInsufficientPerms: 403,
		CodeDuplicateJob:      409,
		CodeBadGateway:        502,
		CodeUpstreamError:     502,
		CodeRedisUnavailable:  503,
		CodeUpstreamTimeout:   504,
		12345:                 500,
	}
	for code, want := range cases {
		assert.Equal(t, want, GetHTTPStatusFromCode(code), "code %d", code)
	}
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "Loki returned an error", GetErrorMessage(CodeUpstreamError))
	assert.Equal(t, "Unknown error", GetErrorMessage(-1))
}
