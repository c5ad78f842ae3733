package camunda

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trendmine/internal/common/config"
	"trendmine/internal/common/errors"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"rpc error: code = NotFound desc = job not found", false},
		{"rpc error: code = PermissionDenied", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isRetryableZeebeError(stderrors.New(tt.err)), tt.err)
	}
}

func TestMapZeebeError(t *testing.T) {
	upstream := mapZeebeError(stderrors.New("connection refused"), "topology", 3)
	assert.Equal(t, errors.ErrCodeUpstreamFailure, upstream.Code)
	assert.Contains(t, upstream.Details, "after 4 attempts")
	assert.True(t, upstream.Retryable)

	denied := mapZeebeError(stderrors.New("rpc error: code = PermissionDenied desc = permission denied"), "topology", 0)
	assert.Equal(t, errors.ErrCodeConfigMissing, denied.Code)
	assert.NotContains(t, denied.Details, "attempts")
}

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, backoff(rc, 0))
	assert.Equal(t, 4*time.Second, backoff(rc, 2))
	assert.Equal(t, 5*time.Second, backoff(rc, 3))
	assert.Equal(t, 5*time.Second, backoff(rc, 70))
}

func TestConfigFrom(t *testing.T) {
	cc := ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500"})
	assert.Equal(t, "zeebe:26500", cc.GatewayAddress)
	assert.Equal(t, 10*time.Second, cc.ConnectionTimeout)
	assert.True(t, cc.UsePlaintextConnection)

	cc = ConfigFrom(config.CamundaConfig{BrokerAddress: "x", RequestTimeout: 2500})
	assert.Equal(t, 2500*time.Millisecond, cc.ConnectionTimeout)
}
