package trace

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRequestID(t *testing.T) {
	t.Run("reuses existing", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-1")
		_, id := EnsureRequestID(ctx)
		assert.Equal(t, "req-1", id)
	})

	t.Run("generates when missing", func(t *testing.T) {
		ctx, id := EnsureRequestID(context.Background())
		re := regexp.MustCompile(`^[a-f0-9\-]{36}$`)
		assert.True(t, re.MatchString(id))

		stored, ok := RequestIDFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, id, stored)
	})

	t.Run("empty id is treated as missing", func(t *testing.T) {
		_, ok := RequestIDFromContext(WithRequestID(context.Background(), ""))
		assert.False(t, ok)
	})
}

func TestGenerateTraceParentFormat(t *testing.T) {
	tp := GenerateTraceParent()
	parts := strings.Split(tp, "-")
	require.Len(t, parts, 4)
	assert.Equal(t, "00", parts[0])
	assert.Len(t, parts[1], 32)
	assert.Len(t, parts[2], 16)
	assert.Equal(t, "01", parts[3])
	assert.NotEqual(t, strings.Repeat("0", 32), parts[1])
}

func TestInject(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-9")
	ctx = WithTraceParent(ctx, "00-0123456789abcdef0123456789abcdef-0123456789abcdef-01")

	t.Run("default header", func(t *testing.T) {
		h := http.Header{}
		Inject(ctx, h, "")
		assert.Equal(t, "req-9", h.Get(HeaderXRequestID))
		assert.Equal(t, "00-0123456789abcdef0123456789abcdef-0123456789abcdef-01", h.Get(HeaderTraceParent))
	})

	t.Run("custom header", func(t *testing.T) {
		h := http.Header{}
		Inject(ctx, h, "X-Correlation-ID")
		assert.Equal(t, "req-9", h.Get("X-Correlation-ID"))
		assert.Empty(t, h.Get(HeaderXRequestID))
	})

	t.Run("existing values win", func(t *testing.T) {
		h := http.Header{}
		h.Set(HeaderXRequestID, "caller")
		Inject(ctx, h, "")
		assert.Equal(t, "caller", h.Get(HeaderXRequestID))
	})

	t.Run("nothing on context", func(t *testing.T) {
		h := http.Header{}
		Inject(context.Background(), h, "")
		assert.Empty(t, h)
	})
}
