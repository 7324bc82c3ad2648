package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus_exchange/internal/config"
	"campus_exchange/pkg/logger"
)

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		MaxFrameBytes:   16 * 1024,
		SendBuffer:      8,
		WriteWait:       time.Second,
		PongWait:        10 * time.Second,
		PingPeriod:      9 * time.Second,
		FramesPerSecond: 100,
		FrameBurst:      100,
		MaxPageSize:     100,
	}
}

// drain returns every frame queued for c without blocking.
func drain(t *testing.T, c *Client) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for {
		select {
		case b := <-c.send:
			var m map[string]interface{}
			require.NoError(t, json.Unmarshal(b, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func TestRegistryAdmitRemove(t *testing.T) {
	r := NewRegistry(logger.Nop())
	cfg := testChatConfig()
	a := NewClient(nil, "a", cfg)
	b := NewClient(nil, "b", cfg)

	r.Admit("k", a)
	r.Admit("k", b)
	assert.Equal(t, 2, r.Members("k"))
	assert.Equal(t, 1, r.Groups())

	assert.True(t, r.Remove("k", a))
	assert.False(t, r.Remove("k", a))
	assert.Equal(t, 1, r.Members("k"))

	assert.True(t, r.Remove("k", b))
	assert.Equal(t, 0, r.Groups(), "empty groups are deleted")
}

func TestRegistryBroadcastExcludes(t *testing.T) {
	r := NewRegistry(logger.Nop())
	cfg := testChatConfig()
	a := NewClient(nil, "a", cfg)
	b := NewClient(nil, "b", cfg)
	other := NewClient(nil, "c", cfg)
	r.Admit("k", a)
	r.Admit("k", b)
	r.Admit("other", other)

	n, err := r.Broadcast("k", typingEvent{Typing: true, User: "a"}, a)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Empty(t, drain(t, a))
	assert.Empty(t, drain(t, other))
	frames := drain(t, b)
	require.Len(t, frames, 1)
	assert.Equal(t, true, frames[0]["typing"])
	assert.Equal(t, "a", frames[0]["user"])

	n, err = r.Broadcast("k", deleteEvent{DeleteMessage: 9}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, drain(t, a), 1)
	assert.Len(t, drain(t, b), 1)
}

func TestRegistryDropsSlowAndClosedClients(t *testing.T) {
	r := NewRegistry(logger.Nop())
	cfg := testChatConfig()
	cfg.SendBuffer = 1
	fast := NewClient(nil, "fast", cfg)
	slow := NewClient(nil, "slow", cfg)
	closed := NewClient(nil, "closed", cfg)
	r.Admit("k", fast)
	r.Admit("k", slow)
	r.Admit("k", closed)

	closed.Close(1000, "")
	require.True(t, slow.enqueue([]byte(`{}`)))

	n, err := r.Broadcast("k", deleteEvent{DeleteMessage: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, r.Members("k"))
	assert.False(t, slow.Open())
	assert.True(t, fast.Open())
}

func TestRegistryUserConnectionsAndShutdown(t *testing.T) {
	r := NewRegistry(logger.Nop())
	cfg := testChatConfig()
	a1 := NewClient(nil, "a", cfg)
	a2 := NewClient(nil, "a", cfg)
	b := NewClient(nil, "b", cfg)
	r.Admit("k1", a1)
	r.Admit("k2", a2)
	r.Admit("k1", b)

	assert.Equal(t, 2, r.UserConnections("a"))
	assert.Equal(t, 1, r.UserConnections("b"))
	assert.Equal(t, 0, r.UserConnections("nobody"))

	r.Shutdown()
	assert.Equal(t, 0, r.Groups())
	assert.False(t, a1.Open())
	assert.False(t, b.Open())
}
