package websocket

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBufferedClient создает клиента без соединения: сообщения остаются в канале send
func newBufferedClient(size int) *Client {
	return &Client{SessionID: "s1", ConnectionID: "c1", send: make(chan []byte, size)}
}

func nextEvent(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case msg := <-c.send:
		var ev map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	default:
		t.Fatal("ожидалось сообщение в очереди")
		return nil
	}
}

func TestRouter_DispatchesByType(t *testing.T) {
	r := NewRouter()
	var got struct {
		Choice int `json:"choice"`
	}
	r.RegisterHandler(MsgSelect, func(data json.RawMessage, client *Client) error {
		return json.Unmarshal(data, &got)
	})

	err := r.HandleMessage([]byte(`{"type":"select","data":{"choice":2}}`), newBufferedClient(1))

	require.NoError(t, err)
	assert.Equal(t, 2, got.Choice)
}

func TestRouter_UnknownTypeKeepsConnection(t *testing.T) {
	r := NewRouter()
	c := newBufferedClient(1)

	err := r.HandleMessage([]byte(`{"type":"jump"}`), c)

	require.NoError(t, err)
	ev := nextEvent(t, c)
	assert.Equal(t, EventSessionError, ev["type"])
	assert.Equal(t, "unknown_message_type", ev["data"].(map[string]interface{})["code"])
}

func TestRouter_InvalidJSON(t *testing.T) {
	r := NewRouter()
	c := newBufferedClient(1)

	require.NoError(t, r.HandleMessage([]byte(`{not json`), c))

	ev := nextEvent(t, c)
	assert.Equal(t, "invalid_message_format", ev["data"].(map[string]interface{})["code"])
}

func TestRouter_HandlerErrorIsReturned(t *testing.T) {
	r := NewRouter()
	boom := errors.New("boom")
	r.RegisterHandler(MsgAdvance, func(json.RawMessage, *Client) error { return boom })

	err := r.HandleMessage([]byte(`{"type":"advance"}`), newBufferedClient(1))

	assert.ErrorIs(t, err, boom)
}

func TestClient_SendEventBuffer(t *testing.T) {
	c := newBufferedClient(1)

	require.NoError(t, c.SendEvent(EventHeartbeat, nil))
	assert.ErrorIs(t, c.SendEvent(EventHeartbeat, nil), ErrSendBufferFull)

	assert.True(t, c.CloseSend())
	assert.False(t, c.CloseSend(), "повторное закрытие ничего не делает")
	assert.ErrorIs(t, c.SendEvent(EventHeartbeat, nil), ErrSendClosed)
}

func TestSafeHandleMessage_RecoversPanic(t *testing.T) {
	err := safeHandleMessage([]byte("x"), newBufferedClient(1), func([]byte, *Client) error {
		panic("oops")
	})

	assert.Error(t, err)
}
