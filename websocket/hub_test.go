package websocket

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	mu     sync.Mutex
	fail   bool
	got    []interface{}
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.got = append(f.got, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestPushReachesEverySocketOfUser(t *testing.T) {
	hub := NewHub()
	user, other := uuid.New(), uuid.New()
	phone, laptop, stranger := &fakeConn{}, &fakeConn{}, &fakeConn{}
	hub.Register(user, phone)
	hub.Register(user, laptop)
	hub.Register(other, stranger)

	assert.True(t, hub.Push(user, "hello"))
	assert.Equal(t, []interface{}{"hello"}, phone.got)
	assert.Equal(t, []interface{}{"hello"}, laptop.got)
	assert.Empty(t, stranger.got)
}

func TestPushDropsBrokenSockets(t *testing.T) {
	hub := NewHub()
	user := uuid.New()
	good, bad := &fakeConn{}, &fakeConn{fail: true}
	hub.Register(user, good)
	hub.Register(user, bad)

	assert.True(t, hub.Push(user, 1))
	assert.True(t, bad.closed)
	assert.Equal(t, 1, hub.Connections(user))

	hub.Unregister(user, good)
	assert.Zero(t, hub.Connections(user))
	assert.False(t, hub.Push(user, 2))
}

func TestUnregisterUnknownIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Unregister(uuid.New(), &fakeConn{})
}
