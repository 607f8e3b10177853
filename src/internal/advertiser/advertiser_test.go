package advertiser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnregisterWithoutRegisterIsNoop(t *testing.T) {
	a := New()
	assert.NotPanics(t, func() { a.Unregister() })
}

func TestNotifyCollisionDeliversLatest(t *testing.T) {
	a := New()
	a.NotifyCollision("first")
	a.NotifyCollision("second")

	got := <-a.Collisions()
	assert.Equal(t, "second", got)
}

func TestNotifyCollisionNonBlocking(t *testing.T) {
	a := New()
	done := make(chan struct{})
	go func() {
		a.NotifyCollision("x")
		close(done)
	}()
	<-done // must not block forever even with no reader yet
}
