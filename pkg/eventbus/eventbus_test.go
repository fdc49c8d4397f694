package eventbus

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitted struct {
	variant string
}

type failed struct {
	variant string
}

func bufferedLogger(level logrus.Level) (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(level)
	return log, buf
}

func TestPublish_DeliversToMatchingSubscribers(t *testing.T) {
	bus := NewEventPublisher(nil)
	var got []string
	bus.Subscribe(func(e *submitted) { got = append(got, "submitted:"+e.variant) })
	bus.Subscribe(func(e *failed) { got = append(got, "failed:"+e.variant) })

	bus.Publish(&submitted{variant: "sales"})
	assert.Equal(t, []string{"submitted:sales"}, got)
}

func TestPublish_NoSubscribersIsLogged(t *testing.T) {
	log, buf := bufferedLogger(logrus.WarnLevel)
	bus := NewEventPublisher(log)
	bus.Subscribe(func(e *failed) { t.Error("should not be called") })

	bus.Publish(&submitted{variant: "main"})
	assert.Contains(t, buf.String(), "eventbus.Publish: no matching subscribers")
}

func TestPublish_PanicDoesNotStopDelivery(t *testing.T) {
	log, buf := bufferedLogger(logrus.ErrorLevel)
	bus := NewEventPublisher(log)
	called := false
	bus.Subscribe(func(e *submitted) { panic("boom") })
	bus.Subscribe(func(e *submitted) { called = true })

	bus.Publish(&submitted{variant: "main"})
	assert.True(t, called)
	assert.Contains(t, buf.String(), "panicked")
}

func TestPublishE(t *testing.T) {
	t.Run("no subscribers", func(t *testing.T) {
		err := NewEventPublisher(nil).PublishE(&submitted{})
		require.ErrorIs(t, err, ErrNoSubscribers)
	})

	t.Run("joins handler errors", func(t *testing.T) {
		bus := NewEventPublisher(nil)
		err1, err2 := errors.New("err1"), errors.New("err2")
		bus.Subscribe(func(e *submitted) error { return err1 })
		bus.Subscribe(func(e *submitted) error { return err2 })
		bus.Subscribe(func(e *submitted) error { return nil })

		err := bus.PublishE(&submitted{})
		require.ErrorIs(t, err, err1)
		require.ErrorIs(t, err, err2)
	})

	t.Run("invalid return", func(t *testing.T) {
		bus := NewEventPublisher(nil)
		bus.Subscribe(func(e *submitted) int { return 1 })
		require.ErrorIs(t, bus.PublishE(&submitted{}), ErrInvalidHandlerReturn)
	})

	t.Run("panic surfaces as error", func(t *testing.T) {
		bus := NewEventPublisher(nil)
		bus.Subscribe(func(e *submitted) error { panic("boom") })
		require.Error(t, bus.PublishE(&submitted{}))
	})
}

func TestMatchSignature(t *testing.T) {
	assert.True(t, MatchSignature(func(e *submitted) {}, []any{&submitted{}}))
	assert.False(t, MatchSignature(func(e *submitted) {}, []any{&failed{}}))
	assert.False(t, MatchSignature(func(e *submitted) {}, nil))
	assert.True(t, MatchSignature(func(ctx context.Context, e *submitted) {}, []any{context.Background(), &submitted{}}))
	assert.True(t, MatchSignature(func(e *submitted) {}, []any{nil}))
	assert.False(t, MatchSignature("not a func", nil))
}

func TestSubscribeUnsubscribeClear(t *testing.T) {
	bus := NewEventPublisher(nil)
	h := func(e *submitted) {}
	bus.Subscribe(h)
	bus.Subscribe(func(e *failed) {})
	require.Equal(t, 2, bus.SubscribersCount())

	bus.Unsubscribe(h)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Clear()
	require.Equal(t, 0, bus.SubscribersCount())

	assert.Panics(t, func() { bus.Subscribe(42) })
}

func TestPublish_Concurrent(t *testing.T) {
	bus := NewEventPublisher(nil)
	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(e *submitted) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(&submitted{})
			bus.Subscribe(func(e *failed) {})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, count)
}
