// Package eventbus dispatches in-process domain events to subscribers whose
// function signature matches the published arguments.
package eventbus

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/aquaops/pond-miniapp/pkg/serrors"
)

type EventBus interface {
	Publish(args ...any)
	PublishE(args ...any) error
	Subscribe(handler any)
	Unsubscribe(handler any)
	Clear()
	SubscribersCount() int
}

var (
	ErrNoSubscribers        = serrors.NewError("EVENTBUS_NO_SUBSCRIBERS", "no matching subscribers", "")
	ErrInvalidHandlerReturn = serrors.NewError("EVENTBUS_INVALID_HANDLER_RETURN", "invalid handler return signature", "")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type subscriber struct {
	fn reflect.Value
}

type bus struct {
	log *logrus.Logger

	mu          sync.RWMutex
	subscribers []subscriber
}

// NewEventPublisher returns a bus safe for concurrent use. A nil logger
// silences panic and no-subscriber reports.
func NewEventPublisher(log *logrus.Logger) EventBus {
	return &bus{log: log}
}

// MatchSignature reports whether handler can be called with args.
func MatchSignature(handler any, args []any) bool {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func || t.NumIn() != len(args) {
		return false
	}
	for i, arg := range args {
		param := t.In(i)
		if arg == nil {
			switch param.Kind() {
			case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func:
				continue
			}
			return false
		}
		if !reflect.TypeOf(arg).AssignableTo(param) {
			return false
		}
	}
	return true
}

func (b *bus) matching(args []any) []subscriber {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []subscriber
	for _, s := range b.subscribers {
		if MatchSignature(s.fn.Interface(), args) {
			out = append(out, s)
		}
	}
	return out
}

func values(fn reflect.Value, args []any) []reflect.Value {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(fn.Type().In(i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}
	return in
}

// call invokes one subscriber, converting a panic into an error.
func call(s subscriber, args []any) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eventbus: handler %s panicked: %v", s.fn.Type(), r)
		}
	}()
	return s.fn.Call(values(s.fn, args)), nil
}

// Publish delivers args to every matching subscriber. Panics are logged and
// do not stop delivery to the remaining subscribers.
func (b *bus) Publish(args ...any) {
	handled := false
	for _, s := range b.matching(args) {
		if _, err := call(s, args); err != nil {
			if b.log != nil {
				b.log.WithField("args", fmt.Sprintf("%v", args)).Error(err.Error())
			}
			continue
		}
		handled = true
	}
	if !handled && b.log != nil {
		b.log.Warnf("eventbus.Publish: no matching subscribers for event with args: %v", args)
	}
}

// PublishE is Publish that collects handler errors and panics.
func (b *bus) PublishE(args ...any) error {
	subs := b.matching(args)
	if len(subs) == 0 {
		return ErrNoSubscribers
	}
	var errs []error
	for _, s := range subs {
		out, err := call(s, args)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		switch {
		case len(out) == 0:
		case len(out) == 1 && out[0].Type() == errorType:
			if !out[0].IsNil() {
				errs = append(errs, out[0].Interface().(error))
			}
		default:
			errs = append(errs, fmt.Errorf("%w: handler %s", ErrInvalidHandlerReturn, s.fn.Type()))
		}
	}
	return errors.Join(errs...)
}

func (b *bus) Subscribe(handler any) {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		panic("handler must be a function")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, subscriber{fn: v})
}

// Unsubscribe removes the first subscriber sharing handler's code pointer.
// Closures created from the same literal are indistinguishable.
func (b *bus) Unsubscribe(handler any) {
	ptr := reflect.ValueOf(handler).Pointer()
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subscribers {
		if s.fn.Pointer() == ptr {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

func (b *bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = nil
}

func (b *bus) SubscribersCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
