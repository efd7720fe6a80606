package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var calls []string
	bus.OnTransition(func(ev Event) { calls = append(calls, "first:"+string(ev.Kind)) })
	bus.OnTransition(func(ev Event) { calls = append(calls, "second:"+string(ev.Kind)) })

	bus.Publish(Event{Kind: KindSubmitted, StudentID: "s1"})
	bus.Publish(Event{Kind: KindApproved, StudentID: "s1"})

	assert.Equal(t, []string{
		"first:submitted", "second:submitted",
		"first:approved", "second:approved",
	}, calls)
}

func TestBus_PanickingObserverIsIsolated(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var delivered []Kind
	bus.OnTransition(func(Event) { panic("observer bug") })
	bus.OnTransition(func(ev Event) { delivered = append(delivered, ev.Kind) })

	assert.NotPanics(t, func() {
		bus.Publish(Event{Kind: KindRejected})
	})
	assert.Equal(t, []Kind{KindRejected}, delivered)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	count := 0
	unsubscribe := bus.OnTransition(func(Event) { count++ })
	keep := bus.OnTransition(func(Event) {})
	assert.Equal(t, 2, bus.Len())

	bus.Publish(Event{Kind: KindSubmitted})
	unsubscribe()
	unsubscribe()
	bus.Publish(Event{Kind: KindSubmitted})

	assert.Equal(t, 1, count)
	assert.Equal(t, 1, bus.Len())
	keep()
	assert.Equal(t, 0, bus.Len())
}

func TestBus_PublishWithoutObservers(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	assert.NotPanics(t, func() { bus.Publish(Event{Kind: KindPDFGenerated}) })

	var p Publisher = Nop{}
	assert.NotPanics(t, func() { p.Publish(Event{}) })
}
