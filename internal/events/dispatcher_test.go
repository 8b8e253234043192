package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/travel-community/internal/events"
)

func TestDispatcher_DeliversToEverySubscriber(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	var got []string
	d.Subscribe(events.EventUserBlocked, func(_ context.Context, e events.Event) error {
		got = append(got, "first:"+e.UserID)
		return errors.New("mail down")
	})
	d.Subscribe(events.EventUserBlocked, func(_ context.Context, e events.Event) error {
		got = append(got, "second:"+e.UserID)
		return nil
	})
	d.Subscribe(events.EventUserUnblocked, func(_ context.Context, e events.Event) error {
		got = append(got, "unexpected")
		return nil
	})

	err := d.Publish(context.Background(), events.Event{Type: events.EventUserBlocked, UserID: "u1"})

	assert.EqualError(t, err, "mail down")
	assert.Equal(t, []string{"first:u1", "second:u1"}, got)
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	d := events.NewInMemoryDispatcher()

	assert.NoError(t, d.Publish(context.Background(), events.Event{Type: events.EventUserVerified}))
}
