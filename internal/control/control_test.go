package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reemap/internal/ruleset"
)

type recordingSubscriber struct {
	events chan interface{}
}

func newRecordingSubscriber() *recordingSubscriber {
	return &recordingSubscriber{events: make(chan interface{}, 8)}
}

func (r *recordingSubscriber) Notify(event interface{}) { r.events <- event }

func TestHubFansOutToRegisteredSubscribers(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	sub := newRecordingSubscriber()
	h.Register(sub)

	h.Publish(ProfileChanged{Profile: ProfileRef{Index: 1, Name: "Game"}})

	select {
	case e := <-sub.events:
		assert.Equal(t, ProfileChanged{Profile: ProfileRef{Index: 1, Name: "Game"}}, e)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}
}

func TestHubStopsNotifyingAfterUnregister(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	sub := newRecordingSubscriber()
	h.Register(sub)
	h.Unregister(sub)

	h.Publish(ProfileChanged{})

	select {
	case <-sub.events:
		t.Fatal("unregistered subscriber should not receive events")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRequestUpdateDeliversOnUpdatesChannel(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	r := ruleset.Ruleset{Profiles: []ruleset.Profile{ruleset.NewProfile("P")}}
	h.RequestUpdate(r)

	select {
	case u := <-h.Updates:
		require.Len(t, u.Ruleset.Profiles, 1)
		assert.Equal(t, "P", u.Ruleset.Profiles[0].Name)
	case <-time.After(time.Second):
		t.Fatal("update never arrived")
	}
}

func TestRequestUpdateQueuesWithoutBlockingBeforeRunStarts(t *testing.T) {
	h := NewHub()

	for i := 0; i < 32; i++ {
		h.RequestUpdate(ruleset.Ruleset{Profiles: []ruleset.Profile{ruleset.NewProfile("P")}})
	}

	go h.Run()
	defer h.Stop()

	for i := 0; i < 32; i++ {
		select {
		case <-h.Updates:
		case <-time.After(time.Second):
			t.Fatalf("update %d never arrived, queue lost an entry", i)
		}
	}
}

func TestRequestQuitDeliversOnQuitsChannel(t *testing.T) {
	h := NewHub()
	h.RequestQuit()

	select {
	case <-h.Quits:
	case <-time.After(time.Second):
		t.Fatal("quit never arrived")
	}
}
