package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tt, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return tt.UTC()
}

func validDraft(eventDate time.Time) Draft {
	return Draft{
		Annotation:        strings.Repeat("a", 25),
		Description:       strings.Repeat("d", 40),
		Title:             "Rooftop Jazz",
		CategoryID:        3,
		Location:          Location{Lat: 55.75, Lon: 37.61},
		EventDate:         eventDate,
		ParticipantLimit:  10,
		RequestModeration: true,
	}
}

func codeOf(t *testing.T, err error) ErrCode {
	t.Helper()
	require.Error(t, err)
	return CodeOf(err)
}

func TestNewEvent_EventDateLeadTime(t *testing.T) {
	now := mustTime(t, "2025-12-25T10:00:00Z")

	t.Run("119_minutes_fails", func(t *testing.T) {
		_, err := NewEvent(1, validDraft(now.Add(119*time.Minute)), now)
		assert.Equal(t, CodeValidation, codeOf(t, err))
	})

	t.Run("exactly_two_hours_passes", func(t *testing.T) {
		_, err := NewEvent(1, validDraft(now.Add(2*time.Hour)), now)
		assert.NoError(t, err)
	})

	t.Run("121_minutes_passes", func(t *testing.T) {
		e, err := NewEvent(1, validDraft(now.Add(121*time.Minute)), now)
		require.NoError(t, err)
		assert.Equal(t, StatePending, e.State)
		assert.Equal(t, now, e.CreatedOn)
		assert.Nil(t, e.PublishedOn)
		assert.Equal(t, int64(1), e.InitiatorID)
	})

	t.Run("short_annotation_fails", func(t *testing.T) {
		d := validDraft(now.Add(3 * time.Hour))
		d.Annotation = "too short"
		_, err := NewEvent(1, d, now)
		require.Error(t, err)
		assert.Contains(t, err.(*AppError).Meta, "annotation")
	})
}

func TestEventState_Apply(t *testing.T) {
	actions := []StateAction{ActionSendToReview, ActionCancelReview, ActionPublishEvent, ActionRejectEvent}
	want := map[StateAction]EventState{
		ActionSendToReview: StatePending,
		ActionCancelReview: StateCanceled,
		ActionPublishEvent: StatePublished,
		ActionRejectEvent:  StateCanceled,
	}

	for _, a := range actions {
		t.Run("pending_"+a.String(), func(t *testing.T) {
			got, err := StatePending.Apply(a)
			assert.NoError(t, err)
			assert.Equal(t, want[a], got)
		})
	}

	for _, from := range []EventState{StatePublished, StateCanceled} {
		for _, a := range actions {
			t.Run(string(from)+"_"+a.String()+"_conflicts", func(t *testing.T) {
				got, err := from.Apply(a)
				assert.Equal(t, CodeConflict, codeOf(t, err))
				assert.Equal(t, from, got)
			})
		}
	}
}

func TestEvent_UpdateAsOwner(t *testing.T) {
	now := mustTime(t, "2025-12-25T10:00:00Z")
	newEvent := func() *Event {
		e, err := NewEvent(7, validDraft(now.Add(48*time.Hour)), now)
		require.NoError(t, err)
		e.ID = 11
		return e
	}

	t.Run("non_initiator_forbidden", func(t *testing.T) {
		e := newEvent()
		err := e.UpdateAsOwner(8, EventDelta{}, nil, now)
		assert.Equal(t, CodeForbidden, codeOf(t, err))
	})

	// Owners edit before publication and are locked out after it, never the reverse.
	t.Run("edits_blocked_once_published", func(t *testing.T) {
		title := "Renamed event"

		pending := newEvent()
		assert.NoError(t, pending.UpdateAsOwner(7, EventDelta{Title: &title}, nil, now))
		assert.Equal(t, title, pending.Title)

		published := newEvent()
		published.State = StatePublished
		err := published.UpdateAsOwner(7, EventDelta{Title: &title}, nil, now)
		assert.Equal(t, CodeConflict, codeOf(t, err))
		assert.Equal(t, "Rooftop Jazz", published.Title)
	})

	t.Run("partial_update_keeps_absent_fields", func(t *testing.T) {
		e := newEvent()
		before := *e
		paid := true
		require.NoError(t, e.UpdateAsOwner(7, EventDelta{Paid: &paid}, nil, now))
		assert.True(t, e.Paid)
		assert.Equal(t, before.Title, e.Title)
		assert.Equal(t, before.Annotation, e.Annotation)
		assert.Equal(t, before.EventDate, e.EventDate)
		assert.Equal(t, before.Location, e.Location)
	})

	t.Run("location_patch_merges_coordinates", func(t *testing.T) {
		e := newEvent()
		before := e.Location
		lat := 5.0
		require.NoError(t, e.UpdateAsOwner(7, EventDelta{Location: &LocationDelta{Lat: &lat}}, nil, now))
		assert.Equal(t, Location{Lat: 5, Lon: before.Lon}, e.Location)

		lon := -3.0
		err := e.UpdateAsOwner(7, EventDelta{Location: &LocationDelta{Lon: &lon}}, nil, now)
		assert.Equal(t, CodeValidation, codeOf(t, err))
		assert.Equal(t, Location{Lat: 5, Lon: before.Lon}, e.Location)
	})

	t.Run("bad_event_date_changes_nothing", func(t *testing.T) {
		e := newEvent()
		before := *e
		title := "Another title"
		soon := now.Add(time.Hour)
		cancel := ActionCancelReview
		err := e.UpdateAsOwner(7, EventDelta{Title: &title, EventDate: &soon}, &cancel, now)
		assert.Equal(t, CodeValidation, codeOf(t, err))
		assert.Equal(t, before, *e)
	})

	t.Run("cancel_review_cancels", func(t *testing.T) {
		e := newEvent()
		cancel := ActionCancelReview
		require.NoError(t, e.UpdateAsOwner(7, EventDelta{}, &cancel, now))
		assert.Equal(t, StateCanceled, e.State)
	})

	t.Run("send_to_review_from_canceled_conflicts", func(t *testing.T) {
		e := newEvent()
		e.State = StateCanceled
		send := ActionSendToReview
		err := e.UpdateAsOwner(7, EventDelta{}, &send, now)
		assert.Equal(t, CodeConflict, codeOf(t, err))
		assert.Equal(t, StateCanceled, e.State)
	})
}

func TestEvent_UpdateAsAdmin(t *testing.T) {
	created := mustTime(t, "2025-12-25T10:00:00Z")
	now := created.Add(30 * time.Minute)
	newEvent := func() *Event {
		e, err := NewEvent(7, validDraft(created.Add(72*time.Hour)), created)
		require.NoError(t, err)
		return e
	}

	t.Run("event_date_59_minutes_after_creation_fails", func(t *testing.T) {
		e := newEvent()
		d := created.Add(59 * time.Minute)
		err := e.UpdateAsAdmin(EventDelta{EventDate: &d}, nil, now)
		assert.Equal(t, CodeValidation, codeOf(t, err))
	})

	t.Run("event_date_61_minutes_after_creation_passes", func(t *testing.T) {
		e := newEvent()
		d := created.Add(61 * time.Minute)
		require.NoError(t, e.UpdateAsAdmin(EventDelta{EventDate: &d}, nil, now))
		assert.Equal(t, d, e.EventDate)
	})

	t.Run("publish_sets_published_on", func(t *testing.T) {
		e := newEvent()
		pub := ActionPublishEvent
		require.NoError(t, e.UpdateAsAdmin(EventDelta{}, &pub, now))
		assert.Equal(t, StatePublished, e.State)
		require.NotNil(t, e.PublishedOn)
		assert.Equal(t, now, *e.PublishedOn)
	})

	t.Run("second_publish_conflicts", func(t *testing.T) {
		e := newEvent()
		pub := ActionPublishEvent
		require.NoError(t, e.UpdateAsAdmin(EventDelta{}, &pub, now))
		err := e.UpdateAsAdmin(EventDelta{}, &pub, now.Add(time.Minute))
		assert.Equal(t, CodeConflict, codeOf(t, err))
		assert.Equal(t, now, *e.PublishedOn)
	})

	t.Run("reject_cancels_without_publish_time", func(t *testing.T) {
		e := newEvent()
		rej := ActionRejectEvent
		require.NoError(t, e.UpdateAsAdmin(EventDelta{}, &rej, now))
		assert.Equal(t, StateCanceled, e.State)
		assert.Nil(t, e.PublishedOn)
	})

	t.Run("admin_may_edit_published_fields", func(t *testing.T) {
		e := newEvent()
		e.State = StatePublished
		limit := 50
		require.NoError(t, e.UpdateAsAdmin(EventDelta{ParticipantLimit: &limit}, nil, now))
		assert.Equal(t, 50, e.ParticipantLimit)
	})
}

func TestEvent_HasFreeSlots(t *testing.T) {
	e := &Event{ParticipantLimit: 5}
	assert.True(t, e.HasFreeSlots(4))
	assert.False(t, e.HasFreeSlots(5))

	unlimited := &Event{}
	assert.True(t, unlimited.HasFreeSlots(1_000_000))
}
