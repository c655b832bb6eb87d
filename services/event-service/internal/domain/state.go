package domain

import "fmt"

type EventState string

const (
	StatePending   EventState = "PENDING"
	StatePublished EventState = "PUBLISHED"
	StateCanceled  EventState = "CANCELED"
)

func (s EventState) Valid() bool {
	return s == StatePending || s == StatePublished || s == StateCanceled
}

func ParseEventState(v string) (EventState, error) {
	s := EventState(v)
	if !s.Valid() {
		return "", ErrValidationMeta("invalid state", map[string]string{
			"state": "must be one of: PENDING, PUBLISHED, CANCELED",
		})
	}
	return s, nil
}

// StateAction is a command that moves an event between states.
// The two implementations split owner commands from admin commands so a
// handler cannot hand an admin-only action to the owner path.
type StateAction interface {
	fmt.Stringer
	next(from EventState) (EventState, bool)
}

type UserStateAction string

const (
	ActionSendToReview UserStateAction = "SEND_TO_REVIEW"
	ActionCancelReview UserStateAction = "CANCEL_REVIEW"
)

func (a UserStateAction) String() string { return string(a) }

func (a UserStateAction) next(from EventState) (EventState, bool) {
	if from != StatePending {
		return from, false
	}
	switch a {
	case ActionSendToReview:
		return StatePending, true
	case ActionCancelReview:
		return StateCanceled, true
	}
	return from, false
}

type AdminStateAction string

const (
	ActionPublishEvent AdminStateAction = "PUBLISH_EVENT"
	ActionRejectEvent  AdminStateAction = "REJECT_EVENT"
)

func (a AdminStateAction) String() string { return string(a) }

func (a AdminStateAction) next(from EventState) (EventState, bool) {
	if from != StatePending {
		return from, false
	}
	switch a {
	case ActionPublishEvent:
		return StatePublished, true
	case ActionRejectEvent:
		return StateCanceled, true
	}
	return from, false
}

func ParseUserStateAction(v string) (UserStateAction, error) {
	a := UserStateAction(v)
	if a != ActionSendToReview && a != ActionCancelReview {
		return "", ErrValidationMeta("invalid state action", map[string]string{
			"stateAction": "must be one of: SEND_TO_REVIEW, CANCEL_REVIEW",
		})
	}
	return a, nil
}

func ParseAdminStateAction(v string) (AdminStateAction, error) {
	a := AdminStateAction(v)
	if a != ActionPublishEvent && a != ActionRejectEvent {
		return "", ErrValidationMeta("invalid state action", map[string]string{
			"stateAction": "must be one of: PUBLISH_EVENT, REJECT_EVENT",
		})
	}
	return a, nil
}

// Apply returns the state reached by running action from s.
// Only PENDING has outgoing edges; everything else is a Conflict.
func (s EventState) Apply(action StateAction) (EventState, error) {
	to, ok := action.next(s)
	if !ok {
		return s, ErrConflict(fmt.Sprintf("cannot %s an event in state %s", action, s))
	}
	return to, nil
}
