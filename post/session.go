package post

import (
	"errors"
	"fmt"
)

// State is the conversation state of one session.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateEditing
	StateReadyToPublish
	StatePublishing
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateEditing:
		return "editing"
	case StateReadyToPublish:
		return "ready_to_publish"
	case StatePublishing:
		return "publishing"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

var (
	ErrNotCollecting = errors.New("session is not collecting input")
	ErrNotReady      = errors.New("session is not ready to publish")
)

// Session holds one user's conversation progress and collected values.
// Sessions are memory-resident only and never shared between users; each
// message for a user is handled to completion before the next.
type Session struct {
	UserID    int64
	State     State
	Step      int
	EditField string
	Values    map[string]Value
	// Draft holds a suggested review pending /accept.
	Draft string
}

// NewSession creates an idle session for the user.
func NewSession(userID int64) *Session {
	return &Session{
		UserID: userID,
		State:  StateIdle,
		Values: make(map[string]Value),
	}
}

// Start discards any collected values and begins collection from the first
// field. Returns the field to prompt for.
func (s *Session) Start() *FieldSpec {
	s.State = StateCollecting
	s.Step = 0
	s.EditField = ""
	s.Draft = ""
	s.Values = make(map[string]Value)
	return &Fields[0]
}

// Current returns the field the session is asking for, or nil when it is not
// collecting or editing.
func (s *Session) Current() *FieldSpec {
	switch s.State {
	case StateCollecting:
		if s.Step < len(Fields) {
			return &Fields[s.Step]
		}
	case StateEditing:
		if f, ok := FieldByName(s.EditField); ok {
			return f
		}
	}
	return nil
}

// InputResult is the outcome of feeding one text message into the machine.
type InputResult struct {
	// Next is the field to prompt for, nil when collection finished.
	Next *FieldSpec
	// Complete reports that the session reached ReadyToPublish.
	Complete bool
	// Err is set when the input was rejected; state and values are unchanged.
	Err *ValidationError
}

// Input feeds one user message into the state machine. Valid input advances
// the machine (or finishes an edit); invalid input leaves the step and the
// stored value untouched and carries the reprompt reason.
func (s *Session) Input(raw string) (InputResult, error) {
	switch s.State {
	case StateCollecting:
		spec := &Fields[s.Step]
		v, verr := spec.Validate(raw)
		if verr != nil {
			return InputResult{Err: verr}, nil
		}
		s.Values[spec.Name] = v
		s.Draft = ""
		s.Step++
		if s.Step >= len(Fields) {
			s.State = StateReadyToPublish
			return InputResult{Complete: true}, nil
		}
		return InputResult{Next: &Fields[s.Step]}, nil
	case StateEditing:
		spec, ok := FieldByName(s.EditField)
		if !ok {
			return InputResult{}, fmt.Errorf("unknown edit field %q", s.EditField)
		}
		v, verr := spec.Validate(raw)
		if verr != nil {
			return InputResult{Err: verr}, nil
		}
		s.Values[spec.Name] = v
		s.EditField = ""
		s.State = StateReadyToPublish
		return InputResult{Complete: true}, nil
	default:
		return InputResult{}, ErrNotCollecting
	}
}

// AcceptDraft feeds the pending suggested review into the machine as if the
// user had typed it.
func (s *Session) AcceptDraft() (InputResult, error) {
	if s.Draft == "" {
		return InputResult{}, errors.New("no suggested draft to accept")
	}
	draft := s.Draft
	s.Draft = ""
	return s.Input(draft)
}

// BeginEdit moves a ready session into editing of one field.
func (s *Session) BeginEdit(field string) (*FieldSpec, error) {
	if s.State != StateReadyToPublish {
		return nil, ErrNotReady
	}
	spec, ok := FieldByName(field)
	if !ok {
		return nil, fmt.Errorf("unknown field %q", field)
	}
	s.State = StateEditing
	s.EditField = spec.Name
	return spec, nil
}

// BeginPublish moves a ready session into Publishing. The caller must follow
// up with FinishPublish.
func (s *Session) BeginPublish() error {
	if s.State != StateReadyToPublish {
		return ErrNotReady
	}
	s.State = StatePublishing
	return nil
}

// FinishPublish records the publish outcome. Failure returns the session to
// ReadyToPublish with every value intact so the user can retry or edit;
// success leaves it cancelled (the store drops it).
func (s *Session) FinishPublish(ok bool) {
	if ok {
		s.State = StateCancelled
		return
	}
	s.State = StateReadyToPublish
}

// Cancel discards the session. The store removes cancelled sessions, which
// is the transition back to Idle.
func (s *Session) Cancel() {
	s.State = StateCancelled
	s.EditField = ""
	s.Draft = ""
}

// Complete reports whether every schema field holds a validated value.
func (s *Session) Complete() bool {
	return NextUnfilled(s.Values) == nil
}
