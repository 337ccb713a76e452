package models

import "time"

// Session is either AbsentSession or ActiveSession.
type Session interface {
	isSession()
}

type AbsentSession struct{}

// ActiveSession is one signed-in token. A zero ExpiresAt means the expiry is
// unknown.
type ActiveSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"-"`
}

func (AbsentSession) isSession() {}

func (ActiveSession) isSession() {}

func ActiveOf(s Session) (ActiveSession, bool) {
	active, ok := s.(ActiveSession)
	return active, ok
}
