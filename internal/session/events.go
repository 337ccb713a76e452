package session

const (
	EventState     = "state"
	EventSignedOut = "signed_out"
)

// Event is pushed to every live connection of a user after a commit.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	State     *View  `json:"state,omitempty"`
}

type Publisher interface {
	Publish(userID string, event Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, Event) {}
