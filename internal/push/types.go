package push

// Message is a push notification addressed to one device token.
type Message struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Ticket statuses reported per message by the push service.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Error codes reported inside a ticket's details.
const (
	ErrDeviceNotRegistered = "DeviceNotRegistered"
)

// Ticket is the per-message delivery status returned by the push
// service.
type Ticket struct {
	Status  string `json:"status"` // ok | error
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

// OK reports whether the ticket records a successful delivery handoff.
func (t *Ticket) OK() bool { return t.Status == StatusOK }

// DeviceNotRegistered reports whether the push service flagged the
// target device token as stale.
func (t *Ticket) DeviceNotRegistered() bool {
	return t.Status == StatusError && t.Details.Error == ErrDeviceNotRegistered
}
