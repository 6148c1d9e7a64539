package domain

// Event identifies the kind of observation carried by an [Envelope].
type Event string

const (
	EventPage                 Event = "PAGE"
	EventConnect              Event = "CONNECT"
	EventDisconnect           Event = "DISCONNECT"
	EventChainChanged         Event = "CHAIN_CHANGED"
	EventTransactionSubmitted Event = "TRANSACTION_SUBMITTED"
	EventTransactionTriggered Event = "TRANSACTION_TRIGGERED"
	EventSigningTriggered     Event = "SIGNING_TRIGGERED"
	EventClick                Event = "CLICK"
	EventCustom               Event = "CUSTOM_EVENT"
)

// String returns the wire representation of the event tag.
func (e Event) String() string { return string(e) }

// Attributes is the free-form payload of an event. Values must be
// JSON-serializable; nested maps are delivered as-is.
type Attributes map[string]any

// Clone returns a shallow copy of the attributes. Nested values are shared.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Envelope is the canonical record sent to the collector.
// Attributes are nested under their own key so they can never shadow the
// envelope fields.
type Envelope struct {
	Event       Event      `json:"event"`
	Attributes  Attributes `json:"attributes"`
	URL         string     `json:"url"`
	LibraryType string     `json:"libraryType,omitempty"`
}

// LogLevel is the severity of an SDK diagnostic report.
type LogLevel string

const (
	LogLevelError   LogLevel = "error"
	LogLevelWarning LogLevel = "warning"
)
