package ports

// Window notification names.
const (
	EventPopState       = "popstate"
	EventLocationChange = "locationchange"
	EventClick          = "click"
)

// Dimensions is a width/height pair in CSS pixels.
type Dimensions struct {
	Width  int
	Height int
}

// HistoryFunc performs a history mutation.
type HistoryFunc func(state any, title, url string)

// History is the host's session history.
// PushState and ReplaceState dispatch through the functions returned by the
// matching getters so an observer can decorate them.
type History interface {
	PushState(state any, title, url string)
	ReplaceState(state any, title, url string)

	PushStateFunc() HistoryFunc
	SetPushStateFunc(fn HistoryFunc)
	ReplaceStateFunc() HistoryFunc
	SetReplaceStateFunc(fn HistoryFunc)
}

// Window is the host page.
type Window interface {
	// Href returns the current absolute URL.
	Href() string

	// Referrer returns the document referrer.
	Referrer() string

	Screen() Dimensions
	Viewport() Dimensions
	History() History

	AddEventListener(event string, l *Listener)
	RemoveEventListener(event string, l *Listener)

	// DispatchEvent synchronously invokes the listeners registered for event.
	DispatchEvent(event string, payload any)
}

// Element is a click target. Serializing the element is the host's job.
type Element interface {
	// Describe returns the element path used as the click identifier.
	Describe() string

	// TextContent returns the visible text of the element.
	TextContent() string
}
