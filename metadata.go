package linkpreview

// Metadata is the enriched preview for a URL. Callers always receive a value
// copy; entries held by the cache are never shared by reference.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Favicon     string `json:"favicon"`
	Domain      string `json:"domain"`
	ChannelPage bool   `json:"channelPage,omitempty"`
}

// Source says which layer produced a Result.
type Source uint8

const (
	SourceNone Source = iota
	SourceMemory
	SourceStore
	SourceRemote
)

func (s Source) String() string {
	switch s {
	case SourceMemory:
		return "memory"
	case SourceStore:
		return "store"
	case SourceRemote:
		return "remote"
	default:
		return "none"
	}
}

// Result is the outcome of a Resolve call. Exactly one of three states holds:
//
//	OK            - Meta is valid, Source says which layer served it.
//	!OK, Err==nil - no preview available (plain miss).
//	!OK, Err!=nil - the fetch failed; Err carries the reason.
//
// No state is ever delivered as a Go error to consumers: a missing preview is
// a degraded render, not a failure of the host application.
type Result struct {
	Meta   Metadata
	OK     bool
	Source Source
	Err    error
}
