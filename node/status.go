package node

// Code is one of the status codes surfaced across the node/runtime
// boundary (spec.md §6, §7). It lives in this package, rather than in
// runtime, so that the Node/RuntimeProxy capability interface — and any
// external node implementation depending only on this package — never
// needs to import runtime.
type Code int

const (
	Ok Code = iota
	BadHandle
	InvalidArgs
	ChannelClosed
	PermissionDenied
	Terminated
	Internal

	// ReadReady, NotReady, Orphaned and InvalidChannel extend Code for
	// use as per-entry wait/channel_status results only.
	ReadReady
	NotReady
	Orphaned
	InvalidChannel
)

func (c Code) String() string {
	switch c {
	case Ok:
		return "Ok"
	case BadHandle:
		return "BadHandle"
	case InvalidArgs:
		return "InvalidArgs"
	case ChannelClosed:
		return "ChannelClosed"
	case PermissionDenied:
		return "PermissionDenied"
	case Terminated:
		return "Terminated"
	case Internal:
		return "Internal"
	case ReadReady:
		return "ReadReady"
	case NotReady:
		return "NotReady"
	case Orphaned:
		return "Orphaned"
	case InvalidChannel:
		return "InvalidChannel"
	default:
		return "Unknown"
	}
}

// Message is the node-facing variant of a channel message: a byte
// payload plus an ordered sequence of the sender's own per-node Handle
// values. The Runtime converts between Message and its internal
// channel.Message at the write/read boundary.
type Message struct {
	Data    []byte
	Handles []uint64
}
