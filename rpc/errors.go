package rpc

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CallKind identifies the stage at which a unary Call failed.
type CallKind uint8

const (
	// CallOpen means the channel could not open the substream.
	CallOpen CallKind = iota
	// CallSend means the request could not be written.
	CallSend
	// CallEarlyClose means the peer closed its send half before a
	// response arrived.
	CallEarlyClose
	// CallRecv means the transport returned an error while waiting for
	// the response.
	CallRecv
	// CallDowncast means a response arrived but did not project onto
	// the expected message's Response type.
	CallDowncast
)

func (k CallKind) String() string {
	switch k {
	case CallOpen:
		return "open"
	case CallSend:
		return "send"
	case CallEarlyClose:
		return "early close"
	case CallRecv:
		return "recv"
	case CallDowncast:
		return "downcast"
	default:
		return "unknown"
	}
}

// CallError reports why a unary Call failed.
type CallError struct {
	Kind CallKind
	Err  error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rpc: call failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("rpc: call failed (%s)", e.Kind)
}

func (e *CallError) Unwrap() error { return e.Err }

func (e *CallError) GRPCStatus() *status.Status {
	switch e.Kind {
	case CallDowncast:
		return status.New(codes.Internal, e.Error())
	case CallEarlyClose:
		return status.New(codes.Unavailable, e.Error())
	default:
		return status.New(codes.Unknown, e.Error())
	}
}

// ServerStreamKind identifies the stage at which opening a server-streaming
// call failed.
type ServerStreamKind uint8

const (
	ServerStreamOpen ServerStreamKind = iota
	ServerStreamSend
)

func (k ServerStreamKind) String() string {
	if k == ServerStreamSend {
		return "send"
	}
	return "open"
}

// ServerStreamError reports why starting a server-streaming call failed.
type ServerStreamError struct {
	Kind ServerStreamKind
	Err  error
}

func (e *ServerStreamError) Error() string {
	return fmt.Sprintf("rpc: server stream failed to start (%s): %v", e.Kind, e.Err)
}

func (e *ServerStreamError) Unwrap() error { return e.Err }

func (e *ServerStreamError) GRPCStatus() *status.Status {
	return status.New(codes.Unavailable, e.Error())
}

// ServerStreamItemKind identifies why reading one item from a
// server-streaming response failed.
type ServerStreamItemKind uint8

const (
	ServerStreamItemRecv ServerStreamItemKind = iota
	ServerStreamItemDowncast
)

func (k ServerStreamItemKind) String() string {
	if k == ServerStreamItemDowncast {
		return "downcast"
	}
	return "recv"
}

// ServerStreamItemError reports why one item of a server-streaming
// response could not be delivered.
type ServerStreamItemError struct {
	Kind ServerStreamItemKind
	Err  error
}

func (e *ServerStreamItemError) Error() string {
	return fmt.Sprintf("rpc: server stream item failed (%s): %v", e.Kind, e.Err)
}

func (e *ServerStreamItemError) Unwrap() error { return e.Err }

func (e *ServerStreamItemError) GRPCStatus() *status.Status {
	if e.Kind == ServerStreamItemDowncast {
		return status.New(codes.Internal, e.Error())
	}
	return status.New(codes.Unavailable, e.Error())
}

// ClientStreamKind identifies the stage at which a client-streaming call
// failed: opening it, or writing or closing its update stream.
type ClientStreamKind uint8

const (
	ClientStreamOpen ClientStreamKind = iota
	ClientStreamSend
)

func (k ClientStreamKind) String() string {
	if k == ClientStreamSend {
		return "send"
	}
	return "open"
}

// ClientStreamError reports why starting or writing to a client-streaming
// call failed.
type ClientStreamError struct {
	Kind ClientStreamKind
	Err  error
}

func (e *ClientStreamError) Error() string {
	return fmt.Sprintf("rpc: client stream failed (%s): %v", e.Kind, e.Err)
}

func (e *ClientStreamError) Unwrap() error { return e.Err }

func (e *ClientStreamError) GRPCStatus() *status.Status {
	return status.New(codes.Unavailable, e.Error())
}

// ClientStreamItemKind identifies why a client-streaming call's final
// response could not be collected.
type ClientStreamItemKind uint8

const (
	ClientStreamItemEarlyClose ClientStreamItemKind = iota
	ClientStreamItemRecv
	ClientStreamItemDowncast
)

func (k ClientStreamItemKind) String() string {
	switch k {
	case ClientStreamItemEarlyClose:
		return "early close"
	case ClientStreamItemRecv:
		return "recv"
	default:
		return "downcast"
	}
}

// ClientStreamItemError reports why a client-streaming call's response
// could not be collected after all updates were sent.
type ClientStreamItemError struct {
	Kind ClientStreamItemKind
	Err  error
}

func (e *ClientStreamItemError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rpc: client stream response failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("rpc: client stream response failed (%s)", e.Kind)
}

func (e *ClientStreamItemError) Unwrap() error { return e.Err }

func (e *ClientStreamItemError) GRPCStatus() *status.Status {
	switch e.Kind {
	case ClientStreamItemDowncast:
		return status.New(codes.Internal, e.Error())
	default:
		return status.New(codes.Unavailable, e.Error())
	}
}

// BidiKind identifies the stage at which a bidi-streaming call failed:
// opening it, or writing an update.
type BidiKind uint8

const (
	BidiOpen BidiKind = iota
	BidiSend
)

func (k BidiKind) String() string {
	if k == BidiSend {
		return "send"
	}
	return "open"
}

// BidiError reports why starting or writing to a bidi-streaming call
// failed.
type BidiError struct {
	Kind BidiKind
	Err  error
}

func (e *BidiError) Error() string {
	return fmt.Sprintf("rpc: bidi stream failed (%s): %v", e.Kind, e.Err)
}

func (e *BidiError) Unwrap() error { return e.Err }

func (e *BidiError) GRPCStatus() *status.Status {
	return status.New(codes.Unavailable, e.Error())
}

// BidiItemKind identifies why reading one item from a bidi-streaming
// response failed.
type BidiItemKind uint8

const (
	BidiItemRecv BidiItemKind = iota
	BidiItemDowncast
)

func (k BidiItemKind) String() string {
	if k == BidiItemDowncast {
		return "downcast"
	}
	return "recv"
}

// BidiItemError reports why one item of a bidi-streaming response could
// not be delivered.
type BidiItemError struct {
	Kind BidiItemKind
	Err  error
}

func (e *BidiItemError) Error() string {
	return fmt.Sprintf("rpc: bidi stream item failed (%s): %v", e.Kind, e.Err)
}

func (e *BidiItemError) Unwrap() error { return e.Err }

func (e *BidiItemError) GRPCStatus() *status.Status {
	if e.Kind == BidiItemDowncast {
		return status.New(codes.Internal, e.Error())
	}
	return status.New(codes.Unavailable, e.Error())
}

// DispatchKind identifies why a ServerChannel failed to dispatch or
// service one inbound call.
type DispatchKind uint8

const (
	// DispatchAccept means AcceptBi itself returned an error.
	DispatchAccept DispatchKind = iota
	// DispatchEarlyClose means the client closed its send half before
	// sending the call's start message.
	DispatchEarlyClose
	// DispatchUnexpectedStartMessage means the first message received
	// did not project onto any registered message's request type, or
	// was rejected by ServerChannel.Validate.
	DispatchUnexpectedStartMessage
	// DispatchRecv means the transport returned an error while reading
	// the start message or a subsequent update.
	DispatchRecv
	// DispatchSend means writing a response or update back to the
	// client failed.
	DispatchSend
	// DispatchUnexpectedUpdateMessage means an update arrived that did
	// not project onto the in-flight message's Update type or was
	// rejected by UpdateStream.Validate, or, under HandleRpc and
	// HandleServerStreaming, that any further frame, end-of-stream or
	// receive error was seen after the request. This is
	// kept distinct from DispatchUnexpectedStartMessage: the first
	// message establishes which handler is running, so a malformed
	// start is a routing failure, while a malformed follow-up is a
	// protocol violation by an already-identified peer.
	DispatchUnexpectedUpdateMessage
)

func (k DispatchKind) String() string {
	switch k {
	case DispatchAccept:
		return "accept"
	case DispatchEarlyClose:
		return "early close"
	case DispatchUnexpectedStartMessage:
		return "unexpected start message"
	case DispatchRecv:
		return "recv"
	case DispatchSend:
		return "send"
	case DispatchUnexpectedUpdateMessage:
		return "unexpected update message"
	default:
		return "unknown"
	}
}

// DispatchError reports why a ServerChannel failed to service one inbound
// call. It never escapes to other in-flight calls on the same channel.
type DispatchError struct {
	Kind DispatchKind
	Err  error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rpc: dispatch failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("rpc: dispatch failed (%s)", e.Kind)
}

func (e *DispatchError) Unwrap() error { return e.Err }

func (e *DispatchError) GRPCStatus() *status.Status {
	switch e.Kind {
	case DispatchUnexpectedStartMessage, DispatchUnexpectedUpdateMessage:
		return status.New(codes.InvalidArgument, e.Error())
	case DispatchEarlyClose:
		return status.New(codes.Canceled, e.Error())
	default:
		return status.New(codes.Unavailable, e.Error())
	}
}
