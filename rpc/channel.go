package rpc

import "context"

// SendSink is a sink of values of type T. Send blocks until the value has
// been handed to the transport. Neither Send nor Close is required to be
// safe for concurrent use by multiple goroutines.
type SendSink[T any] interface {
	Send(ctx context.Context, v T) error
	// Close closes the send half. Some transports treat an early close
	// (before a response has been read) as cancellation of the call; see
	// the docs on Call and ServerStreamIterator.
	Close() error
}

// RecvStream is a stream yielding values of type T. Recv returns an error
// wrapping io.EOF when the peer has cleanly finished sending; any other
// error indicates a transport-level failure.
type RecvStream[T any] interface {
	Recv(ctx context.Context) (T, error)
}

// Channel is a bidirectional, multiplexed transport parameterized by the
// pair of types flowing across it: In is received, Out is sent. A client's
// Channel is parameterized Channel[Res, Req]; a server's is the mirror
// image, Channel[Req, Res] - this forbids mixing the two roles at compile
// time.
//
// A Channel must be cheaply cloneable: Clone returns a handle sharing the
// same underlying transport connection, not a new one.
type Channel[In, Out any] interface {
	// OpenBi initiates a new substream. The first value successfully sent
	// on the returned sink constitutes the call's request.
	OpenBi(ctx context.Context) (SendSink[Out], RecvStream[In], error)
	// AcceptBi waits for a peer-opened substream.
	AcceptBi(ctx context.Context) (SendSink[Out], RecvStream[In], error)
	// Clone returns a handle to the same underlying transport.
	Clone() Channel[In, Out]
}
