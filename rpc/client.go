package rpc

import (
	"context"
	"sync"
)

// ClientChannel is the client-side facade over a Channel[Res, Req]: it
// receives responses and sends requests. It is cheap to copy; all
// exported functions take a ClientChannel by value and clone the
// underlying transport for each call so concurrent calls never share a
// substream.
type ClientChannel[Req, Res any] struct {
	ch Channel[Res, Req]
}

// NewClientChannel wraps a transport channel for client use.
func NewClientChannel[Req, Res any](ch Channel[Res, Req]) ClientChannel[Req, Res] {
	return ClientChannel[Req, Res]{ch: ch}
}

// Call issues a unary request and waits for the single response. The
// write half is kept open until the response frame arrives - some
// transports would otherwise read an early write-close as cancellation -
// and is only closed once Call returns.
func Call[Req, Res, M, Update, Response any](
	ctx context.Context,
	c ClientChannel[Req, Res],
	m Msg[Req, Res, M, Update, Response],
	req Update,
) (Response, error) {
	var zero Response

	send, recv, err := c.ch.Clone().OpenBi(ctx)
	if err != nil {
		return zero, &CallError{Kind: CallOpen, Err: err}
	}
	defer send.Close()

	if err := send.Send(ctx, m.ToReq(req)); err != nil {
		return zero, &CallError{Kind: CallSend, Err: err}
	}

	res, err := recv.Recv(ctx)
	if err != nil {
		if isEOF(err) {
			return zero, &CallError{Kind: CallEarlyClose}
		}
		return zero, &CallError{Kind: CallRecv, Err: err}
	}

	out, ok := m.FromRes(res)
	if !ok {
		return zero, &CallError{Kind: CallDowncast}
	}
	return out, nil
}

// ServerStreamIterator is the handle ServerStream returns: a RecvStream of
// responses plus an explicit Close. The write half opened for the call is
// kept alive for the iterator's entire lifetime - some transports treat an
// early write-close as cancellation - and is only released by Close, or
// automatically once Recv observes a terminal outcome.
type ServerStreamIterator[Response any] interface {
	RecvStream[Response]
	Close() error
}

// ServerStream issues a single request and returns a stream of zero or
// more responses the server sends back.
func ServerStream[Req, Res, M, Update, Response any](
	ctx context.Context,
	c ClientChannel[Req, Res],
	m Msg[Req, Res, M, Update, Response],
	req Update,
) (ServerStreamIterator[Response], error) {
	send, recv, err := c.ch.Clone().OpenBi(ctx)
	if err != nil {
		return nil, &ServerStreamError{Kind: ServerStreamOpen, Err: err}
	}

	if err := send.Send(ctx, m.ToReq(req)); err != nil {
		_ = send.Close()
		return nil, &ServerStreamError{Kind: ServerStreamSend, Err: err}
	}

	return &serverStreamResult[Res, Response]{recv: recv, fromRes: m.FromRes, closeFunc: send.Close}, nil
}

type serverStreamResult[Res, Response any] struct {
	recv      RecvStream[Res]
	fromRes   func(Res) (Response, bool)
	closeFunc func() error
	closeOnce sync.Once
	closeErr  error
}

func (s *serverStreamResult[Res, Response]) Recv(ctx context.Context) (Response, error) {
	var zero Response
	res, err := s.recv.Recv(ctx)
	if err != nil {
		s.Close()
		if isEOF(err) {
			return zero, err
		}
		return zero, &ServerStreamItemError{Kind: ServerStreamItemRecv, Err: err}
	}
	out, ok := s.fromRes(res)
	if !ok {
		s.Close()
		return zero, &ServerStreamItemError{Kind: ServerStreamItemDowncast}
	}
	return out, nil
}

// Close releases the call's write half. It is idempotent and safe to call
// after Recv has already done so on a terminal outcome.
func (s *serverStreamResult[Res, Response]) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.closeFunc()
	})
	return s.closeErr
}

// ClientStreamHandle lets a caller send zero or more updates before
// collecting the server's single response.
type ClientStreamHandle[Update, Response any] struct {
	send    SendSink[Update]
	closed  bool
	collect func(ctx context.Context) (Response, error)
}

// Send writes one more update.
func (h *ClientStreamHandle[Update, Response]) Send(ctx context.Context, u Update) error {
	if err := h.send.Send(ctx, u); err != nil {
		return &ClientStreamError{Kind: ClientStreamSend, Err: err}
	}
	return nil
}

// Finish closes the send half and waits for the server's response.
func (h *ClientStreamHandle[Update, Response]) Finish(ctx context.Context) (Response, error) {
	var zero Response
	if !h.closed {
		h.closed = true
		if err := h.send.Close(); err != nil {
			return zero, &ClientStreamError{Kind: ClientStreamSend, Err: err}
		}
	}
	return h.collect(ctx)
}

// ClientStream opens a client-streaming call and returns a handle for
// sending updates and collecting the final response.
func ClientStream[Req, Res, M, Update, Response any](
	ctx context.Context,
	c ClientChannel[Req, Res],
	m Msg[Req, Res, M, Update, Response],
) (*ClientStreamHandle[Update, Response], error) {
	send, recv, err := c.ch.Clone().OpenBi(ctx)
	if err != nil {
		return nil, &ClientStreamError{Kind: ClientStreamOpen, Err: err}
	}

	wrapped := &clientStreamSink[Req, Update]{send: send, toReq: m.ToReq}

	collect := func(ctx context.Context) (Response, error) {
		var zero Response
		res, err := recv.Recv(ctx)
		if err != nil {
			if isEOF(err) {
				return zero, &ClientStreamItemError{Kind: ClientStreamItemEarlyClose}
			}
			return zero, &ClientStreamItemError{Kind: ClientStreamItemRecv, Err: err}
		}
		out, ok := m.FromRes(res)
		if !ok {
			return zero, &ClientStreamItemError{Kind: ClientStreamItemDowncast}
		}
		return out, nil
	}

	return &ClientStreamHandle[Update, Response]{send: wrapped, collect: collect}, nil
}

type clientStreamSink[Req, Update any] struct {
	send  SendSink[Req]
	toReq func(Update) Req
}

func (s *clientStreamSink[Req, Update]) Send(ctx context.Context, u Update) error {
	return s.send.Send(ctx, s.toReq(u))
}

func (s *clientStreamSink[Req, Update]) Close() error {
	return s.send.Close()
}

// BidiHandle lets a caller send updates and receive responses
// independently, in either order.
type BidiHandle[Update, Response any] struct {
	Send SendSink[Update]
	Recv RecvStream[Response]
}

// Bidi opens a bidi-streaming call.
func Bidi[Req, Res, M, Update, Response any](
	ctx context.Context,
	c ClientChannel[Req, Res],
	m Msg[Req, Res, M, Update, Response],
) (*BidiHandle[Update, Response], error) {
	send, recv, err := c.ch.Clone().OpenBi(ctx)
	if err != nil {
		return nil, &BidiError{Kind: BidiOpen, Err: err}
	}

	return &BidiHandle[Update, Response]{
		Send: &bidiSink[Req, Update]{clientStreamSink[Req, Update]{send: send, toReq: m.ToReq}},
		Recv: &bidiRecv[Res, Response]{recv: recv, fromRes: m.FromRes},
	}, nil
}

// bidiSink reports a failed update write as a BidiError of kind BidiSend.
type bidiSink[Req, Update any] struct {
	clientStreamSink[Req, Update]
}

func (s *bidiSink[Req, Update]) Send(ctx context.Context, u Update) error {
	if err := s.clientStreamSink.Send(ctx, u); err != nil {
		return &BidiError{Kind: BidiSend, Err: err}
	}
	return nil
}

type bidiRecv[Res, Response any] struct {
	recv    RecvStream[Res]
	fromRes func(Res) (Response, bool)
}

func (r *bidiRecv[Res, Response]) Recv(ctx context.Context) (Response, error) {
	var zero Response
	res, err := r.recv.Recv(ctx)
	if err != nil {
		if isEOF(err) {
			return zero, err
		}
		return zero, &BidiItemError{Kind: BidiItemRecv, Err: err}
	}
	out, ok := r.fromRes(res)
	if !ok {
		return zero, &BidiItemError{Kind: BidiItemDowncast}
	}
	return out, nil
}
