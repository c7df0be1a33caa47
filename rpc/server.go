package rpc

import "context"

// ServerChannel is the server-side facade over a Channel[Req, Res]: it
// receives requests and sends responses.
type ServerChannel[Req, Res any] struct {
	ch Channel[Req, Res]

	// Validate, if set, is run against every initial request value in
	// AcceptOne before a handler is selected. A non-nil error aborts
	// dispatch of that call with a DispatchError wrapping it. Callers
	// that also want every streamed Update validated propagate the same
	// func to UpdateStream.Validate (see examples/compute's dispatcher).
	Validate func(any) error
}

// NewServerChannel wraps a transport channel for server use.
func NewServerChannel[Req, Res any](ch Channel[Req, Res]) *ServerChannel[Req, Res] {
	return &ServerChannel[Req, Res]{ch: ch}
}

// AcceptOne waits for the next inbound substream and returns its send and
// receive halves along with the first message received on it. Handing
// this first message separately - rather than letting a handler call
// Recv itself - is what lets a dispatcher route the call to the right
// handler before that handler is ever invoked.
func (s *ServerChannel[Req, Res]) AcceptOne(ctx context.Context) (SendSink[Res], RecvStream[Req], Req, error) {
	var zero Req

	send, recv, err := s.ch.AcceptBi(ctx)
	if err != nil {
		return nil, nil, zero, &DispatchError{Kind: DispatchAccept, Err: err}
	}

	first, err := recv.Recv(ctx)
	if err != nil {
		_ = send.Close()
		if isEOF(err) {
			return nil, nil, zero, &DispatchError{Kind: DispatchEarlyClose}
		}
		return nil, nil, zero, &DispatchError{Kind: DispatchRecv, Err: err}
	}

	if s.Validate != nil {
		if verr := s.Validate(first); verr != nil {
			_ = send.Close()
			return nil, nil, zero, &DispatchError{Kind: DispatchUnexpectedStartMessage, Err: verr}
		}
	}

	return send, recv, first, nil
}

// peekCancellation reads one more frame from recv. Under the Unary and
// ServerStreaming patterns no further frame is ever legitimate once the
// request has been read, so any frame at all - a value, a clean
// end-of-stream, or a transport error - means the peer sent something the
// in-flight handler cannot consume, and is reported as
// DispatchUnexpectedUpdateMessage.
func peekCancellation[Req any](ctx context.Context, recv RecvStream[Req]) error {
	_, err := recv.Recv(ctx)
	return &DispatchError{Kind: DispatchUnexpectedUpdateMessage, Err: err}
}

// HandleRpc runs a unary handler against one already-accepted call whose
// first message projected onto this message's Update type. It races the
// handler's completion against a peek of recv for an unexpected extra
// frame; whichever finishes first wins and the other's goroutine is
// abandoned rather than awaited further.
func HandleRpc[Req, Res, M, Update, Response any](
	ctx context.Context,
	send SendSink[Res],
	recv RecvStream[Req],
	m Msg[Req, Res, M, Update, Response],
	req Update,
	handle func(ctx context.Context, req Update) (Response, error),
) error {
	defer send.Close()

	type result struct {
		res Response
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := handle(ctx, req)
		done <- result{res, err}
	}()

	cancel := make(chan error, 1)
	go func() { cancel <- peekCancellation(ctx, recv) }()

	select {
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		if err := send.Send(ctx, m.ToRes(r.res)); err != nil {
			return &DispatchError{Kind: DispatchSend, Err: err}
		}
		return nil
	case err := <-cancel:
		return err
	}
}

// HandleServerStreaming runs a server-streaming handler, forwarding every
// response the handler emits until it returns. It races the handler
// against a cancellation peek identical to HandleRpc's.
func HandleServerStreaming[Req, Res, M, Update, Response any](
	ctx context.Context,
	send SendSink[Res],
	recv RecvStream[Req],
	m Msg[Req, Res, M, Update, Response],
	req Update,
	handle func(ctx context.Context, req Update, emit func(Response) error) error,
) error {
	defer send.Close()

	emit := func(r Response) error {
		if err := send.Send(ctx, m.ToRes(r)); err != nil {
			return &DispatchError{Kind: DispatchSend, Err: err}
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- handle(ctx, req, emit) }()

	cancel := make(chan error, 1)
	go func() { cancel <- peekCancellation(ctx, recv) }()

	select {
	case err := <-done:
		return err
	case err := <-cancel:
		return err
	}
}

// HandleClientStreaming runs a client-streaming handler. It races the
// handler's completion against updateErrCh, the error channel of the
// UpdateStream feeding the handler: if the stream fails mid-call the
// handler is left running (its calls to updates.Next block until ctx is
// done) rather than being force-killed, and the caller learns about the
// failure without waiting for the handler to return.
func HandleClientStreaming[Req, Res, M, Update, Response any](
	ctx context.Context,
	send SendSink[Res],
	m Msg[Req, Res, M, Update, Response],
	updateErrCh <-chan error,
	handle func(ctx context.Context) (Response, error),
) error {
	defer send.Close()

	type result struct {
		res Response
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := handle(ctx)
		done <- result{res, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		if err := send.Send(ctx, m.ToRes(r.res)); err != nil {
			return &DispatchError{Kind: DispatchSend, Err: err}
		}
		return nil
	case err := <-updateErrCh:
		return err
	}
}

// HandleBidiStreaming runs a bidi-streaming handler, which both consumes
// an UpdateStream and emits responses on its own schedule, racing its
// completion against updateErrCh the same way HandleClientStreaming does.
func HandleBidiStreaming[Req, Res, M, Update, Response any](
	ctx context.Context,
	send SendSink[Res],
	m Msg[Req, Res, M, Update, Response],
	updateErrCh <-chan error,
	handle func(ctx context.Context, emit func(Response) error) error,
) error {
	defer send.Close()

	emit := func(r Response) error {
		if err := send.Send(ctx, m.ToRes(r)); err != nil {
			return &DispatchError{Kind: DispatchSend, Err: err}
		}
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- handle(ctx, emit)
	}()

	select {
	case err := <-done:
		return err
	case err := <-updateErrCh:
		return err
	}
}
