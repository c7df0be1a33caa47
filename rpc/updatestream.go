package rpc

import "context"

// UpdateStream lazily adapts a RecvStream of a service's request enum down
// to one message's Update type. It is handed to a handler in place of the
// raw channel so the handler never sees other messages' variants.
//
// Once an error has been posted (a downcast failure or a transport error),
// UpdateStream does not report end-of-stream on subsequent calls: Next
// blocks until ctx is done. A handler racing UpdateStream against its own
// completion (see HandleBidiStreaming and HandleClientStreaming) must never
// observe a clean end-of-stream after an error, or it could race to a
// false success instead of surfacing the failure.
type UpdateStream[Req, Update any] struct {
	recv    RecvStream[Req]
	fromReq func(Req) (Update, bool)

	// Validate, if set, is run against every decoded Update before Next
	// returns it, mirroring ServerChannel.Validate's hook on the start
	// message.
	Validate func(any) error

	errCh chan error
	err   error
}

// NewUpdateStream builds an UpdateStream that projects values received
// from recv through fromReq.
func NewUpdateStream[Req, Update any](recv RecvStream[Req], fromReq func(Req) (Update, bool)) *UpdateStream[Req, Update] {
	return &UpdateStream[Req, Update]{
		recv:    recv,
		fromReq: fromReq,
		errCh:   make(chan error, 1),
	}
}

// Next returns the next update. ok is false when the underlying stream
// has cleanly ended (io.EOF), with Err still nil. Any failure is reported
// through Err and ErrChan and causes Next to block until ctx is done
// before it returns ok == false, so a caller racing ErrChan sees the
// failure before it could see Next return.
func (s *UpdateStream[Req, Update]) Next(ctx context.Context) (u Update, ok bool) {
	if s.err != nil {
		<-ctx.Done()
		return u, false
	}

	req, err := s.recv.Recv(ctx)
	if err != nil {
		if isEOF(err) {
			return u, false
		}
		s.postErr(&DispatchError{Kind: DispatchRecv, Err: err})
		<-ctx.Done()
		return u, false
	}

	val, matched := s.fromReq(req)
	if !matched {
		s.postErr(&DispatchError{Kind: DispatchUnexpectedUpdateMessage})
		<-ctx.Done()
		return u, false
	}

	if s.Validate != nil {
		if verr := s.Validate(val); verr != nil {
			s.postErr(&DispatchError{Kind: DispatchUnexpectedUpdateMessage, Err: verr})
			<-ctx.Done()
			return u, false
		}
	}
	return val, true
}

// Err returns the error, if any, that caused Next to stop yielding
// updates. It is nil until that happens, and is safe to read only after
// Next has returned ok == false.
func (s *UpdateStream[Req, Update]) Err() error {
	return s.err
}

// ErrChan exposes the one-shot channel an error is posted on, for
// selecting against in a dispatch loop that must race UpdateStream
// against a handler's own completion.
func (s *UpdateStream[Req, Update]) ErrChan() <-chan error {
	return s.errCh
}

func (s *UpdateStream[Req, Update]) postErr(err error) {
	s.err = err
	s.errCh <- err
}
