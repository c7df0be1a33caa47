// Package memchannel provides an in-memory rpc.Channel implementation
// that passes live Go values between a client and server goroutine over
// plain channels, without serialization. It exists so the rpc package and
// the services built on it can be exercised and tested without any real
// network transport.
package memchannel

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/go-chanrpc/chanrpc/rpc"
)

// substream is one OpenBi/AcceptBi pairing: values flowing client->server
// arrive on c2s, values flowing server->client arrive on s2c.
type substream[Req, Res any] struct {
	c2s chan Req
	s2c chan Res
}

func newSubstream[Req, Res any]() *substream[Req, Res] {
	return &substream[Req, Res]{
		c2s: make(chan Req, 16),
		s2c: make(chan Res, 16),
	}
}

// clientEndpoint is the client half of a Pair: it sends Req and receives
// Res, i.e. it implements rpc.Channel[Res, Req].
type clientEndpoint[Req, Res any] struct {
	toServer chan *substream[Req, Res]
}

// OpenBi starts a new substream and hands its server side to whichever
// goroutine is blocked in AcceptBi on the peer endpoint.
func (e *clientEndpoint[Req, Res]) OpenBi(ctx context.Context) (rpc.SendSink[Req], rpc.RecvStream[Res], error) {
	s := newSubstream[Req, Res]()
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case e.toServer <- s:
		return &sink[Req]{ch: s.c2s}, &stream[Res]{ch: s.s2c}, nil
	}
}

func (e *clientEndpoint[Req, Res]) AcceptBi(ctx context.Context) (rpc.SendSink[Req], rpc.RecvStream[Res], error) {
	return nil, nil, errors.New("memchannel: client endpoint only opens substreams")
}

func (e *clientEndpoint[Req, Res]) Clone() rpc.Channel[Res, Req] {
	return e
}

// serverEndpoint is the server half of a Pair: it receives Req and sends
// Res, i.e. it implements rpc.Channel[Req, Res].
type serverEndpoint[Req, Res any] struct {
	toServer chan *substream[Req, Res]
}

func (e *serverEndpoint[Req, Res]) OpenBi(ctx context.Context) (rpc.SendSink[Res], rpc.RecvStream[Req], error) {
	return nil, nil, errors.New("memchannel: server endpoint only accepts substreams")
}

func (e *serverEndpoint[Req, Res]) AcceptBi(ctx context.Context) (rpc.SendSink[Res], rpc.RecvStream[Req], error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case s, ok := <-e.toServer:
		if !ok {
			return nil, nil, io.EOF
		}
		return &sink[Res]{ch: s.s2c}, &stream[Req]{ch: s.c2s}, nil
	}
}

func (e *serverEndpoint[Req, Res]) Clone() rpc.Channel[Req, Res] {
	return e
}

// Pair returns two endpoints wired together: a call to OpenBi on client
// delivers a matching AcceptBi on server. Req and Res name the types the
// service exchanges, with client and server mirroring each other exactly
// the way rpc.ClientChannel[Req,Res] and rpc.ServerChannel[Req,Res] do.
func Pair[Req, Res any]() (client rpc.Channel[Res, Req], server rpc.Channel[Req, Res]) {
	toServer := make(chan *substream[Req, Res], 16)
	return &clientEndpoint[Req, Res]{toServer: toServer}, &serverEndpoint[Req, Res]{toServer: toServer}
}

type sink[T any] struct {
	ch        chan T
	closeOnce sync.Once
}

// Send delivers v, or reports ctx's error if ctx ends first. A losing
// goroutine from an rpc-level cancellation race (see HandleRpc,
// HandleServerStreaming) may still be blocked here when the winning side
// closes this sink out from under it; recover turns the resulting
// send-on-closed-channel panic into an ordinary error instead of crashing
// the abandoned goroutine's caller.
func (s *sink[T]) Send(ctx context.Context, v T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = io.ErrClosedPipe
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.ch <- v:
		return nil
	}
}

func (s *sink[T]) Close() error {
	s.closeOnce.Do(func() { close(s.ch) })
	return nil
}

type stream[T any] struct {
	ch chan T
}

func (s *stream[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case v, ok := <-s.ch:
		if !ok {
			return zero, io.EOF
		}
		return v, nil
	}
}
