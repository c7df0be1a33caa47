package rpc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-chanrpc/chanrpc/rpc"
)

// req/res are a tiny two-variant sum type used only by these tests.
type req struct{ n int }
type res struct{ n int }

type failingSink struct{ err error }

func (s *failingSink) Send(ctx context.Context, v req) error { return s.err }
func (s *failingSink) Close() error                           { return nil }

type failingRecv struct{ err error }

func (r *failingRecv) Recv(ctx context.Context) (res, error) { return res{}, r.err }

type failingChannel struct {
	openErr error
	send    rpc.SendSink[req]
	recv    rpc.RecvStream[res]
}

func (c *failingChannel) OpenBi(ctx context.Context) (rpc.SendSink[req], rpc.RecvStream[res], error) {
	if c.openErr != nil {
		return nil, nil, c.openErr
	}
	return c.send, c.recv, nil
}
func (c *failingChannel) AcceptBi(ctx context.Context) (rpc.SendSink[req], rpc.RecvStream[res], error) {
	return nil, nil, errors.New("not implemented")
}
func (c *failingChannel) Clone() rpc.Channel[res, req] { return c }

type stubMsg struct{}

func testMsg() rpc.Msg[req, res, stubMsg, int, int] {
	return rpc.RpcMsg[req, res, stubMsg, int, int](
		func(u int) req { return req{n: u} },
		func(r req) (int, bool) { return r.n, true },
		func(r int) res { return res{n: r} },
		func(r res) (int, bool) { return r.n, true },
	)
}

func TestCallOpenError(t *testing.T) {
	ch := &failingChannel{openErr: errors.New("boom")}
	cc := rpc.NewClientChannel[req, res](ch)

	_, err := rpc.Call(context.Background(), cc, testMsg(), 1)
	var callErr *rpc.CallError
	if !errors.As(err, &callErr) || callErr.Kind != rpc.CallOpen {
		t.Fatalf("expected CallError{Kind: CallOpen}, got %v", err)
	}
}

func TestCallSendError(t *testing.T) {
	ch := &failingChannel{send: &failingSink{err: errors.New("send boom")}}
	cc := rpc.NewClientChannel[req, res](ch)

	_, err := rpc.Call(context.Background(), cc, testMsg(), 1)
	var callErr *rpc.CallError
	if !errors.As(err, &callErr) || callErr.Kind != rpc.CallSend {
		t.Fatalf("expected CallError{Kind: CallSend}, got %v", err)
	}
}

func TestCallRecvError(t *testing.T) {
	ch := &failingChannel{
		send: &failingSink{err: nil},
		recv: &failingRecv{err: errors.New("recv boom")},
	}
	cc := rpc.NewClientChannel[req, res](ch)

	_, err := rpc.Call(context.Background(), cc, testMsg(), 1)
	var callErr *rpc.CallError
	if !errors.As(err, &callErr) || callErr.Kind != rpc.CallRecv {
		t.Fatalf("expected CallError{Kind: CallRecv}, got %v", err)
	}
}
