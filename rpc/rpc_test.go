package rpc_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-chanrpc/chanrpc/examples/compute"
	"github.com/go-chanrpc/chanrpc/memchannel"
	"github.com/go-chanrpc/chanrpc/rpc"
)

func newComputePair(t *testing.T) (compute.ClientChannel, context.CancelFunc) {
	t.Helper()
	clientCh, serverCh := memchannel.Pair[compute.ComputeRequest, compute.ComputeResponse]()
	sc := compute.NewValidatedServerChannel(serverCh)
	cc := rpc.NewClientChannel[compute.ComputeRequest, compute.ComputeResponse](clientCh)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := compute.Serve(ctx, sc); err != nil && ctx.Err() == nil {
			t.Errorf("serve: %v", err)
		}
	}()
	return cc, cancel
}

func TestSqrUnary(t *testing.T) {
	cc, cancel := newComputePair(t)
	defer cancel()

	ctx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()

	res, err := rpc.Call(ctx, cc, compute.Sqr, compute.SqrRequest{N: 9})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Result != 81 {
		t.Fatalf("expected 81, got %d", res.Result)
	}
}

func TestFibonacciServerStreaming(t *testing.T) {
	cc, cancel := newComputePair(t)
	defer cancel()

	ctx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()

	stream, err := rpc.ServerStream(ctx, cc, compute.Fibonacci, compute.FibonacciRequest{Count: 7})
	if err != nil {
		t.Fatalf("ServerStream: %v", err)
	}
	defer stream.Close()

	want := []int64{0, 1, 1, 2, 3, 5, 8}
	for i, w := range want {
		v, err := stream.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv(%d): %v", i, err)
		}
		if v.Value != w {
			t.Fatalf("item %d: got %d, want %d", i, v.Value, w)
		}
	}
	if _, err := stream.Recv(ctx); err == nil {
		t.Fatalf("expected end of stream")
	}
}

func TestSumClientStreaming(t *testing.T) {
	cc, cancel := newComputePair(t)
	defer cancel()

	ctx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()

	h, err := rpc.ClientStream(ctx, cc, compute.Sum)
	if err != nil {
		t.Fatalf("ClientStream: %v", err)
	}
	for _, v := range []int64{1, 2, 3, 4} {
		if err := h.Send(ctx, compute.SumUpdate{Value: v}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	res, err := h.Finish(ctx)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if res.Total != 10 {
		t.Fatalf("expected 10, got %d", res.Total)
	}
}

func TestMultiplyBidiStreaming(t *testing.T) {
	cc, cancel := newComputePair(t)
	defer cancel()

	ctx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()

	h, err := rpc.Bidi(ctx, cc, compute.Multiply)
	if err != nil {
		t.Fatalf("Bidi: %v", err)
	}

	go func() {
		for _, f := range []int64{2, 3, 5} {
			_ = h.Send.Send(ctx, compute.MultiplyUpdate{Factor: f})
		}
		_ = h.Send.Close()
	}()

	want := []int64{2, 6, 30}
	for i, w := range want {
		v, err := h.Recv.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv(%d): %v", i, err)
		}
		if v.Product != w {
			t.Fatalf("item %d: got %d, want %d", i, v.Product, w)
		}
	}
	if _, err := h.Recv.Recv(ctx); err == nil {
		t.Fatalf("expected end of stream")
	} else if err != io.EOF {
		// memchannel reports plain io.EOF; client wrapping is only
		// applied to non-EOF failures.
		t.Logf("stream ended with: %v", err)
	}
}

// TestWrongUpdateCancellation covers the "wrong-update cancellation"
// scenario: a SumUpdate arriving on a call started with Fibonacci must be
// reported as an unexpected frame and the call aborted, without wedging
// the dispatcher - a later call on the same server succeeds.
func TestWrongUpdateCancellation(t *testing.T) {
	clientCh, serverCh := memchannel.Pair[compute.ComputeRequest, compute.ComputeResponse]()
	sc := compute.NewValidatedServerChannel(serverCh)
	cc := rpc.NewClientChannel[compute.ComputeRequest, compute.ComputeResponse](clientCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = compute.Serve(ctx, sc)
	}()

	callCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()

	send, recv, err := clientCh.OpenBi(callCtx)
	if err != nil {
		t.Fatalf("OpenBi: %v", err)
	}
	// Count is large enough, and nothing ever drains the response
	// stream, that handleFibonacci necessarily blocks trying to emit
	// its 17th term (memchannel's substream buffer holds 16): the
	// cancellation peek is guaranteed to observe the bogus frame and
	// win the race before the handler could ever finish on its own.
	if err := send.Send(callCtx, compute.FibonacciRequest{Count: 100}); err != nil {
		t.Fatalf("send start message: %v", err)
	}
	if err := send.Send(callCtx, compute.SumUpdate{Value: 1}); err != nil {
		t.Fatalf("send bogus update: %v", err)
	}

	if _, err := recv.Recv(callCtx); err == nil {
		t.Fatalf("expected the call to end without a response")
	}

	res, err := rpc.Call(callCtx, cc, compute.Sqr, compute.SqrRequest{N: 6})
	if err != nil {
		t.Fatalf("Call after cancellation: %v", err)
	}
	if res.Result != 36 {
		t.Fatalf("expected 36, got %d", res.Result)
	}
}

// TestFibonacciClientDropMidStream covers the "client drop mid-stream"
// scenario: the client reads a few items from a server-streaming call and
// then stops, tearing down the shared context. The server's dispatch
// goroutine must unwind instead of hanging, and Serve itself must return.
func TestFibonacciClientDropMidStream(t *testing.T) {
	clientCh, serverCh := memchannel.Pair[compute.ComputeRequest, compute.ComputeResponse]()
	sc := compute.NewValidatedServerChannel(serverCh)
	cc := rpc.NewClientChannel[compute.ComputeRequest, compute.ComputeResponse](clientCh)

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() { serveDone <- compute.Serve(ctx, sc) }()

	stream, err := rpc.ServerStream(ctx, cc, compute.Fibonacci, compute.FibonacciRequest{Count: 1000000})
	if err != nil {
		t.Fatalf("ServerStream: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := stream.Recv(ctx); err != nil {
			t.Fatalf("Recv(%d): %v", i, err)
		}
	}

	cancel()

	select {
	case err := <-serveDone:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Serve did not exit after context cancellation")
	}

	if _, err := stream.Recv(ctx); err == nil {
		t.Fatalf("expected Recv to fail once ctx is canceled")
	}
	_ = stream.Close()
}
