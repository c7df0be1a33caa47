package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-chanrpc/chanrpc/examples/compute"
	"github.com/go-chanrpc/chanrpc/memchannel"
	"github.com/go-chanrpc/chanrpc/rpc"
)

// NewServeCommand creates the serve command. Since this build ships only
// the in-memory transport, "serving" means starting the compute service
// in this process and immediately running each of the four interaction
// patterns against it, rather than listening on a socket.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the compute demo service and exercise every call pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			clientCh, serverCh := memchannel.Pair[compute.ComputeRequest, compute.ComputeResponse]()
			sc := compute.NewValidatedServerChannel(serverCh)
			cc := rpc.NewClientChannel[compute.ComputeRequest, compute.ComputeResponse](clientCh)

			serveCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				if err := compute.Serve(serveCtx, sc); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "serve: %v\n", err)
				}
			}()

			return runDemo(ctx, cmd, cc)
		},
	}
	return cmd
}

func runDemo(ctx context.Context, cmd *cobra.Command, cc compute.ClientChannel) error {
	out := cmd.OutOrStdout()

	sqr, err := rpc.Call(ctx, cc, compute.Sqr, compute.SqrRequest{N: 7})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "sqr(7) = %d\n", sqr.Result)

	fib, err := rpc.ServerStream(ctx, cc, compute.Fibonacci, compute.FibonacciRequest{Count: 8})
	if err != nil {
		return err
	}
	defer fib.Close()
	fmt.Fprint(out, "fibonacci(8) =")
	for {
		v, err := fib.Recv(ctx)
		if err != nil {
			break
		}
		fmt.Fprintf(out, " %d", v.Value)
	}
	fmt.Fprintln(out)

	sum, err := rpc.ClientStream(ctx, cc, compute.Sum)
	if err != nil {
		return err
	}
	for _, v := range []int64{1, 2, 3, 4, 5} {
		if err := sum.Send(ctx, compute.SumUpdate{Value: v}); err != nil {
			return err
		}
	}
	total, err := sum.Finish(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "sum(1..5) = %d\n", total.Total)

	mul, err := rpc.Bidi(ctx, cc, compute.Multiply)
	if err != nil {
		return err
	}
	for _, f := range []int64{2, 3, 4} {
		if err := mul.Send.Send(ctx, compute.MultiplyUpdate{Factor: f}); err != nil {
			return err
		}
	}
	_ = mul.Send.Close()
	fmt.Fprint(out, "multiply(2,3,4) =")
	for {
		v, err := mul.Recv.Recv(ctx)
		if err != nil {
			break
		}
		fmt.Fprintf(out, " %d", v.Product)
	}
	fmt.Fprintln(out)

	return nil
}
