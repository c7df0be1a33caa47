package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-chanrpc/chanrpc/examples/compute"
	"github.com/go-chanrpc/chanrpc/memchannel"
	"github.com/go-chanrpc/chanrpc/rpc"
)

// NewCallCommand creates the call command, which issues a single Sqr
// call against a freshly started in-process compute service.
func NewCallCommand() *cobra.Command {
	var n int64

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Issue a single sqr call against the compute demo service",
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
			go func() { _ = compute.Serve(serveCtx, sc) }()

			res, err := rpc.Call(ctx, cc, compute.Sqr, compute.SqrRequest{N: n})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sqr(%d) = %d\n", n, res.Result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&n, "n", 1, "value to square")
	return cmd
}
