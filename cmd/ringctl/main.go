package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorumkv/placement/locator"
	"github.com/quorumkv/placement/ring"
	"github.com/quorumkv/placement/token"
	"github.com/quorumkv/placement/topology"
)

// envState bundles what every subcommand needs after loading the layout.
type envState struct {
	rng      *ring.Ring
	topo     *topology.Topology
	strategy *locator.Strategy
}

// ringctl inspects replica placement for a cluster layout: which nodes own a
// key, which ranges a node replicates, and what a joining node would take
// over.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ringctl:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var layoutPath string
	var verbose bool

	root := &cobra.Command{
		Use:           "ringctl",
		Short:         "Inspect replica placement for a cluster layout",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&layoutPath, "layout", "l", "layout.toml", "path to the TOML cluster layout")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log placement decisions")

	env := func() (*envState, error) {
		logger := zap.NewNop()
		if verbose {
			var err error
			if logger, err = zap.NewDevelopment(); err != nil {
				return nil, err
			}
		}
		l, err := loadLayout(layoutPath)
		if err != nil {
			return nil, err
		}
		rng, topo, s, err := l.build(logger)
		if err != nil {
			return nil, err
		}
		return &envState{rng: rng, topo: topo, strategy: s}, nil
	}

	root.AddCommand(newEndpointsCmd(env))
	root.AddCommand(newRangesCmd(env))
	root.AddCommand(newPendingCmd(env))
	return root
}

func newEndpointsCmd(env func() (*envState, error)) *cobra.Command {
	var rawToken int64

	cmd := &cobra.Command{
		Use:   "endpoints [key]",
		Short: "Show the replica list for a key or token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env()
			if err != nil {
				return err
			}
			var t token.Token
			switch {
			case cmd.Flags().Changed("token"):
				t = token.Token(rawToken)
			case len(args) == 1:
				t = token.FromKey(args[0])
			default:
				return fmt.Errorf("need a key argument or --token")
			}

			eps, err := e.strategy.NaturalEndpoints(t)
			if err != nil {
				return err
			}
			fmt.Printf("token %s -> %v\n", t, eps)

			if e.rng.IsAnyNodeBeingReplaced() {
				filtered, err := e.strategy.NaturalEndpointsExcludingReplaced(t)
				if err != nil {
					return err
				}
				fmt.Printf("excluding replaced  -> %v\n", filtered)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&rawToken, "token", 0, "look up a raw token instead of hashing a key")
	return cmd
}

func newRangesCmd(env func() (*envState, error)) *cobra.Command {
	var address string
	var primary, localDC bool

	cmd := &cobra.Command{
		Use:   "ranges",
		Short: "Show the token ranges each node replicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env()
			if err != nil {
				return err
			}
			addrs := e.rng.Endpoints()
			if address != "" {
				addrs = []string{address}
			}
			for _, addr := range addrs {
				var ranges []token.Range
				switch {
				case localDC:
					ranges, err = e.strategy.PrimaryRangesWithinDC(addr)
				case primary:
					ranges, err = e.strategy.PrimaryRanges(addr)
				default:
					ranges, err = e.strategy.Ranges(addr)
				}
				if err != nil {
					return err
				}
				dc, _ := e.topo.DatacenterOf(addr)
				rack, _ := e.topo.RackOf(addr)
				fmt.Printf("%s (%s/%s):\n", addr, dc, rack)
				for _, r := range ranges {
					fmt.Printf("  %s\n", r)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "restrict the report to one node")
	cmd.Flags().BoolVar(&primary, "primary", false, "primary ranges only")
	cmd.Flags().BoolVar(&localDC, "local-dc", false, "primary ranges within the node's datacenter")
	return cmd
}

func newPendingCmd(env func() (*envState, error)) *cobra.Command {
	var address string
	var rawTokens []int64

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Simulate a join: ranges the node would stream in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" || len(rawTokens) == 0 {
				return fmt.Errorf("pending needs --address and at least one --token")
			}
			e, err := env()
			if err != nil {
				return err
			}
			toks := make([]token.Token, len(rawTokens))
			for i, v := range rawTokens {
				toks[i] = token.Token(v)
			}
			ranges, err := e.strategy.PendingRanges(e.rng, toks, address)
			if err != nil {
				return err
			}
			fmt.Printf("%s would take over:\n", address)
			for _, r := range ranges {
				fmt.Printf("  %s\n", r)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "joining node's address")
	cmd.Flags().Int64SliceVar(&rawTokens, "token", nil, "token(s) the node would claim")
	return cmd
}
