package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/status-im/keycard-go/hexutils"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/engine"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

func initBatchesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "lists the finalized batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatches(cmd, v)
		},
	}
	cmd.Flags().Uint32("from", 1, "First batch to list")
	cmd.Flags().Bool("dump", false, "Dump the raw vertices in hex")
	cmd.Flags().Bool("deliver", false, "Mark the undelivered batches as delivered while listing them")
	_ = v.BindPFlag("batches.from", cmd.Flags().Lookup("from"))
	_ = v.BindPFlag("batches.dump", cmd.Flags().Lookup("dump"))
	_ = v.BindPFlag("batches.deliver", cmd.Flags().Lookup("deliver"))
	return cmd
}

func runBatches(cmd *cobra.Command, v *viper.Viper) error {
	net, err := newFakenet(v)
	if err != nil {
		return err
	}
	e, err := openEngine(v, net)
	if err != nil {
		return err
	}
	defer e.Close()

	show := func(b *consensus.Batch[string]) error {
		return printBatch(cmd, e, b, v.GetBool("batches.dump"))
	}

	if v.GetBool("batches.deliver") {
		var printErr error
		err := e.Poll(func(b *consensus.Batch[string]) bool {
			printErr = show(b)
			return printErr == nil
		})
		if err != nil {
			return err
		}
		return printErr
	}

	state := e.Store().GetState()
	for n := idx.Batch(v.GetUint32("batches.from")); n <= state.LastBatch; n++ {
		b, err := e.Store().GetBatch(n)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("batch %d is missing", n)
		}
		if err := show(b); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "delivered %d of %d\n", state.Delivered, state.LastBatch)
	return nil
}

func printBatch(cmd *cobra.Command, e *engine.Engine[string], b *consensus.Batch[string], dump bool) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "batch %d anchor=%s vertices=%d values=%d cheaters=%s\n",
		b.Index, b.Anchor.FullID(), len(b.Vertices), len(b.Values), idsString(b.Cheaters))
	if !dump {
		return nil
	}
	for _, id := range b.Vertices {
		vtx, err := e.GetVertex(id)
		if err != nil {
			return err
		}
		if vtx == nil {
			return fmt.Errorf("finalized vertex %s is missing", id.FullID())
		}
		raw, err := vtx.MarshalBinary()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s %s\n", id.FullID(), hexutils.BytesToHex(raw))
	}
	return nil
}
