package main

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Fantom-foundation/vertexdag/dagstore"
	"github.com/Fantom-foundation/vertexdag/engine"
	"github.com/Fantom-foundation/vertexdag/gossip/dagordering"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
	"github.com/Fantom-foundation/vertexdag/kvdb/memorydb"
)

func initVerifyCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "replays the exported DAG into an empty in-memory state and compares the finality",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, v)
		},
	}
}

func runVerify(cmd *cobra.Command, v *viper.Viper) error {
	net, err := newFakenet(v)
	if err != nil {
		return err
	}
	e, err := openEngine(v, net)
	if err != nil {
		return err
	}
	defer e.Close()

	buf := &bytes.Buffer{}
	if err := e.Store().Export(buf); err != nil {
		return err
	}

	replayed, err := engine.New[string](memorydb.New(), net.ctx, engine.LiteConfig(), engine.Callbacks{})
	if err != nil {
		return err
	}
	defer replayed.Close()

	err = dagstore.Import[string](buf, func(vtx *dag.BaseVertex[string]) error {
		res, err := replayed.SubmitVertex(vtx, "")
		if err != nil {
			return err
		}
		if res.Outcome != dagordering.Inserted {
			return fmt.Errorf("vertex %s is %s on replay", vtx.ID().FullID(), res.Outcome)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if e.Store().Len() != replayed.Store().Len() {
		return fmt.Errorf("replayed %d vertices of %d", replayed.Store().Len(), e.Store().Len())
	}
	var lost error
	err = e.Store().ForEachVertex(func(vtx *dag.BaseVertex[string]) bool {
		if !replayed.Store().HasVertex(vtx.ID()) {
			lost = fmt.Errorf("vertex %s is lost on replay", vtx.ID().FullID())
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if lost != nil {
		return lost
	}
	if !equalRLP(e.Store().Cheaters(), replayed.Store().Cheaters()) {
		return fmt.Errorf("cheaters mismatch")
	}
	for _, w := range net.nodes {
		a, _ := e.Store().Latest(w)
		b, _ := replayed.Store().Latest(w)
		if a != b {
			return fmt.Errorf("latest vertex of %d mismatch: %s != %s", w, a.FullID(), b.FullID())
		}
	}
	last := e.Store().GetState().LastBatch
	if got := replayed.Store().GetState().LastBatch; got != last {
		return fmt.Errorf("replayed %d batches of %d", got, last)
	}
	for n := idx.Batch(1); n <= last; n++ {
		a, err := e.Store().GetBatch(n)
		if err != nil {
			return err
		}
		b, err := replayed.Store().GetBatch(n)
		if err != nil {
			return err
		}
		if !equalRLP(a, b) {
			return fmt.Errorf("batch %d mismatch", n)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d vertices, %d batches\n", e.Store().Len(), last)
	return nil
}

func equalRLP(a, b interface{}) bool {
	x, err := rlp.EncodeToBytes(a)
	if err != nil {
		return false
	}
	y, err := rlp.EncodeToBytes(b)
	if err != nil {
		return false
	}
	return bytes.Equal(x, y)
}
