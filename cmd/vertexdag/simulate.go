package main

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Fantom-foundation/vertexdag/gossip/dagprocessor"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/dag/tdag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

const simulatedChunk = 50

func initSimulateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "generates a random DAG of the fake validators and delivers it shuffled into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd, v)
		},
	}
	cmd.Flags().Int("vertices", 20, "Vertices per validator")
	cmd.Flags().Int("cheaters", 0, "Number of validators which create forks")
	cmd.Flags().Int64("seed", 0, "Random seed")
	_ = v.BindPFlag("simulate.vertices", cmd.Flags().Lookup("vertices"))
	_ = v.BindPFlag("simulate.cheaters", cmd.Flags().Lookup("cheaters"))
	_ = v.BindPFlag("simulate.seed", cmd.Flags().Lookup("seed"))
	return cmd
}

func runSimulate(cmd *cobra.Command, v *viper.Viper) error {
	net, err := newFakenet(v)
	if err != nil {
		return err
	}
	e, err := openEngine(v, net)
	if err != nil {
		return err
	}
	defer e.Close()

	cheatersNum := v.GetInt("simulate.cheaters")
	if cheatersNum > len(net.nodes) {
		cheatersNum = len(net.nodes)
	}
	parents := 3
	if parents > len(net.nodes) {
		parents = len(net.nodes)
	}
	r := rand.New(rand.NewSource(v.GetInt64("simulate.seed")))
	vertices := tdag.Flatten(tdag.ForEachRandFork(net.nodes, net.nodes[:cheatersNum], v.GetInt("simulate.vertices"), parents, 2, r, tdag.ForEachVertex{
		Sign: tdag.SignWith(net.kr.Sign),
	}))

	var dropped, misbehaviours uint32
	processor := dagprocessor.New(dagprocessor.DefaultConfig(cacheScale(v)), dagprocessor.Callback[string]{
		Vertex: dagprocessor.VertexCallback[string]{
			CheckStateless: e.Store().Checkers().ValidateStateless,
			Submit:         e.SubmitChecked,
			Dropped: func(v *dag.BaseVertex[string], peer string, err error) {
				atomic.AddUint32(&dropped, 1)
				log.Debug("Vertex dropped", "id", v.ID(), "peer", peer, "err", err)
			},
		},
		PeerMisbehaviour: func(peer string, err error) bool {
			atomic.AddUint32(&misbehaviours, 1)
			return false
		},
		HighestLamport: e.HighestLamport,
	})
	processor.Start()

	var wg sync.WaitGroup
	perm := r.Perm(len(vertices))
	for start := 0; start < len(perm); start += simulatedChunk {
		end := start + simulatedChunk
		if end > len(perm) {
			end = len(perm)
		}
		chunk := make([]*dag.BaseVertex[string], 0, end-start)
		for _, i := range perm[start:end] {
			chunk = append(chunk, vertices[i])
		}
		wg.Add(1)
		peer := fmt.Sprintf("peer%d", start/simulatedChunk)
		err := processor.Enqueue(peer, chunk, false, func(ids hash.Vertices) {
			log.Debug("Missing vertices", "peer", peer, "ids", ids)
		}, wg.Done)
		if err != nil {
			wg.Done()
			processor.Stop()
			return err
		}
	}
	wg.Wait()
	processor.Stop()
	if err := e.Retry(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	state := e.Store().GetState()
	fmt.Fprintf(out, "generated:  %d\n", len(vertices))
	fmt.Fprintf(out, "stored:     %d\n", e.Store().Len())
	fmt.Fprintf(out, "missing:    %d\n", len(e.Missing()))
	fmt.Fprintf(out, "dropped:    %d (misbehaviours %d)\n", atomic.LoadUint32(&dropped), atomic.LoadUint32(&misbehaviours))
	cheaters := e.Store().Cheaters()
	fmt.Fprintf(out, "cheaters:   %v\n", idsString(cheaters))
	for _, c := range cheaters {
		if ev := e.Store().Evidence(c); ev != nil {
			fmt.Fprintf(out, "evidence:   %s\n", ev.String())
		}
	}
	fmt.Fprintf(out, "batches:    %d\n", state.LastBatch)
	return nil
}

func idsString(ids []idx.ValidatorID) string {
	s := "["
	for i, id := range ids {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d", id)
	}
	return s + "]"
}
