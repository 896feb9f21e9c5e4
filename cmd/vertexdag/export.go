package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Fantom-foundation/vertexdag/dagstore"
	"github.com/Fantom-foundation/vertexdag/gossip/dagordering"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
)

func initExportCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "writes every stored vertex in id order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := newFakenet(v)
			if err != nil {
				return err
			}
			e, err := openEngine(v, net)
			if err != nil {
				return err
			}
			defer e.Close()

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			w := bufio.NewWriter(f)
			if err := e.Store().Export(w); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d vertices\n", e.Store().Len())
			return nil
		},
	}
}

func initImportCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "submits the exported vertices into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := newFakenet(v)
			if err != nil {
				return err
			}
			e, err := openEngine(v, net)
			if err != nil {
				return err
			}
			defer e.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			outcomes := map[dagordering.Outcome]int{}
			err = dagstore.Import[string](bufio.NewReader(f), func(vtx *dag.BaseVertex[string]) error {
				res, err := e.SubmitVertex(vtx, "")
				if err != nil {
					return err
				}
				outcomes[res.Outcome]++
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, duplicate %d, pending %d\n",
				outcomes[dagordering.Inserted], outcomes[dagordering.Duplicate], outcomes[dagordering.Pending])
			return nil
		},
	}
}
