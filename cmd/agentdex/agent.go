package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentdex/pkg/catalog"
	"github.com/jingkaihe/agentdex/pkg/presenter"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage agent records",
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered agents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCLUSTERS\tSUMMARY")
		for a := range cat.Agents() {
			clusters := cat.ClustersFor(a.ID)
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, strings.Join(clusters, ","), a.Summary)
		}
		return w.Flush()
	},
}

var agentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one agent record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		agent, err := cat.GetAgent(args[0])
		if err != nil {
			return err
		}
		clusters := cat.ClustersFor(agent.ID)

		presenter.Section(agent.ID)
		presenter.Info("Summary: " + agent.Summary)
		presenter.Info("File: " + agent.FileRef)
		if len(clusters) > 0 {
			presenter.Info("Clusters: " + strings.Join(clusters, ", "))
		} else {
			presenter.Warning("Not a member of any cluster")
		}
		return nil
	},
}

var agentAddCmd = &cobra.Command{
	Use:   "add <id> <summary> <file>",
	Short: "Register a new agent",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := cat.RegisterAgent(args[0], args[1], args[2]); err != nil {
			return err
		}
		if err := saveCatalog(ctx, st, cat); err != nil {
			return err
		}
		presenter.Success("Registered agent " + args[0])
		return nil
	},
}

var agentRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an agent from the catalog",
	Long: `Remove an agent record. With the default restrict policy the removal is
refused while any cluster still lists the agent; --cascade detaches the agent
from all clusters first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cascade, _ := cmd.Flags().GetBool("cascade")

		policy := removePolicy()
		if cascade {
			policy = catalog.RemoveCascade
		}

		cat, st, err := openCatalogWithPolicy(ctx, policy)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := cat.RemoveAgent(args[0]); err != nil {
			return err
		}
		if err := saveCatalog(ctx, st, cat); err != nil {
			return err
		}
		presenter.Success("Removed agent " + args[0])
		return nil
	},
}

func init() {
	agentRemoveCmd.Flags().Bool("cascade", false, "Detach the agent from all clusters before removing")
	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentShowCmd)
	agentCmd.AddCommand(agentAddCmd)
	agentCmd.AddCommand(agentRemoveCmd)
	rootCmd.AddCommand(agentCmd)
}
