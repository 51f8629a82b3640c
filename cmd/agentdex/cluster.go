package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentdex/pkg/presenter"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Manage clusters and their memberships",
}

var clusterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clusters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSIZE\tDESCRIPTION")
		for cl := range cat.Clusters() {
			fmt.Fprintf(w, "%s\t%d\t%s\n", cl.Name, len(cl.MemberIDs), cl.Description)
		}
		return w.Flush()
	},
}

var clusterShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one cluster and its members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		cl, err := cat.GetCluster(args[0])
		if err != nil {
			return err
		}

		presenter.Section(cl.Name)
		if cl.Description != "" {
			presenter.Info(cl.Description)
			presenter.Separator()
		}
		for _, id := range cl.MemberIDs {
			line := "- " + id
			if agent, err := cat.GetAgent(id); err == nil {
				line += " - " + agent.Summary
			}
			if cat.IsCrossCluster(id) {
				line += " (multi-cluster)"
			}
			presenter.Info(line)
		}
		if len(cl.MemberIDs) == 0 {
			presenter.Warning("Cluster has no members")
		}
		return nil
	},
}

var clusterCreateCmd = &cobra.Command{
	Use:   "create <name> [description]",
	Short: "Create an empty cluster",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		if err := cat.CreateCluster(args[0], description); err != nil {
			return err
		}
		if err := saveCatalog(ctx, st, cat); err != nil {
			return err
		}
		presenter.Success("Created cluster " + args[0])
		return nil
	},
}

var clusterDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a cluster, keeping its member agents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		members, err := cat.MembersOf(args[0])
		if err != nil {
			return err
		}
		if err := cat.DeleteCluster(args[0]); err != nil {
			return err
		}
		if err := saveCatalog(ctx, st, cat); err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("Deleted cluster %s, %d agents kept: %s",
			args[0], len(members), strings.Join(members, ", ")))
		return nil
	},
}

var clusterAddMemberCmd = &cobra.Command{
	Use:   "add-member <name> <agent-id>",
	Short: "Add an agent to a cluster",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := cat.AddMember(args[0], args[1]); err != nil {
			return err
		}
		if err := saveCatalog(ctx, st, cat); err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("Added %s to %s", args[1], args[0]))
		return nil
	},
}

var clusterRemoveMemberCmd = &cobra.Command{
	Use:   "remove-member <name> <agent-id>",
	Short: "Remove an agent from a cluster",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := cat.RemoveMember(args[0], args[1]); err != nil {
			return err
		}
		if err := saveCatalog(ctx, st, cat); err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("Removed %s from %s", args[1], args[0]))
		return nil
	},
}

func init() {
	clusterCmd.AddCommand(clusterListCmd)
	clusterCmd.AddCommand(clusterShowCmd)
	clusterCmd.AddCommand(clusterCreateCmd)
	clusterCmd.AddCommand(clusterDeleteCmd)
	clusterCmd.AddCommand(clusterAddMemberCmd)
	clusterCmd.AddCommand(clusterRemoveMemberCmd)
	rootCmd.AddCommand(clusterCmd)
}
