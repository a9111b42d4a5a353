package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export the full graph to a GraphML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := "investment_graph.graphml"
		if len(args) == 1 {
			filePath = args[0]
		}

		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			if err := a.writer.ExportGraph(ctx, filePath); err != nil {
				return err
			}
			fmt.Printf("graph exported to %s\n", filePath)
			return nil
		})
	},
}

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every node and relationship",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wipeForce {
			fmt.Print("This deletes the entire graph. Type 'yes' to continue: ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.TrimSpace(answer) != "yes" {
				fmt.Println("aborted")
				return nil
			}
		}

		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			if err := a.writer.Wipe(ctx); err != nil {
				return err
			}
			fmt.Println("graph wiped")
			return nil
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the graph engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			status := a.client.Health(ctx)

			if done, err := render(status); done {
				return err
			}

			fmt.Printf("%s: %s\n", status.State, status.Message)
			if status.IsUnhealthy() {
				return fmt.Errorf("graph engine is unhealthy")
			}
			return nil
		})
	},
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeForce, "force", false, "skip confirmation")
}
