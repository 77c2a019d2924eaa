/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/gamestate/pkg/codec"
	"github.com/ssargent/gamestate/pkg/storage"
	"github.com/ssargent/gamestate/pkg/transport"
)

// capturesCmd represents the captures command
var capturesCmd = &cobra.Command{
	Use:   "captures",
	Short: "Inspect stored datagrams",
	Long: `List, show and delete datagrams stored by 'gamestate listen --capture'.

Examples:
  gamestate captures list --limit 20
  gamestate captures show 2NxJ8iRQqWb7pK1JQfR3h6b5Zq1
  gamestate captures delete 2NxJ8iRQqWb7pK1JQfR3h6b5Zq1`,
}

var capturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent captures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withStore(cmd, func(store *storage.CaptureStore) error {
			captures, err := store.List(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(captures) == 0 {
				fmt.Fprintln(out, "no captures")
				return nil
			}
			for _, c := range captures {
				fmt.Fprintf(out, "%s  %s  %-9s  %-21s  % x\n",
					c.ID, c.ReceivedAt.Format(time.RFC3339Nano), c.Kind, c.Source, c.Payload)
			}
			return nil
		})
	},
}

var capturesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one capture, decoded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid capture id %q: %w", args[0], err)
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		return withStore(cmd, func(store *storage.CaptureStore) error {
			c, err := store.Get(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:       %s\n", c.ID)
			fmt.Fprintf(out, "received: %s\n", c.ReceivedAt.Format(time.RFC3339Nano))
			fmt.Fprintf(out, "source:   %s\n", c.Source)
			fmt.Fprintf(out, "kind:     %s\n", c.Kind)
			fmt.Fprintf(out, "payload:  % x (%d bytes)\n", c.Payload, len(c.Payload))

			msg, err := codec.Describe(c.Payload)
			if err != nil {
				fmt.Fprintf(out, "decoded:  %v\n", err)
				return nil
			}
			if asJSON {
				return printMessage(out, msg, true)
			}
			fmt.Fprintf(out, "decoded:  %s\n", transport.FormatMessage(msg))
			return nil
		})
	},
}

var capturesDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete captures",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]ksuid.KSUID, 0, len(args))
		for _, arg := range args {
			id, err := ksuid.Parse(arg)
			if err != nil {
				return fmt.Errorf("invalid capture id %q: %w", arg, err)
			}
			ids = append(ids, id)
		}

		return withStore(cmd, func(store *storage.CaptureStore) error {
			for _, id := range ids {
				if err := store.Delete(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(capturesCmd)
	capturesCmd.AddCommand(capturesListCmd)
	capturesCmd.AddCommand(capturesShowCmd)
	capturesCmd.AddCommand(capturesDeleteCmd)

	capturesCmd.PersistentFlags().StringP("data-dir", "d", "", "Capture data directory (default from config: ./captures)")
	capturesListCmd.Flags().IntP("limit", "n", 50, "Maximum number of captures to list; 0 lists all")
	capturesShowCmd.Flags().Bool("json", false, "Print the decoded message as JSON")
}

// withStore opens the capture store for the duration of fn
func withStore(cmd *cobra.Command, fn func(store *storage.CaptureStore) error) error {
	c, err := requireContainer()
	if err != nil {
		return err
	}

	dataDir := configFrom(cmd).Capture.DataDir
	if cmd.Flags().Changed("data-dir") {
		dataDir, _ = cmd.Flags().GetString("data-dir")
	}

	store, err := c.OpenStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(store)
}
