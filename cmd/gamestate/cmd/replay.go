/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/gamestate/pkg/codec"
	"github.com/ssargent/gamestate/pkg/recording"
	"github.com/ssargent/gamestate/pkg/transport"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Send the datagrams of a recording again",
	Long: `Send every datagram of a file written by 'gamestate listen --record' to
a UDP address, keeping the recorded timing. With --dry-run the entries are
printed instead of sent.

Examples:
  gamestate replay ./session.rec
  gamestate replay ./session.rec --addr localhost:2018 --speed 2
  gamestate replay ./session.rec --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)
		out := cmd.OutOrStdout()

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			entries, err := recording.ReadAll(args[0])
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %-21s  % x\n", e.ReceivedAt.Format(time.RFC3339Nano), e.Source, e.Payload)
				if msg, derr := codec.Describe(e.Payload); derr == nil {
					fmt.Fprintf(out, "  %s\n", transport.FormatMessage(msg))
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d entries\n", len(entries))
			return nil
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.ListenAddr()
		}
		speed, _ := cmd.Flags().GetFloat64("speed")

		reader, err := recording.NewReader(recording.ReaderConfig{FilePath: args[0]})
		if err != nil {
			return err
		}
		defer reader.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sender, err := transport.Dial(ctx, addr)
		if err != nil {
			return err
		}
		defer sender.Close()

		sent, err := recording.Replay(ctx, reader, sender, speed)
		fmt.Fprintf(out, "replayed %d datagram(s) to %s\n", sent, sender.RemoteAddr())
		return err
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().String("addr", "", "Destination host:port (default: the configured listen address)")
	replayCmd.Flags().Float64("speed", 1, "Playback speed; 0 sends back to back")
	replayCmd.Flags().Bool("dry-run", false, "Print the recording instead of sending it")
}
