/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/gamestate/pkg/codec"
	"github.com/ssargent/gamestate/pkg/transport"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <hex> | send --values <v1> ... <v10>",
	Short: "Send a datagram to a listener",
	Long: `Send a datagram given as hex, or with --values a gamestate record given as
ten decimal values, to a UDP address. Hex may be split across arguments. With --wait the command waits for one reply and prints it,
which pairs with a listener started with --echo.

Examples:
  gamestate send 0100
  gamestate send 00 00 00 00 01 90 00 64 00 c8
  gamestate send --values 0 0 400 100 200 100 1 1 0 0 --addr localhost:2018
  gamestate send 01 --count 0 --interval 100ms
  gamestate send 0100 --wait 1s`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.ListenAddr()
		}
		count, _ := cmd.Flags().GetInt("count")
		interval, _ := cmd.Flags().GetDuration("interval")
		wait, _ := cmd.Flags().GetDuration("wait")
		asValues, _ := cmd.Flags().GetBool("values")

		payload, err := sendPayload(args, asValues)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sender, err := transport.Dial(ctx, addr)
		if err != nil {
			return err
		}
		defer sender.Close()

		out := cmd.OutOrStdout()
		sent, err := sender.Repeat(ctx, payload, count, interval)
		fmt.Fprintf(out, "sent %d datagram(s) of %d bytes to %s\n", sent, len(payload), sender.RemoteAddr())
		if err != nil {
			return err
		}

		if wait <= 0 {
			return nil
		}

		reply, err := sender.Receive(wait)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "reply % x (%d bytes)\n", reply, len(reply))
		if msg, err := codec.Describe(reply); err == nil {
			fmt.Fprintf(out, "  %s\n", transport.FormatMessage(msg))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().String("addr", "", "Destination host:port (default: the configured listen address)")
	sendCmd.Flags().Int("count", 1, "Number of datagrams to send; 0 repeats until interrupted")
	sendCmd.Flags().Duration("interval", 0, "Delay between datagrams")
	sendCmd.Flags().Duration("wait", 0, "Wait this long for a reply after sending")
	sendCmd.Flags().Bool("values", false, "Treat the arguments as the ten decimal values of a gamestate record")
}

// sendPayload builds the datagram from hex, or from record values when
// asValues is set
func sendPayload(args []string, asValues bool) ([]byte, error) {
	if asValues {
		if len(args) != codec.ValueCount {
			return nil, fmt.Errorf("--values needs %d values, got %d", codec.ValueCount, len(args))
		}
		values, err := parseValues(args)
		if err != nil {
			return nil, err
		}
		return codec.NewRecordCodec().EncodeValues(values...)
	}

	data, err := codec.ParseHex(strings.Join(args, ""))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	return data, nil
}
