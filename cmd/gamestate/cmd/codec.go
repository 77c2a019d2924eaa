/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/gamestate/pkg/codec"
	"github.com/ssargent/gamestate/pkg/transport"
)

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Decode and encode the sample gamestate records",
	Long: `Decode the sample datagram and encode the sample tuple, printing the
decoded tuple and the encoded bytes.

Example:
  gamestate demo`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := codec.NewRecordCodec()
		out := cmd.OutOrStdout()

		record, err := c.Decode(demoDatagram)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, formatTuple(record.Values()))

		encoded, err := c.EncodeValues(demoValues...)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, codec.FormatHex(encoded))
		return nil
	},
}

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a datagram given as hex",
	Long: `Decode a gamestate record, input packet or whoami packet. The packet
kind is chosen by length: 18 bytes is a gamestate record, 2 bytes an input
packet and 1 byte a whoami packet.

Spaces, colons, dashes and a 0x prefix are ignored.

Examples:
  gamestate decode 0000606401900064 00c8006400010001ff00
  gamestate decode --json 0100`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		data, err := codec.ParseHex(strings.Join(args, ""))
		if err != nil {
			return err
		}

		msg, err := codec.Describe(data)
		if err != nil {
			return err
		}

		return printMessage(cmd.OutOrStdout(), msg, asJSON)
	},
}

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode [<v1> ... <v10>]",
	Short: "Encode a gamestate record or companion packet as hex",
	Long: `Encode ten values (eight int16 fields, then two uint8 flags) into the
18-byte gamestate record. With --packet input or --packet whoami the
companion packets are encoded from flags instead.

Examples:
  gamestate encode 0 0 400 100 200 100 1 1 0 0
  gamestate encode --packet input --up
  gamestate encode --packet whoami --server`,
	RunE: func(cmd *cobra.Command, args []string) error {
		packet, _ := cmd.Flags().GetString("packet")

		data, err := encodePacket(cmd, packet, args)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), codec.FormatHex(data))
		return nil
	},
}

var (
	demoDatagram = []byte{
		0x00, 0x00, 0x60, 0x64, 0x01, 0x90, 0x00, 0x64, 0x00,
		0xc8, 0x00, 0x64, 0x00, 0x01, 0x00, 0x01, 0xff, 0x00,
	}
	demoValues = []int{0, 0, 400, 100, 200, 100, 1, 1, 0, 0}
)

func init() {
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)

	decodeCmd.Flags().Bool("json", false, "Print the decoded message as JSON")

	encodeCmd.Flags().String("packet", codec.KindGamestate.String(), "Packet to encode (gamestate, input, whoami)")
	encodeCmd.Flags().Bool("up", false, "Input packet: up pressed")
	encodeCmd.Flags().Bool("down", false, "Input packet: down pressed")
	encodeCmd.Flags().Bool("server", false, "Whoami packet: sender is the server")
}

func encodePacket(cmd *cobra.Command, packet string, args []string) ([]byte, error) {
	switch packet {
	case codec.KindGamestate.String():
		values, err := parseValues(args)
		if err != nil {
			return nil, err
		}
		return codec.NewRecordCodec().EncodeValues(values...)
	case codec.KindInput.String():
		if len(args) > 0 {
			return nil, fmt.Errorf("input packets take --up and --down, not arguments")
		}
		up, _ := cmd.Flags().GetBool("up")
		down, _ := cmd.Flags().GetBool("down")
		return codec.EncodeInput(codec.InputPacket{Up: up, Down: down}), nil
	case codec.KindWhoami.String():
		if len(args) > 0 {
			return nil, fmt.Errorf("whoami packets take --server, not arguments")
		}
		server, _ := cmd.Flags().GetBool("server")
		return codec.EncodeWhoami(codec.WhoamiPacket{IsServer: server}), nil
	default:
		return nil, fmt.Errorf("unknown packet %q", packet)
	}
}

// parseValues converts command line arguments to record values. The count
// is checked by the codec.
func parseValues(args []string) ([]int, error) {
	values := make([]int, 0, len(args))
	for _, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func printMessage(w io.Writer, msg *codec.Message, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(msg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if msg.Gamestate != nil {
		fmt.Fprintln(w, formatTuple(msg.Values))
		return nil
	}
	fmt.Fprintln(w, transport.FormatMessage(msg))
	return nil
}

// formatTuple renders values as (v1, v2, ...)
func formatTuple(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
