package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nakonechnik/SeaBattle/internal/protocol"
)

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List open rooms on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := Dial(cfg.ServerAddr)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			name := cfg.PlayerName
			if name == "" {
				name = fmt.Sprintf("scout-%d", time.Now().UnixNano()%100000)
			}
			if _, err := client.Connect(name); err != nil {
				return err
			}

			if err := client.Send(protocol.TypeGetRooms, nil); err != nil {
				return err
			}
			msg, err := client.WaitFor(protocol.TypeRoomsList)
			if err != nil {
				return err
			}

			var rooms protocol.RoomsListData
			if err := msg.DecodePayload(&rooms); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintRoomsList(rooms)
			return nil
		},
	}
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := Dial(cfg.ServerAddr)
			if err != nil {
				return err
			}
			defer func() { _ = client.conn.Close() }()

			started := time.Now()
			if err := client.Send(protocol.TypePing, nil); err != nil {
				return err
			}
			if _, err := client.WaitFor(protocol.TypePong); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("pong from %s in %s", cfg.ServerAddr, time.Since(started).Round(time.Millisecond)))
			return nil
		},
	}
}
