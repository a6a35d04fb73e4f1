package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli"

	"github.com/silonet/silorun/introspection"
)

var listEventsCommand = cli.Command{
	Name:  "events",
	Usage: "dump the introspection event log",
	Action: func(ctx *cli.Context) error {
		events, err := fetchEvents(ctx)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Seq", "Kind", "NodeID", "NodeName", "ChanID", "ChanName", "Handle", "Handles"})
		for _, e := range events {
			t.AppendRow(table.Row{e.Seq, e.Kind, e.NodeID, e.NodeName, e.ChanID, e.ChanName, e.Handle, e.Handles})
		}
		t.Render()
		return nil
	},
}

var listNodesCommand = cli.Command{
	Name:  "nodes",
	Usage: "list currently live nodes, derived from the event log",
	Action: func(ctx *cli.Context) error {
		events, err := fetchEvents(ctx)
		if err != nil {
			return err
		}

		live := make(map[uint64]string)
		for _, e := range events {
			switch e.Kind {
			case introspection.NodeCreated:
				live[e.NodeID] = e.NodeName
			case introspection.NodeDestroyed:
				delete(live, e.NodeID)
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"NodeID", "Name"})
		for id, name := range live {
			t.AppendRow(table.Row{id, name})
		}
		t.Render()
		return nil
	},
}

func fetchEvents(ctx *cli.Context) ([]introspection.Event, error) {
	addr := ctx.GlobalString("introspectionserver")
	body, err := fetch(ctx, addr, "/?format=json")
	if err != nil {
		return nil, fmt.Errorf("unable to reach introspection endpoint: %w", err)
	}

	var events []introspection.Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("unable to decode event log: %w", err)
	}
	return events, nil
}
