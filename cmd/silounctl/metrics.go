package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli"
)

var metricsCommand = cli.Command{
	Name:  "metrics",
	Usage: "fetch and render the Prometheus metrics snapshot",
	Action: func(ctx *cli.Context) error {
		addr := ctx.GlobalString("metricsserver")
		body, err := fetch(ctx, addr, "/metrics")
		if err != nil {
			return fmt.Errorf("unable to reach metrics endpoint: %w", err)
		}

		var parser expfmt.TextParser
		families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("unable to parse metrics: %w", err)
		}

		names := make([]string, 0, len(families))
		for name := range families {
			names = append(names, name)
		}
		sort.Strings(names)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Metric", "Labels", "Value"})
		for _, name := range names {
			for _, m := range families[name].GetMetric() {
				t.AppendRow(table.Row{name, labelString(m.GetLabel()), metricValue(families[name].GetType(), m)})
			}
		}
		t.Render()
		return nil
	},
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	s := ""
	for i, l := range labels {
		if i > 0 {
			s += ","
		}
		s += l.GetName() + "=" + l.GetValue()
	}
	return s
}

func metricValue(kind dto.MetricType, m *dto.Metric) float64 {
	switch kind {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	default:
		return 0
	}
}
