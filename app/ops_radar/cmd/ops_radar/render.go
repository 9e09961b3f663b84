package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/storage"
)

func renderSnapshot(w io.Writer, snap *engine.Snapshot) {
	fmt.Fprintf(w, "Run %s  (%d days, seed %d, %s)\n\n",
		snap.ID, snap.Days, snap.Seed, snap.GeneratedAt.Format("2006-01-02 15:04:05"))

	k := snap.KPIs
	kpi := tablewriter.NewWriter(w)
	kpi.SetHeader([]string{"Metric", "Value"})
	kpi.Append([]string{"Total revenue", "$" + humanize.CommafWithDigits(k.Revenue.Total, 2)})
	kpi.Append([]string{"Orders", humanize.Comma(int64(k.Revenue.TotalOrders))})
	kpi.Append([]string{"Avg order value", "$" + humanize.CommafWithDigits(k.Revenue.AvgOrder, 2)})
	kpi.Append([]string{"Satisfaction", strconv.FormatFloat(k.Revenue.Satisfaction, 'f', 2, 64)})
	kpi.Append([]string{"Inventory value", "$" + humanize.CommafWithDigits(k.Inventory.TotalValue, 0)})
	kpi.Append([]string{"Low stock rows", strconv.Itoa(k.Inventory.LowStockCount)})
	kpi.Append([]string{"On-time rate", fmt.Sprintf("%.1f%%", k.Delivery.OnTimeRate)})
	kpi.Append([]string{"Avg delivery time", fmt.Sprintf("%.1fh", k.Delivery.AvgTime)})
	kpi.Append([]string{"Forecast revenue (30d)", "$" + humanize.CommafWithDigits(snap.Forecast.PredictedRevenue, 0)})
	if g := snap.Forecast.GrowthRate; g != nil {
		kpi.Append([]string{"Week over week", fmt.Sprintf("%+.1f%%", *g)})
	}
	kpi.Render()

	fmt.Fprintln(w)
	if len(snap.Insights) == 0 {
		fmt.Fprintln(w, "No insights.")
	} else {
		ins := tablewriter.NewWriter(w)
		ins.SetHeader([]string{"Type", "Title", "Message"})
		ins.SetAutoWrapText(true)
		for _, in := range snap.Insights {
			ins.Append([]string{in.Type, in.Icon + " " + in.Title, in.Message})
		}
		ins.Render()
	}

	if s := snap.Summary; s != nil {
		fmt.Fprintf(w, "\n%s\n%s\n", s.Headline, s.Summary)
		for _, a := range s.Actions {
			fmt.Fprintf(w, "  - %s\n", a)
		}
	}
}

func renderRuns(w io.Writer, records []*storage.RunRecord) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Generated", "Days", "Seed", "Insights", "Revenue", "On-time"})
	for _, r := range records {
		table.Append([]string{
			r.ID,
			humanize.Time(r.GeneratedAt),
			strconv.Itoa(r.Days),
			strconv.FormatInt(r.Seed, 10),
			strconv.Itoa(r.InsightCount),
			"$" + humanize.CommafWithDigits(r.TotalRevenue, 0),
			fmt.Sprintf("%.1f%%", r.OnTimeRate),
		})
	}
	table.Render()
}
