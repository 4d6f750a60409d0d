package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/goccy/go-json"
)

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

func printEquipment(items []domain.EquipmentSummary) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.EquipeID,
			item.Name,
			item.Type,
			item.Brand,
			item.ModelNumber,
			strconv.FormatInt(item.ItemCount, 10),
		})
	}
	printTable([]string{"ID", "NAME", "TYPE", "BRAND", "MODEL", "ITEMS"}, rows)
}

func printItems(items []domain.Item) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ItemID,
			item.EquipeID,
			item.SerialNumber,
			item.Status,
			item.ObjectID,
			item.CreateDate,
		})
	}
	printTable([]string{"ID", "EQUIPMENT", "SERIAL", "STATUS", "OBJECT", "CREATED"}, rows)
}

func printHistory(records []domain.HistoryRecord) {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.StatusID,
			rec.CreateDate,
			rec.Status,
			rec.ObjectID,
			orDash(rec.RoomName),
			rec.UserID,
			rec.Other,
		})
	}
	printTable([]string{"STATUS_ID", "AT", "STATUS", "OBJECT", "ROOM", "USER", "NOTE"}, rows)
}

func printSummary(s domain.DeviceSummary) {
	printKV([][2]string{
		{"total", strconv.FormatInt(s.TotalCount, 10)},
		{"active", strconv.FormatInt(s.ActiveCount, 10)},
		{"inactive", strconv.FormatInt(s.InactiveCount, 10)},
		{"types", strconv.FormatInt(s.TypeCount, 10)},
		{"brands", strconv.FormatInt(s.BrandCount, 10)},
	})
	if len(s.BrandDistribution) == 0 {
		return
	}
	fmt.Println()
	rows := make([][]string, 0, len(s.BrandDistribution))
	for _, b := range s.BrandDistribution {
		rows = append(rows, []string{b.Brand, strconv.FormatInt(b.Count, 10)})
	}
	printTable([]string{"BRAND", "COUNT"}, rows)
}
