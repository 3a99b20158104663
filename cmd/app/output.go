package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/diagramlink"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/sanitize"
)

const cellLen = 48

func jsonMarshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func printJSON(v any) error {
	b, err := jsonMarshal(v)
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

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

// cell keeps table columns readable; full values are available with --json.
func cell(v string) string {
	return orDash(sanitize.Truncate(strings.ReplaceAll(v, "\n", " "), cellLen))
}

func printApplications(items []domain.Application) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			cell(item.Name),
			string(item.AssetCategory),
			string(item.Environment),
			cell(item.Owner),
			formatTime(item.UpdatedAt),
		})
	}
	printTable([]string{"ID", "NAME", "CATEGORY", "ENVIRONMENT", "OWNER", "UPDATED_AT"}, rows)
}

func printApplication(item domain.Application) {
	printKV([][2]string{
		{"id", item.ID},
		{"name", item.Name},
		{"description", orDash(item.Description)},
		{"owner", orDash(item.Owner)},
		{"team", orDash(item.Team)},
		{"category", item.AssetCategory.Info().Label},
		{"environment", string(item.Environment)},
		{"cui_types", orDash(strings.Join(item.CUITypes, ","))},
		{"data_classification", orDash(item.DataClassification)},
		{"external_connections", orDash(item.ExternalConnections)},
		{"zone", orDash(item.Zone)},
		{"tags", orDash(strings.Join(item.Tags, ","))},
		{"created_at", formatTime(item.CreatedAt)},
		{"updated_at", formatTime(item.UpdatedAt)},
	})
}

func printAssets(items []domain.Asset) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			cell(item.Name),
			string(item.AssetType),
			string(item.ScopeCategory),
			cell(item.Hostname),
			orDash(item.IPAddress),
			strconv.Itoa(item.Quantity),
			orDash(item.ApplicationID),
		})
	}
	printTable([]string{"ID", "NAME", "TYPE", "SCOPE", "HOSTNAME", "IP", "QTY", "APP"}, rows)
}

func printAsset(item domain.Asset) {
	printKV([][2]string{
		{"id", item.ID},
		{"name", item.Name},
		{"description", orDash(item.Description)},
		{"type", string(item.AssetType)},
		{"scope", item.ScopeCategory.Info().Label},
		{"hostname", orDash(item.Hostname)},
		{"ip_address", orDash(item.IPAddress)},
		{"location", orDash(item.Location)},
		{"owner", orDash(item.Owner)},
		{"quantity", strconv.Itoa(item.Quantity)},
		{"zone", orDash(item.Zone)},
		{"tags", orDash(strings.Join(item.Tags, ","))},
		{"application_id", orDash(item.ApplicationID)},
		{"created_at", formatTime(item.CreatedAt)},
		{"updated_at", formatTime(item.UpdatedAt)},
	})
}

func printDiagrams(items []domain.Diagram) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			cell(item.Name),
			string(item.Type),
			string(item.Source),
			item.ApplicationID,
			item.Version,
			formatTime(item.UpdatedAt),
		})
	}
	printTable([]string{"ID", "NAME", "TYPE", "SOURCE", "APP", "VERSION", "UPDATED_AT"}, rows)
}

func printDiagram(item domain.Diagram) {
	embed := "-"
	if item.Source.Linked() {
		if u, err := diagramlink.ValidateSourceURL(item.Source, item.SourceURL); err == nil {
			embed = u
		}
	}
	cats := make([]string, 0, len(item.AssetCategories))
	for _, c := range item.AssetCategories {
		cats = append(cats, string(c))
	}
	file := "-"
	if item.FileName != "" {
		file = fmt.Sprintf("%s (%s, %d bytes)", item.FileName, item.FileType, item.FileSize)
	}
	printKV([][2]string{
		{"id", item.ID},
		{"name", item.Name},
		{"description", orDash(item.Description)},
		{"type", string(item.Type)},
		{"application_id", item.ApplicationID},
		{"source", string(item.Source)},
		{"source_url", orDash(item.SourceURL)},
		{"embed_url", embed},
		{"file", file},
		{"mermaid_lines", strconv.Itoa(countLines(item.MermaidCode))},
		{"version", item.Version},
		{"asset_categories", orDash(strings.Join(cats, ","))},
		{"scoped_assets", orDash(strings.Join(item.ScopedAssets, ","))},
		{"cui_boundary", strconv.FormatBool(item.CUIBoundary)},
		{"security_zones", orDash(strings.Join(item.SecurityZones, ","))},
		{"related_controls", orDash(strings.Join(item.RelatedControls, ","))},
		{"annotations", cell(item.Annotations)},
		{"created_at", formatTime(item.CreatedAt)},
		{"updated_at", formatTime(item.UpdatedAt)},
	})
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(strings.TrimRight(s, "\n"), "\n") + 1
}

func printConnections(items []domain.Connection) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		from, to := item.SourceAppID, item.TargetAppID
		if from == "" {
			from, to = item.SourceAssetID, item.TargetAssetID
		}
		rows = append(rows, []string{
			item.ID,
			from,
			to,
			cell(item.DataType),
			orDash(item.Protocol),
			strconv.FormatBool(item.Encrypted),
			string(item.Direction),
		})
	}
	printTable([]string{"ID", "FROM", "TO", "DATA", "PROTOCOL", "ENCRYPTED", "DIRECTION"}, rows)
}

func printZones(items []domain.Zone) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			cell(item.Name),
			string(item.Type),
			strconv.Itoa(len(item.ApplicationIDs)),
			orDash(item.Color),
		})
	}
	printTable([]string{"ID", "NAME", "TYPE", "APPS", "COLOR"}, rows)
}

func printCategories() {
	rows := make([][]string, 0, len(domain.AssetCategories()))
	for _, c := range domain.AssetCategories() {
		info := c.Info()
		rows = append(rows, []string{string(c), info.Label, info.Color, info.Description})
	}
	printTable([]string{"KEY", "LABEL", "COLOR", "DESCRIPTION"}, rows)
}

func printDrawio(doc diagramlink.DrawioDocument) {
	fmt.Println(doc.Summary())
	for _, page := range doc.Pages {
		fmt.Printf("\npage %s\n", orDash(page.Name))
		rows := make([][]string, 0, len(page.Shapes)+len(page.Links))
		for _, shape := range page.Shapes {
			rows = append(rows, []string{"shape", shape.ID, cell(shape.Label), "", ""})
		}
		for _, link := range page.Links {
			rows = append(rows, []string{"link", link.ID, cell(link.Label), link.Source, link.Target})
		}
		printTable([]string{"KIND", "ID", "LABEL", "SOURCE", "TARGET"}, rows)
	}
}

func printStorageUsage(u storageUsage) {
	printKV([][2]string{
		{"usage_mib", fmt.Sprintf("%.2f", float64(u.UsageBytes)/(1<<20))},
		{"warn_mib", fmt.Sprintf("%.2f", float64(u.WarnBytes)/(1<<20))},
		{"hard_mib", fmt.Sprintf("%.2f", float64(u.HardBytes)/(1<<20))},
		{"max_entry_mib", fmt.Sprintf("%.2f", float64(u.MaxEntryBytes)/(1<<20))},
		{"near_limit", strconv.FormatBool(u.NearLimit)},
		{"at_limit", strconv.FormatBool(u.AtLimit)},
	})
}

func printMetrics(samples []metricSample) {
	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		labels := make([]string, 0, len(s.Labels))
		for k, v := range s.Labels {
			labels = append(labels, k+"="+v)
		}
		sort.Strings(labels)
		rows = append(rows, []string{s.Name, orDash(strings.Join(labels, ",")), strconv.FormatFloat(s.Value, 'f', -1, 64)})
	}
	printTable([]string{"METRIC", "LABELS", "VALUE"}, rows)
}

func printMetadata(m domain.Metadata) {
	printKV([][2]string{
		{"org_name", orDash(m.OrgName)},
		{"created_at", formatTime(m.CreatedAt)},
		{"last_modified", formatTime(m.LastModified)},
	})
}
