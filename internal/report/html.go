// Package report renders a self-contained HTML inventory summary. Every
// stored value goes through the sanitize escapers before it reaches markup.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/sanitize"
)

const descriptionLen = 160

func WriteHTML(w io.Writer, doc domain.Document) error {
	bw := bufio.NewWriter(w)
	p := &printer{w: bw}

	title := "CMMC Inventory"
	if doc.Metadata.OrgName != "" {
		title = doc.Metadata.OrgName + " - " + title
	}
	p.line(`<!DOCTYPE html>`)
	p.line(`<html lang="en"><head><meta charset="utf-8"><title>%s</title></head><body>`, sanitize.HTML(title))
	p.line(`<h1>%s</h1>`, sanitize.HTML(title))
	if !doc.Metadata.LastModified.IsZero() {
		p.line(`<p>Last modified %s</p>`, sanitize.HTML(doc.Metadata.LastModified.Format("2006-01-02 15:04 MST")))
	}

	p.categoryLegend()
	p.applications(doc)
	p.assets(doc.Assets)
	p.diagrams(doc)
	p.connections(doc)
	p.zones(doc)

	p.line(`</body></html>`)
	if p.err != nil {
		return p.err
	}
	return bw.Flush()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) table(caption string, headers []string, rows [][]string) {
	p.line(`<h2>%s</h2>`, sanitize.HTML(caption))
	if len(rows) == 0 {
		p.line(`<p>None recorded.</p>`)
		return
	}
	p.line(`<table>`)
	p.line(`<tr><th>%s</th></tr>`, strings.Join(headers, "</th><th>"))
	for _, row := range rows {
		p.line(`<tr><td>%s</td></tr>`, strings.Join(row, "</td><td>"))
	}
	p.line(`</table>`)
}

func (p *printer) categoryLegend() {
	p.line(`<ul class="legend">`)
	for _, c := range domain.AssetCategories() {
		info := c.Info()
		p.line(`<li>%s: %s</li>`, categoryBadge(c), sanitize.HTML(info.Description))
	}
	p.line(`</ul>`)
}

func categoryBadge(c domain.AssetCategory) string {
	info := c.OrDefault().Info()
	return fmt.Sprintf(`<span class="badge" data-category="%s" style="background:%s">%s</span>`,
		sanitize.Attr(string(c.OrDefault())), sanitize.Attr(info.Color), sanitize.HTML(info.Label))
}

func text(value string) string {
	return sanitize.HTML(sanitize.Truncate(value, descriptionLen))
}

func (p *printer) applications(doc domain.Document) {
	rows := make([][]string, 0, len(doc.Applications))
	for _, a := range doc.Applications {
		rows = append(rows, []string{
			sanitize.HTML(a.Name),
			categoryBadge(a.AssetCategory),
			sanitize.HTML(string(a.Environment.OrDefault())),
			sanitize.HTML(a.Owner),
			text(a.Description),
		})
	}
	p.table("Applications", []string{"Name", "Category", "Environment", "Owner", "Description"}, rows)
}

func (p *printer) assets(assets []domain.Asset) {
	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, []string{
			sanitize.HTML(a.Name),
			sanitize.HTML(string(a.AssetType.OrDefault())),
			categoryBadge(a.ScopeCategory),
			sanitize.HTML(a.Hostname),
			sanitize.HTML(a.IPAddress),
			fmt.Sprint(a.Quantity),
		})
	}
	p.table("Assets", []string{"Name", "Type", "Scope", "Hostname", "IP", "Qty"}, rows)
}

func (p *printer) diagrams(doc domain.Document) {
	names := applicationNames(doc)
	rows := make([][]string, 0, len(doc.Diagrams))
	for _, d := range doc.Diagrams {
		owner := "All applications"
		if !d.Global() {
			owner = names[d.ApplicationID]
		}
		link := "-"
		if href := sanitize.URL(d.SourceURL); href != "" {
			link = fmt.Sprintf(`<a href="%s" rel="noopener noreferrer">%s</a>`, sanitize.Attr(href), sanitize.HTML(string(d.Source)))
		}
		rows = append(rows, []string{
			sanitize.HTML(d.Name),
			sanitize.HTML(string(d.Type.OrDefault())),
			sanitize.HTML(owner),
			link,
			sanitize.HTML(d.Version),
			fmt.Sprint(d.CUIBoundary),
		})
	}
	p.table("Diagrams", []string{"Name", "Type", "Application", "Source", "Version", "CUI boundary"}, rows)
}

func (p *printer) connections(doc domain.Document) {
	names := applicationNames(doc)
	for _, a := range doc.Assets {
		names[a.ID] = a.Name
	}
	rows := make([][]string, 0, len(doc.Connections))
	for _, c := range doc.Connections {
		from, to := c.SourceAppID, c.TargetAppID
		if from == "" {
			from, to = c.SourceAssetID, c.TargetAssetID
		}
		rows = append(rows, []string{
			sanitize.HTML(names[from]),
			sanitize.HTML(names[to]),
			sanitize.HTML(c.DataType),
			sanitize.HTML(c.Protocol),
			fmt.Sprint(c.Encrypted),
			sanitize.HTML(string(c.Direction.OrDefault())),
		})
	}
	p.table("Connections", []string{"From", "To", "Data", "Protocol", "Encrypted", "Direction"}, rows)
}

func (p *printer) zones(doc domain.Document) {
	names := applicationNames(doc)
	rows := make([][]string, 0, len(doc.Zones))
	for _, z := range doc.Zones {
		members := make([]string, 0, len(z.ApplicationIDs))
		for _, id := range z.ApplicationIDs {
			if name, ok := names[id]; ok {
				members = append(members, sanitize.HTML(name))
			}
		}
		rows = append(rows, []string{
			sanitize.HTML(z.Name),
			sanitize.HTML(string(z.Type.OrDefault())),
			strings.Join(members, ", "),
			text(z.Description),
		})
	}
	p.table("Zones", []string{"Name", "Type", "Applications", "Description"}, rows)
}

func applicationNames(doc domain.Document) map[string]string {
	names := make(map[string]string, len(doc.Applications))
	for _, a := range doc.Applications {
		names[a.ID] = a.Name
	}
	return names
}
