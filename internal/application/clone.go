package application

import (
	"slices"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
)

// Records handed out by the store never share slices with the live document.

func cloneStrings(in []string) []string {
	return append([]string{}, in...)
}

func cloneApplication(a domain.Application) domain.Application {
	a.CUITypes = cloneStrings(a.CUITypes)
	a.Tags = cloneStrings(a.Tags)
	return a
}

func cloneAsset(a domain.Asset) domain.Asset {
	a.Tags = cloneStrings(a.Tags)
	return a
}

func cloneDiagram(d domain.Diagram) domain.Diagram {
	d.AssetCategories = append([]domain.AssetCategory{}, d.AssetCategories...)
	d.ScopedAssets = cloneStrings(d.ScopedAssets)
	d.SecurityZones = cloneStrings(d.SecurityZones)
	d.RelatedControls = cloneStrings(d.RelatedControls)
	return d
}

func cloneZone(z domain.Zone) domain.Zone {
	z.ApplicationIDs = cloneStrings(z.ApplicationIDs)
	return z
}

func cloneDocument(doc *domain.Document) domain.Document {
	out := domain.Document{
		Applications: make([]domain.Application, 0, len(doc.Applications)),
		Assets:       make([]domain.Asset, 0, len(doc.Assets)),
		Diagrams:     make([]domain.Diagram, 0, len(doc.Diagrams)),
		Connections:  slices.Clone(doc.Connections),
		Zones:        make([]domain.Zone, 0, len(doc.Zones)),
		Metadata:     doc.Metadata,
	}
	if out.Connections == nil {
		out.Connections = []domain.Connection{}
	}
	for _, a := range doc.Applications {
		out.Applications = append(out.Applications, cloneApplication(a))
	}
	for _, a := range doc.Assets {
		out.Assets = append(out.Assets, cloneAsset(a))
	}
	for _, d := range doc.Diagrams {
		out.Diagrams = append(out.Diagrams, cloneDiagram(d))
	}
	for _, z := range doc.Zones {
		out.Zones = append(out.Zones, cloneZone(z))
	}
	return out
}
