package application

import (
	"context"
	"slices"
	"strings"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/diagramlink"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/sanitize"
	"go.uber.org/zap"
)

type DiagramInput struct {
	Name            string
	Description     string
	Type            domain.DiagramType
	ApplicationID   string
	Source          domain.DiagramSource
	SourceURL       string
	MermaidCode     string
	FileData        string
	FileName        string
	FileType        string
	FileSize        int64
	Version         string
	AssetCategories []domain.AssetCategory
	ScopedAssets    []string
	Annotations     string
	CUIBoundary     bool
	SecurityZones   []string
	RelatedControls []string
}

type DiagramPatch struct {
	Name            *string
	Description     *string
	Type            *domain.DiagramType
	ApplicationID   *string
	Source          *domain.DiagramSource
	SourceURL       *string
	MermaidCode     *string
	FileData        *string
	FileName        *string
	FileType        *string
	FileSize        *int64
	Version         *string
	AssetCategories *[]domain.AssetCategory
	ScopedAssets    *[]string
	Annotations     *string
	CUIBoundary     *bool
	SecurityZones   *[]string
	RelatedControls *[]string
}

func (s *RecordStore) AddDiagram(ctx context.Context, in DiagramInput) (domain.Diagram, error) {
	if err := requireName(in.Name); err != nil {
		return domain.Diagram{}, err
	}
	source := in.Source.OrDefault()
	sourceURL, err := checkSourceURL(source, in.SourceURL)
	if err != nil {
		return domain.Diagram{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	appID, err := s.diagramApplication(in.ApplicationID)
	if err != nil {
		return domain.Diagram{}, err
	}

	now := s.timestamp()
	diagram := domain.Diagram{
		ID:              s.newID(prefixDiagram, now),
		Name:            clip(in.Name),
		Description:     clip(in.Description),
		Type:            in.Type.OrDefault(),
		ApplicationID:   appID,
		Source:          source,
		SourceURL:       sourceURL,
		MermaidCode:     in.MermaidCode,
		FileData:        in.FileData,
		FileName:        clip(in.FileName),
		FileType:        clip(in.FileType),
		FileSize:        max(in.FileSize, 0),
		Version:         defaultString(clip(in.Version), "1.0"),
		AssetCategories: normalizeCategories(in.AssetCategories),
		ScopedAssets:    clipAll(in.ScopedAssets),
		Annotations:     in.Annotations,
		CUIBoundary:     in.CUIBoundary,
		SecurityZones:   clipAll(in.SecurityZones),
		RelatedControls: clipAll(in.RelatedControls),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.doc.Diagrams = append(s.doc.Diagrams, diagram)
	s.commit(ctx, now)

	s.logger.Debug("diagram added", zap.String("id", diagram.ID), zap.String("application", appID))
	return cloneDiagram(diagram), nil
}

// UpdateDiagram applies patch. A changed source or link is revalidated
// against the combined result.
func (s *RecordStore) UpdateDiagram(ctx context.Context, id string, patch DiagramPatch) (domain.Diagram, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.diagramIndex(id)
	if i < 0 {
		return domain.Diagram{}, false, nil
	}
	if patch.Name != nil {
		if err := requireName(*patch.Name); err != nil {
			return domain.Diagram{}, true, err
		}
	}
	diagram := &s.doc.Diagrams[i]

	source, sourceURL := diagram.Source, diagram.SourceURL
	if patch.Source != nil {
		source = patch.Source.OrDefault()
	}
	if patch.SourceURL != nil {
		sourceURL = *patch.SourceURL
	}
	if patch.Source != nil || patch.SourceURL != nil {
		var err error
		if sourceURL, err = checkSourceURL(source, sourceURL); err != nil {
			return domain.Diagram{}, true, err
		}
	}
	appID := diagram.ApplicationID
	if patch.ApplicationID != nil {
		var err error
		if appID, err = s.diagramApplication(*patch.ApplicationID); err != nil {
			return domain.Diagram{}, true, err
		}
	}

	diagram.Source = source
	diagram.SourceURL = sourceURL
	diagram.ApplicationID = appID
	if patch.Name != nil {
		diagram.Name = clip(*patch.Name)
	}
	if patch.Description != nil {
		diagram.Description = clip(*patch.Description)
	}
	if patch.Type != nil {
		diagram.Type = patch.Type.OrDefault()
	}
	if patch.MermaidCode != nil {
		diagram.MermaidCode = *patch.MermaidCode
	}
	if patch.FileData != nil {
		diagram.FileData = *patch.FileData
	}
	if patch.FileName != nil {
		diagram.FileName = clip(*patch.FileName)
	}
	if patch.FileType != nil {
		diagram.FileType = clip(*patch.FileType)
	}
	if patch.FileSize != nil {
		diagram.FileSize = max(*patch.FileSize, 0)
	}
	if patch.Version != nil {
		diagram.Version = defaultString(clip(*patch.Version), diagram.Version)
	}
	if patch.AssetCategories != nil {
		diagram.AssetCategories = normalizeCategories(*patch.AssetCategories)
	}
	if patch.ScopedAssets != nil {
		diagram.ScopedAssets = clipAll(*patch.ScopedAssets)
	}
	if patch.Annotations != nil {
		diagram.Annotations = *patch.Annotations
	}
	if patch.CUIBoundary != nil {
		diagram.CUIBoundary = *patch.CUIBoundary
	}
	if patch.SecurityZones != nil {
		diagram.SecurityZones = clipAll(*patch.SecurityZones)
	}
	if patch.RelatedControls != nil {
		diagram.RelatedControls = clipAll(*patch.RelatedControls)
	}

	now := s.timestamp()
	diagram.UpdatedAt = now
	s.commit(ctx, now)
	return cloneDiagram(*diagram), true, nil
}

func (s *RecordStore) RemoveDiagram(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.diagramIndex(id)
	if i < 0 {
		return false
	}
	s.doc.Diagrams = slices.Delete(s.doc.Diagrams, i, i+1)
	s.commit(ctx, s.timestamp())
	return true
}

func (s *RecordStore) Diagram(id string) (domain.Diagram, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.diagramIndex(id)
	if i < 0 {
		return domain.Diagram{}, false
	}
	return cloneDiagram(s.doc.Diagrams[i]), true
}

func (s *RecordStore) Diagrams() []domain.Diagram {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Diagram, 0, len(s.doc.Diagrams))
	for _, d := range s.doc.Diagrams {
		out = append(out, cloneDiagram(d))
	}
	return out
}

// diagramApplication resolves the owning application id. Empty means global.
func (s *RecordStore) diagramApplication(appID string) (string, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" || appID == domain.GlobalApplicationID {
		return domain.GlobalApplicationID, nil
	}
	if s.applicationIndex(appID) < 0 {
		return "", domain.NewValidationError("applicationId", "unknown application "+appID)
	}
	return appID, nil
}

// checkSourceURL requires a parseable link for figma and lucidchart and a
// safe URL for everything else.
func checkSourceURL(source domain.DiagramSource, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if source.Linked() {
		if raw == "" {
			return "", domain.NewValidationError("sourceUrl", "is required for "+string(source))
		}
		if _, err := diagramlink.ValidateSourceURL(source, raw); err != nil {
			return "", domain.NewValidationError("sourceUrl", err.Error())
		}
		return raw, nil
	}
	if raw == "" {
		return "", nil
	}
	safe := sanitize.URL(raw)
	if safe == "" {
		return "", domain.NewValidationError("sourceUrl", "unsafe url")
	}
	return safe, nil
}

func (s *RecordStore) diagramIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.doc.Diagrams, func(d domain.Diagram) bool { return d.ID == id })
}
