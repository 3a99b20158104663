package application

import (
	"context"
	"slices"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"go.uber.org/zap"
)

type ApplicationInput struct {
	Name                string
	Description         string
	Owner               string
	Team                string
	AssetCategory       domain.AssetCategory
	Environment         domain.Environment
	CUITypes            []string
	DataClassification  string
	ExternalConnections string
	Zone                string
	Tags                []string
}

// ApplicationPatch changes only the fields that are set.
type ApplicationPatch struct {
	Name                *string
	Description         *string
	Owner               *string
	Team                *string
	AssetCategory       *domain.AssetCategory
	Environment         *domain.Environment
	CUITypes            *[]string
	DataClassification  *string
	ExternalConnections *string
	Zone                *string
	Tags                *[]string
}

func (s *RecordStore) AddApplication(ctx context.Context, in ApplicationInput) (domain.Application, error) {
	if err := requireName(in.Name); err != nil {
		return domain.Application{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	app := domain.Application{
		ID:                  s.newID(prefixApplication, now),
		Name:                clip(in.Name),
		Description:         clip(in.Description),
		Owner:               clip(in.Owner),
		Team:                clip(in.Team),
		AssetCategory:       in.AssetCategory.OrDefault(),
		Environment:         in.Environment.OrDefault(),
		CUITypes:            clipAll(in.CUITypes),
		DataClassification:  clip(in.DataClassification),
		ExternalConnections: clip(in.ExternalConnections),
		Zone:                clip(in.Zone),
		Tags:                clipAll(in.Tags),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	s.doc.Applications = append(s.doc.Applications, app)
	s.commit(ctx, now)

	s.logger.Debug("application added", zap.String("id", app.ID))
	return cloneApplication(app), nil
}

// UpdateApplication applies patch to the application with id. The bool is
// false when no such application exists.
func (s *RecordStore) UpdateApplication(ctx context.Context, id string, patch ApplicationPatch) (domain.Application, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.applicationIndex(id)
	if i < 0 {
		return domain.Application{}, false, nil
	}
	if patch.Name != nil {
		if err := requireName(*patch.Name); err != nil {
			return domain.Application{}, true, err
		}
	}
	app := &s.doc.Applications[i]

	if patch.Name != nil {
		app.Name = clip(*patch.Name)
	}
	if patch.Description != nil {
		app.Description = clip(*patch.Description)
	}
	if patch.Owner != nil {
		app.Owner = clip(*patch.Owner)
	}
	if patch.Team != nil {
		app.Team = clip(*patch.Team)
	}
	if patch.AssetCategory != nil {
		app.AssetCategory = patch.AssetCategory.OrDefault()
	}
	if patch.Environment != nil {
		app.Environment = patch.Environment.OrDefault()
	}
	if patch.CUITypes != nil {
		app.CUITypes = clipAll(*patch.CUITypes)
	}
	if patch.DataClassification != nil {
		app.DataClassification = clip(*patch.DataClassification)
	}
	if patch.ExternalConnections != nil {
		app.ExternalConnections = clip(*patch.ExternalConnections)
	}
	if patch.Zone != nil {
		app.Zone = clip(*patch.Zone)
	}
	if patch.Tags != nil {
		app.Tags = clipAll(*patch.Tags)
	}

	now := s.timestamp()
	app.UpdatedAt = now
	s.commit(ctx, now)
	return cloneApplication(*app), true, nil
}

// RemoveApplication deletes the application together with its diagrams and
// connections, drops it from every zone and detaches its assets. The whole
// cascade is persisted as one write.
func (s *RecordStore) RemoveApplication(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.applicationIndex(id)
	if i < 0 {
		return false
	}

	s.doc.Applications = slices.Delete(s.doc.Applications, i, i+1)
	diagrams := len(s.doc.Diagrams)
	s.doc.Diagrams = slices.DeleteFunc(s.doc.Diagrams, func(d domain.Diagram) bool {
		return d.ApplicationID == id
	})
	connections := len(s.doc.Connections)
	s.doc.Connections = slices.DeleteFunc(s.doc.Connections, func(c domain.Connection) bool {
		return c.TouchesApp(id)
	})
	for z := range s.doc.Zones {
		s.doc.Zones[z].ApplicationIDs = slices.DeleteFunc(s.doc.Zones[z].ApplicationIDs, func(appID string) bool {
			return appID == id
		})
	}
	for a := range s.doc.Assets {
		if s.doc.Assets[a].ApplicationID == id {
			s.doc.Assets[a].ApplicationID = ""
		}
	}
	s.commit(ctx, s.timestamp())

	s.logger.Debug("application removed",
		zap.String("id", id),
		zap.Int("diagrams", diagrams-len(s.doc.Diagrams)),
		zap.Int("connections", connections-len(s.doc.Connections)),
	)
	return true
}

func (s *RecordStore) Application(id string) (domain.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.applicationIndex(id)
	if i < 0 {
		return domain.Application{}, false
	}
	return cloneApplication(s.doc.Applications[i]), true
}

func (s *RecordStore) Applications() []domain.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Application, 0, len(s.doc.Applications))
	for _, a := range s.doc.Applications {
		out = append(out, cloneApplication(a))
	}
	return out
}

// ApplicationDiagrams returns the diagrams scoped to the application plus
// every global diagram. Unknown applications have no diagrams; passing the
// global id returns only the global ones.
func (s *RecordStore) ApplicationDiagrams(appID string) []domain.Diagram {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Diagram{}
	if appID != domain.GlobalApplicationID && s.applicationIndex(appID) < 0 {
		return out
	}
	for _, d := range s.doc.Diagrams {
		if d.ApplicationID == appID || d.Global() {
			out = append(out, cloneDiagram(d))
		}
	}
	return out
}

// ApplicationConnections returns connections with the application at either end.
func (s *RecordStore) ApplicationConnections(appID string) []domain.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Connection{}
	for _, c := range s.doc.Connections {
		if c.TouchesApp(appID) {
			out = append(out, c)
		}
	}
	return out
}

func (s *RecordStore) ApplicationAssets(appID string) []domain.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Asset{}
	if appID == "" {
		return out
	}
	for _, a := range s.doc.Assets {
		if a.ApplicationID == appID {
			out = append(out, cloneAsset(a))
		}
	}
	return out
}

func (s *RecordStore) applicationIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.doc.Applications, func(a domain.Application) bool { return a.ID == id })
}
