package application

import (
	"context"
	"slices"
	"strings"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"go.uber.org/zap"
)

type ZoneInput struct {
	Name           string
	Description    string
	Type           domain.ZoneType
	ApplicationIDs []string
	Color          string
}

func (s *RecordStore) AddZone(ctx context.Context, in ZoneInput) (domain.Zone, error) {
	if err := requireName(in.Name); err != nil {
		return domain.Zone{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]string, 0, len(in.ApplicationIDs))
	for _, id := range in.ApplicationIDs {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(members, id) {
			continue
		}
		if s.applicationIndex(id) < 0 {
			return domain.Zone{}, domain.NewValidationError("applicationIds", "unknown application "+id)
		}
		members = append(members, id)
	}

	now := s.timestamp()
	zone := domain.Zone{
		ID:             s.newID(prefixZone, now),
		Name:           clip(in.Name),
		Description:    clip(in.Description),
		Type:           in.Type.OrDefault(),
		ApplicationIDs: members,
		Color:          clip(in.Color),
		CreatedAt:      now,
	}
	s.doc.Zones = append(s.doc.Zones, zone)
	s.commit(ctx, now)

	s.logger.Debug("zone added", zap.String("id", zone.ID), zap.Int("applications", len(members)))
	return cloneZone(zone), nil
}

// RemoveZone deletes the zone and clears it from applications and assets
// that reference it.
func (s *RecordStore) RemoveZone(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.zoneIndex(id)
	if i < 0 {
		return false
	}
	s.doc.Zones = slices.Delete(s.doc.Zones, i, i+1)
	for a := range s.doc.Applications {
		if s.doc.Applications[a].Zone == id {
			s.doc.Applications[a].Zone = ""
		}
	}
	for a := range s.doc.Assets {
		if s.doc.Assets[a].Zone == id {
			s.doc.Assets[a].Zone = ""
		}
	}
	s.commit(ctx, s.timestamp())
	return true
}

func (s *RecordStore) Zone(id string) (domain.Zone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.zoneIndex(id)
	if i < 0 {
		return domain.Zone{}, false
	}
	return cloneZone(s.doc.Zones[i]), true
}

func (s *RecordStore) Zones() []domain.Zone {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Zone, 0, len(s.doc.Zones))
	for _, z := range s.doc.Zones {
		out = append(out, cloneZone(z))
	}
	return out
}

// ZoneApplications resolves the zone's member ids, skipping any that no
// longer exist.
func (s *RecordStore) ZoneApplications(zoneID string) []domain.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Application{}
	i := s.zoneIndex(zoneID)
	if i < 0 {
		return out
	}
	for _, appID := range s.doc.Zones[i].ApplicationIDs {
		if a := s.applicationIndex(appID); a >= 0 {
			out = append(out, cloneApplication(s.doc.Applications[a]))
		}
	}
	return out
}

func (s *RecordStore) zoneIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.doc.Zones, func(z domain.Zone) bool { return z.ID == id })
}
