package application

import (
	"context"
	"slices"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"go.uber.org/zap"
)

type AssetInput struct {
	Name          string
	Description   string
	AssetType     domain.AssetType
	ScopeCategory domain.AssetCategory
	Hostname      string
	IPAddress     string
	Location      string
	Owner         string
	Quantity      int
	Zone          string
	Tags          []string
	ApplicationID string
}

type AssetPatch struct {
	Name          *string
	Description   *string
	AssetType     *domain.AssetType
	ScopeCategory *domain.AssetCategory
	Hostname      *string
	IPAddress     *string
	Location      *string
	Owner         *string
	Quantity      *int
	Zone          *string
	Tags          *[]string
	ApplicationID *string
}

func (s *RecordStore) AddAsset(ctx context.Context, in AssetInput) (domain.Asset, error) {
	if err := requireName(in.Name); err != nil {
		return domain.Asset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAssetApplication(in.ApplicationID); err != nil {
		return domain.Asset{}, err
	}

	now := s.timestamp()
	asset := domain.Asset{
		ID:            s.newID(prefixAsset, now),
		Name:          clip(in.Name),
		Description:   clip(in.Description),
		AssetType:     in.AssetType.OrDefault(),
		ScopeCategory: in.ScopeCategory.OrDefault(),
		Hostname:      clip(in.Hostname),
		IPAddress:     clip(in.IPAddress),
		Location:      clip(in.Location),
		Owner:         clip(in.Owner),
		Quantity:      quantityOrDefault(in.Quantity),
		Zone:          clip(in.Zone),
		Tags:          clipAll(in.Tags),
		ApplicationID: in.ApplicationID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.doc.Assets = append(s.doc.Assets, asset)
	s.commit(ctx, now)

	s.logger.Debug("asset added", zap.String("id", asset.ID))
	return cloneAsset(asset), nil
}

func (s *RecordStore) UpdateAsset(ctx context.Context, id string, patch AssetPatch) (domain.Asset, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.assetIndex(id)
	if i < 0 {
		return domain.Asset{}, false, nil
	}
	if patch.Name != nil {
		if err := requireName(*patch.Name); err != nil {
			return domain.Asset{}, true, err
		}
	}
	if patch.ApplicationID != nil {
		if err := s.checkAssetApplication(*patch.ApplicationID); err != nil {
			return domain.Asset{}, true, err
		}
	}
	asset := &s.doc.Assets[i]

	if patch.Name != nil {
		asset.Name = clip(*patch.Name)
	}
	if patch.Description != nil {
		asset.Description = clip(*patch.Description)
	}
	if patch.AssetType != nil {
		asset.AssetType = patch.AssetType.OrDefault()
	}
	if patch.ScopeCategory != nil {
		asset.ScopeCategory = patch.ScopeCategory.OrDefault()
	}
	if patch.Hostname != nil {
		asset.Hostname = clip(*patch.Hostname)
	}
	if patch.IPAddress != nil {
		asset.IPAddress = clip(*patch.IPAddress)
	}
	if patch.Location != nil {
		asset.Location = clip(*patch.Location)
	}
	if patch.Owner != nil {
		asset.Owner = clip(*patch.Owner)
	}
	if patch.Quantity != nil {
		asset.Quantity = quantityOrDefault(*patch.Quantity)
	}
	if patch.Zone != nil {
		asset.Zone = clip(*patch.Zone)
	}
	if patch.Tags != nil {
		asset.Tags = clipAll(*patch.Tags)
	}
	if patch.ApplicationID != nil {
		asset.ApplicationID = *patch.ApplicationID
	}

	now := s.timestamp()
	asset.UpdatedAt = now
	s.commit(ctx, now)
	return cloneAsset(*asset), true, nil
}

// RemoveAsset deletes the asset, every connection that names it as an
// endpoint, and its entries in diagram scope lists.
func (s *RecordStore) RemoveAsset(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.assetIndex(id)
	if i < 0 {
		return false
	}

	s.doc.Assets = slices.Delete(s.doc.Assets, i, i+1)
	connections := len(s.doc.Connections)
	s.doc.Connections = slices.DeleteFunc(s.doc.Connections, func(c domain.Connection) bool {
		return c.TouchesAsset(id)
	})
	for d := range s.doc.Diagrams {
		s.doc.Diagrams[d].ScopedAssets = slices.DeleteFunc(s.doc.Diagrams[d].ScopedAssets, func(assetID string) bool {
			return assetID == id
		})
	}
	s.commit(ctx, s.timestamp())

	s.logger.Debug("asset removed",
		zap.String("id", id),
		zap.Int("connections", connections-len(s.doc.Connections)),
	)
	return true
}

func (s *RecordStore) Asset(id string) (domain.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.assetIndex(id)
	if i < 0 {
		return domain.Asset{}, false
	}
	return cloneAsset(s.doc.Assets[i]), true
}

func (s *RecordStore) Assets() []domain.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Asset, 0, len(s.doc.Assets))
	for _, a := range s.doc.Assets {
		out = append(out, cloneAsset(a))
	}
	return out
}

func (s *RecordStore) AssetConnections(assetID string) []domain.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Connection{}
	for _, c := range s.doc.Connections {
		if c.TouchesAsset(assetID) {
			out = append(out, c)
		}
	}
	return out
}

func (s *RecordStore) checkAssetApplication(appID string) error {
	if appID != "" && s.applicationIndex(appID) < 0 {
		return domain.NewValidationError("applicationId", "unknown application "+appID)
	}
	return nil
}

func (s *RecordStore) assetIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.doc.Assets, func(a domain.Asset) bool { return a.ID == id })
}

func quantityOrDefault(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
