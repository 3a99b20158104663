package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/application"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/diagramlink"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/sanitize"
	"github.com/urfave/cli/v3"
)

func errNotFound(kind, id string) error {
	return fmt.Errorf("%s %q not found", kind, id)
}

// optString returns a cleaned pointer when the flag was given.
func (rt *runtime) optString(c *cli.Command, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := rt.clean(c.String(name))
	return &v
}

func (rt *runtime) optStrings(c *cli.Command, name string) *[]string {
	if !c.IsSet(name) {
		return nil
	}
	v := rt.cleanAll(c.StringSlice(name))
	return &v
}

func enumFlag[T ~string](c *cli.Command, name string) T {
	return T(strings.ToLower(strings.TrimSpace(c.String(name))))
}

func optEnum[T ~string](c *cli.Command, name string) *T {
	if !c.IsSet(name) {
		return nil
	}
	v := enumFlag[T](c, name)
	return &v
}

func checkOwner(owner string) error {
	if strings.Contains(owner, "@") && !sanitize.IsValidEmail(owner) {
		return domain.NewValidationError("owner", "invalid email address")
	}
	return nil
}

func checkIP(ip string) error {
	if ip != "" && !sanitize.IsValidIP(ip) {
		return domain.NewValidationError("ipAddress", "invalid IP address")
	}
	return nil
}

func doAppsAdd(ctx context.Context, rt *runtime, c *cli.Command) (domain.Application, error) {
	in := application.ApplicationInput{
		Name:                rt.clean(c.String("name")),
		Description:         rt.clean(c.String("description")),
		Owner:               rt.clean(c.String("owner")),
		Team:                rt.clean(c.String("team")),
		AssetCategory:       enumFlag[domain.AssetCategory](c, "category"),
		Environment:         enumFlag[domain.Environment](c, "environment"),
		CUITypes:            rt.cleanAll(c.StringSlice("cui-type")),
		DataClassification:  rt.clean(c.String("data-classification")),
		ExternalConnections: rt.clean(c.String("external-connections")),
		Zone:                rt.clean(c.String("zone")),
		Tags:                rt.cleanAll(c.StringSlice("tag")),
	}
	if err := checkOwner(in.Owner); err != nil {
		return domain.Application{}, err
	}
	out, err := rt.store.AddApplication(ctx, in)
	if err != nil {
		return domain.Application{}, err
	}
	return out, rt.checkPersisted()
}

func doAppsUpdate(ctx context.Context, rt *runtime, c *cli.Command) (domain.Application, error) {
	patch := application.ApplicationPatch{
		Name:                rt.optString(c, "name"),
		Description:         rt.optString(c, "description"),
		Owner:               rt.optString(c, "owner"),
		Team:                rt.optString(c, "team"),
		AssetCategory:       optEnum[domain.AssetCategory](c, "category"),
		Environment:         optEnum[domain.Environment](c, "environment"),
		CUITypes:            rt.optStrings(c, "cui-type"),
		DataClassification:  rt.optString(c, "data-classification"),
		ExternalConnections: rt.optString(c, "external-connections"),
		Zone:                rt.optString(c, "zone"),
		Tags:                rt.optStrings(c, "tag"),
	}
	if patch.Owner != nil {
		if err := checkOwner(*patch.Owner); err != nil {
			return domain.Application{}, err
		}
	}
	id := c.String("id")
	app, ok, err := rt.store.UpdateApplication(ctx, id, patch)
	if err != nil {
		return domain.Application{}, err
	}
	if !ok {
		return domain.Application{}, errNotFound("application", id)
	}
	return app, rt.checkPersisted()
}

func doAppsRemove(ctx context.Context, rt *runtime, c *cli.Command) error {
	id := c.String("id")
	if !rt.store.RemoveApplication(ctx, id) {
		return errNotFound("application", id)
	}
	return rt.checkPersisted()
}

func doAppsShow(rt *runtime, c *cli.Command) (domain.Application, error) {
	id := c.String("id")
	app, ok := rt.store.Application(id)
	if !ok {
		return domain.Application{}, errNotFound("application", id)
	}
	return app, nil
}

func doAssetsAdd(ctx context.Context, rt *runtime, c *cli.Command) (domain.Asset, error) {
	in := application.AssetInput{
		Name:          rt.clean(c.String("name")),
		Description:   rt.clean(c.String("description")),
		AssetType:     enumFlag[domain.AssetType](c, "type"),
		ScopeCategory: enumFlag[domain.AssetCategory](c, "scope"),
		Hostname:      rt.clean(c.String("hostname")),
		IPAddress:     strings.TrimSpace(c.String("ip")),
		Location:      rt.clean(c.String("location")),
		Owner:         rt.clean(c.String("owner")),
		Quantity:      c.Int("quantity"),
		Zone:          rt.clean(c.String("zone")),
		Tags:          rt.cleanAll(c.StringSlice("tag")),
		ApplicationID: strings.TrimSpace(c.String("app")),
	}
	if err := checkIP(in.IPAddress); err != nil {
		return domain.Asset{}, err
	}
	if err := checkOwner(in.Owner); err != nil {
		return domain.Asset{}, err
	}
	out, err := rt.store.AddAsset(ctx, in)
	if err != nil {
		return domain.Asset{}, err
	}
	return out, rt.checkPersisted()
}

func doAssetsUpdate(ctx context.Context, rt *runtime, c *cli.Command) (domain.Asset, error) {
	patch := application.AssetPatch{
		Name:          rt.optString(c, "name"),
		Description:   rt.optString(c, "description"),
		AssetType:     optEnum[domain.AssetType](c, "type"),
		ScopeCategory: optEnum[domain.AssetCategory](c, "scope"),
		Hostname:      rt.optString(c, "hostname"),
		IPAddress:     rt.optString(c, "ip"),
		Location:      rt.optString(c, "location"),
		Owner:         rt.optString(c, "owner"),
		Zone:          rt.optString(c, "zone"),
		Tags:          rt.optStrings(c, "tag"),
		ApplicationID: rt.optString(c, "app"),
	}
	if c.IsSet("quantity") {
		q := c.Int("quantity")
		patch.Quantity = &q
	}
	if patch.IPAddress != nil {
		if err := checkIP(*patch.IPAddress); err != nil {
			return domain.Asset{}, err
		}
	}
	if patch.Owner != nil {
		if err := checkOwner(*patch.Owner); err != nil {
			return domain.Asset{}, err
		}
	}
	id := c.String("id")
	asset, ok, err := rt.store.UpdateAsset(ctx, id, patch)
	if err != nil {
		return domain.Asset{}, err
	}
	if !ok {
		return domain.Asset{}, errNotFound("asset", id)
	}
	return asset, rt.checkPersisted()
}

func doAssetsRemove(ctx context.Context, rt *runtime, c *cli.Command) error {
	id := c.String("id")
	if !rt.store.RemoveAsset(ctx, id) {
		return errNotFound("asset", id)
	}
	return rt.checkPersisted()
}

func doAssetsShow(rt *runtime, c *cli.Command) (domain.Asset, error) {
	id := c.String("id")
	asset, ok := rt.store.Asset(id)
	if !ok {
		return domain.Asset{}, errNotFound("asset", id)
	}
	return asset, nil
}

func categories(values []string) []domain.AssetCategory {
	out := make([]domain.AssetCategory, 0, len(values))
	for _, v := range values {
		out = append(out, domain.AssetCategory(strings.ToLower(strings.TrimSpace(v))))
	}
	return out
}

// readDiagramFile loads --file and packages it as a data URL payload.
func readDiagramFile(c *cli.Command) (*diagramlink.FilePayload, error) {
	path := c.String("file")
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read diagram file: %w", err)
	}
	payload, err := diagramlink.EncodeFile(path, c.String("file-type"), data)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

func readMermaid(c *cli.Command) (string, bool, error) {
	if c.IsSet("mermaid-file") {
		data, err := os.ReadFile(c.String("mermaid-file"))
		if err != nil {
			return "", false, fmt.Errorf("failed to read mermaid file: %w", err)
		}
		return string(data), true, nil
	}
	if c.IsSet("mermaid") {
		return c.String("mermaid"), true, nil
	}
	return "", false, nil
}

func doDiagramsAdd(ctx context.Context, rt *runtime, c *cli.Command) (domain.Diagram, error) {
	in := application.DiagramInput{
		Name:            rt.clean(c.String("name")),
		Description:     rt.clean(c.String("description")),
		Type:            enumFlag[domain.DiagramType](c, "type"),
		ApplicationID:   strings.TrimSpace(c.String("app")),
		Source:          enumFlag[domain.DiagramSource](c, "source"),
		SourceURL:       strings.TrimSpace(c.String("url")),
		Version:         rt.clean(c.String("version")),
		AssetCategories: categories(c.StringSlice("category")),
		ScopedAssets:    rt.cleanAll(c.StringSlice("scoped-asset")),
		Annotations:     rt.clean(c.String("annotations")),
		CUIBoundary:     c.Bool("cui-boundary"),
		SecurityZones:   rt.cleanAll(c.StringSlice("security-zone")),
		RelatedControls: rt.cleanAll(c.StringSlice("control")),
	}

	code, ok, err := readMermaid(c)
	if err != nil {
		return domain.Diagram{}, err
	}
	if ok {
		in.MermaidCode = code
		if !c.IsSet("source") {
			in.Source = domain.SourceMermaid
		}
	}

	payload, err := readDiagramFile(c)
	if err != nil {
		return domain.Diagram{}, err
	}
	if payload != nil {
		in.FileData = payload.DataURL
		in.FileName = payload.FileName
		in.FileType = payload.FileType
		in.FileSize = payload.FileSize
		if !c.IsSet("source") {
			in.Source = payload.Source
		}
	}
	out, err := rt.store.AddDiagram(ctx, in)
	if err != nil {
		return domain.Diagram{}, err
	}
	return out, rt.checkPersisted()
}

func doDiagramsUpdate(ctx context.Context, rt *runtime, c *cli.Command) (domain.Diagram, error) {
	patch := application.DiagramPatch{
		Name:            rt.optString(c, "name"),
		Description:     rt.optString(c, "description"),
		Type:            optEnum[domain.DiagramType](c, "type"),
		ApplicationID:   rt.optString(c, "app"),
		Source:          optEnum[domain.DiagramSource](c, "source"),
		Version:         rt.optString(c, "version"),
		ScopedAssets:    rt.optStrings(c, "scoped-asset"),
		Annotations:     rt.optString(c, "annotations"),
		SecurityZones:   rt.optStrings(c, "security-zone"),
		RelatedControls: rt.optStrings(c, "control"),
	}
	if c.IsSet("url") {
		u := strings.TrimSpace(c.String("url"))
		patch.SourceURL = &u
	}
	if c.IsSet("category") {
		cats := categories(c.StringSlice("category"))
		patch.AssetCategories = &cats
	}
	if c.IsSet("cui-boundary") {
		b := c.Bool("cui-boundary")
		patch.CUIBoundary = &b
	}

	code, ok, err := readMermaid(c)
	if err != nil {
		return domain.Diagram{}, err
	}
	if ok {
		patch.MermaidCode = &code
	}
	payload, err := readDiagramFile(c)
	if err != nil {
		return domain.Diagram{}, err
	}
	if payload != nil {
		patch.FileData = &payload.DataURL
		patch.FileName = &payload.FileName
		patch.FileType = &payload.FileType
		patch.FileSize = &payload.FileSize
	}

	id := c.String("id")
	diagram, ok, err := rt.store.UpdateDiagram(ctx, id, patch)
	if err != nil {
		return domain.Diagram{}, err
	}
	if !ok {
		return domain.Diagram{}, errNotFound("diagram", id)
	}
	return diagram, rt.checkPersisted()
}

func doDiagramsRemove(ctx context.Context, rt *runtime, c *cli.Command) error {
	id := c.String("id")
	if !rt.store.RemoveDiagram(ctx, id) {
		return errNotFound("diagram", id)
	}
	return rt.checkPersisted()
}

func doDiagramsShow(rt *runtime, c *cli.Command) (domain.Diagram, error) {
	id := c.String("id")
	diagram, ok := rt.store.Diagram(id)
	if !ok {
		return domain.Diagram{}, errNotFound("diagram", id)
	}
	return diagram, nil
}

// doDiagramsInspect reads a draw.io document from --file or from a stored
// diagram's file data.
func doDiagramsInspect(rt *runtime, c *cli.Command) (diagramlink.DrawioDocument, error) {
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return diagramlink.DrawioDocument{}, fmt.Errorf("failed to open drawio file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return diagramlink.ReadDrawio(f)
	}

	id := c.String("id")
	if id == "" {
		return diagramlink.DrawioDocument{}, errors.New("either --file or --id is required")
	}
	diagram, ok := rt.store.Diagram(id)
	if !ok {
		return diagramlink.DrawioDocument{}, errNotFound("diagram", id)
	}
	if diagram.FileData == "" {
		return diagramlink.DrawioDocument{}, fmt.Errorf("diagram %q has no attached file", id)
	}
	_, data, err := diagramlink.DecodeDataURL(diagram.FileData)
	if err != nil {
		return diagramlink.DrawioDocument{}, err
	}
	return diagramlink.ReadDrawio(bytes.NewReader(data))
}

func doConnectionsAdd(ctx context.Context, rt *runtime, c *cli.Command) (domain.Connection, error) {
	in := application.ConnectionInput{
		SourceAppID:   c.String("from-app"),
		TargetAppID:   c.String("to-app"),
		SourceAssetID: c.String("from-asset"),
		TargetAssetID: c.String("to-asset"),
		DataType:      rt.clean(c.String("data-type")),
		Protocol:      rt.clean(c.String("protocol")),
		Direction:     enumFlag[domain.Direction](c, "direction"),
		Description:   rt.clean(c.String("description")),
	}
	if c.IsSet("encrypted") {
		encrypted := c.Bool("encrypted")
		in.Encrypted = &encrypted
	}
	out, err := rt.store.AddConnection(ctx, in)
	if err != nil {
		return domain.Connection{}, err
	}
	return out, rt.checkPersisted()
}

func doConnectionsRemove(ctx context.Context, rt *runtime, c *cli.Command) error {
	id := c.String("id")
	if !rt.store.RemoveConnection(ctx, id) {
		return errNotFound("connection", id)
	}
	return rt.checkPersisted()
}

func doZonesAdd(ctx context.Context, rt *runtime, c *cli.Command) (domain.Zone, error) {
	out, err := rt.store.AddZone(ctx, application.ZoneInput{
		Name:           rt.clean(c.String("name")),
		Description:    rt.clean(c.String("description")),
		Type:           enumFlag[domain.ZoneType](c, "type"),
		ApplicationIDs: c.StringSlice("app"),
		Color:          rt.clean(c.String("color")),
	})
	if err != nil {
		return domain.Zone{}, err
	}
	return out, rt.checkPersisted()
}

func doZonesRemove(ctx context.Context, rt *runtime, c *cli.Command) error {
	id := c.String("id")
	if !rt.store.RemoveZone(ctx, id) {
		return errNotFound("zone", id)
	}
	return rt.checkPersisted()
}

type storageUsage struct {
	UsageBytes    int64 `json:"usageBytes"`
	WarnBytes     int64 `json:"warnBytes"`
	HardBytes     int64 `json:"hardBytes"`
	MaxEntryBytes int64 `json:"maxEntryBytes"`
	NearLimit     bool  `json:"nearLimit"`
	AtLimit       bool  `json:"atLimit"`
}

func doStorageUsage(ctx context.Context, rt *runtime) storageUsage {
	limits := rt.guard.Limits()
	usage := rt.guard.UsageBytes(ctx)
	return storageUsage{
		UsageBytes:    usage,
		WarnBytes:     limits.WarnBytes,
		HardBytes:     limits.HardBytes,
		MaxEntryBytes: limits.MaxEntryBytes,
		NearLimit:     usage > limits.WarnBytes,
		AtLimit:       usage >= limits.HardBytes,
	}
}

type metricSample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// doStorageStats gathers the guard metrics recorded by this process.
func doStorageStats(ctx context.Context, rt *runtime) ([]metricSample, error) {
	rt.guard.UsageBytes(ctx)
	families, err := rt.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}
	var out []metricSample
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			sample := metricSample{Name: family.GetName()}
			for _, label := range metric.GetLabel() {
				if sample.Labels == nil {
					sample.Labels = map[string]string{}
				}
				sample.Labels[label.GetName()] = label.GetValue()
			}
			switch {
			case metric.GetCounter() != nil:
				sample.Value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				sample.Value = metric.GetGauge().GetValue()
			}
			out = append(out, sample)
		}
	}
	return out, nil
}
