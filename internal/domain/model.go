package domain

import "time"

// GlobalApplicationID scopes a diagram to every application.
const GlobalApplicationID = "global"

type Application struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	Owner               string        `json:"owner"`
	Team                string        `json:"team"`
	AssetCategory       AssetCategory `json:"assetCategory"`
	Environment         Environment   `json:"environment"`
	CUITypes            []string      `json:"cuiTypes"`
	DataClassification  string        `json:"dataClassification"`
	ExternalConnections string        `json:"externalConnections"`
	Zone                string        `json:"zone"`
	Tags                []string      `json:"tags"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

type Asset struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	AssetType     AssetType     `json:"assetType"`
	ScopeCategory AssetCategory `json:"scopeCategory"`
	Hostname      string        `json:"hostname"`
	IPAddress     string        `json:"ipAddress"`
	Location      string        `json:"location"`
	Owner         string        `json:"owner"`
	Quantity      int           `json:"quantity"`
	Zone          string        `json:"zone"`
	Tags          []string      `json:"tags"`
	ApplicationID string        `json:"applicationId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type Diagram struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Type            DiagramType     `json:"type"`
	ApplicationID   string          `json:"applicationId"`
	Source          DiagramSource   `json:"source"`
	SourceURL       string          `json:"sourceUrl"`
	MermaidCode     string          `json:"mermaidCode"`
	FileData        string          `json:"fileData"`
	FileName        string          `json:"fileName"`
	FileType        string          `json:"fileType"`
	FileSize        int64           `json:"fileSize"`
	Version         string          `json:"version"`
	AssetCategories []AssetCategory `json:"assetCategories"`
	ScopedAssets    []string        `json:"scopedAssets"`
	Annotations     string          `json:"annotations"`
	CUIBoundary     bool            `json:"cuiBoundary"`
	SecurityZones   []string        `json:"securityZones"`
	RelatedControls []string        `json:"relatedControls"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Global reports whether the diagram is visible under every application.
func (d Diagram) Global() bool {
	return d.ApplicationID == "" || d.ApplicationID == GlobalApplicationID
}

type Connection struct {
	ID            string    `json:"id"`
	SourceAppID   string    `json:"sourceAppId,omitempty"`
	TargetAppID   string    `json:"targetAppId,omitempty"`
	SourceAssetID string    `json:"sourceAssetId,omitempty"`
	TargetAssetID string    `json:"targetAssetId,omitempty"`
	DataType      string    `json:"dataType"`
	Protocol      string    `json:"protocol"`
	Encrypted     bool      `json:"encrypted"`
	Direction     Direction `json:"direction"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TouchesApp reports whether appID is either end of the connection.
func (c Connection) TouchesApp(appID string) bool {
	return appID != "" && (c.SourceAppID == appID || c.TargetAppID == appID)
}

// TouchesAsset reports whether assetID is either end of the connection.
func (c Connection) TouchesAsset(assetID string) bool {
	return assetID != "" && (c.SourceAssetID == assetID || c.TargetAssetID == assetID)
}

type Zone struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Type           ZoneType  `json:"type"`
	ApplicationIDs []string  `json:"applicationIds"`
	Color          string    `json:"color"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Metadata struct {
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
	OrgName      string    `json:"orgName"`
}

// Document is the root of everything that gets persisted under a single key.
type Document struct {
	Applications []Application `json:"applications"`
	Assets       []Asset       `json:"assets"`
	Diagrams     []Diagram     `json:"diagrams"`
	Connections  []Connection  `json:"connections"`
	Zones        []Zone        `json:"zones"`
	Metadata     Metadata      `json:"metadata"`
}

func NewDocument(now time.Time) *Document {
	return &Document{
		Applications: []Application{},
		Assets:       []Asset{},
		Diagrams:     []Diagram{},
		Connections:  []Connection{},
		Zones:        []Zone{},
		Metadata:     Metadata{CreatedAt: now, LastModified: now},
	}
}

// Heal replaces any missing collection with an empty one and returns the
// names of the collections it had to create.
func (d *Document) Heal() []string {
	var healed []string
	if d.Applications == nil {
		d.Applications = []Application{}
		healed = append(healed, "applications")
	}
	if d.Assets == nil {
		d.Assets = []Asset{}
		healed = append(healed, "assets")
	}
	if d.Diagrams == nil {
		d.Diagrams = []Diagram{}
		healed = append(healed, "diagrams")
	}
	if d.Connections == nil {
		d.Connections = []Connection{}
		healed = append(healed, "connections")
	}
	if d.Zones == nil {
		d.Zones = []Zone{}
		healed = append(healed, "zones")
	}
	return healed
}
