package domain

// AssetCategory is the CMMC scoping category of an application or asset.
type AssetCategory string

const (
	CategoryCUI         AssetCategory = "cui"
	CategorySPA         AssetCategory = "spa"
	CategoryCRMA        AssetCategory = "crma"
	CategorySpecialized AssetCategory = "specialized"
	CategoryOOS         AssetCategory = "oos"
)

type CategoryInfo struct {
	Label       string
	Description string
	Color       string
}

var categoryInfo = map[AssetCategory]CategoryInfo{
	CategoryCUI:         {Label: "CUI Asset", Description: "Processes, stores, or transmits CUI", Color: "#ef4444"},
	CategorySPA:         {Label: "Security Protection Asset", Description: "Provides security functions or capabilities", Color: "#3b82f6"},
	CategoryCRMA:        {Label: "Contractor Risk Managed Asset", Description: "Can, but is not intended to, handle CUI", Color: "#f59e0b"},
	CategorySpecialized: {Label: "Specialized Asset", Description: "IoT, OT, test equipment, GFE, restricted systems", Color: "#8b5cf6"},
	CategoryOOS:         {Label: "Out-of-Scope Asset", Description: "Cannot process, store, or transmit CUI", Color: "#6b7280"},
}

func AssetCategories() []AssetCategory {
	return []AssetCategory{CategoryCUI, CategorySPA, CategoryCRMA, CategorySpecialized, CategoryOOS}
}

func (c AssetCategory) Valid() bool {
	_, ok := categoryInfo[c]
	return ok
}

// OrDefault maps unknown or legacy values onto CategoryCUI.
func (c AssetCategory) OrDefault() AssetCategory {
	if c.Valid() {
		return c
	}
	return CategoryCUI
}

// Info never fails; unknown categories describe themselves as CUI.
func (c AssetCategory) Info() CategoryInfo {
	return categoryInfo[c.OrDefault()]
}

type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
	EnvDR          Environment = "dr"
)

func (e Environment) Valid() bool {
	switch e {
	case EnvProduction, EnvStaging, EnvDevelopment, EnvDR:
		return true
	}
	return false
}

func (e Environment) OrDefault() Environment {
	if e.Valid() {
		return e
	}
	return EnvProduction
}

type AssetType string

const (
	AssetServer      AssetType = "server"
	AssetWorkstation AssetType = "workstation"
	AssetLaptop      AssetType = "laptop"
	AssetMobile      AssetType = "mobile"
	AssetNetwork     AssetType = "network"
	AssetFirewall    AssetType = "firewall"
	AssetStorage     AssetType = "storage"
	AssetCloud       AssetType = "cloud"
	AssetSoftware    AssetType = "software"
	AssetIoT         AssetType = "iot"
	AssetOT          AssetType = "ot"
	AssetPrinter     AssetType = "printer"
	AssetVirtual     AssetType = "virtual"
	AssetOther       AssetType = "other"
)

func (t AssetType) Valid() bool {
	switch t {
	case AssetServer, AssetWorkstation, AssetLaptop, AssetMobile, AssetNetwork, AssetFirewall,
		AssetStorage, AssetCloud, AssetSoftware, AssetIoT, AssetOT, AssetPrinter, AssetVirtual, AssetOther:
		return true
	}
	return false
}

func (t AssetType) OrDefault() AssetType {
	if t.Valid() {
		return t
	}
	return AssetOther
}

type DiagramType string

const (
	DiagramDataFlow       DiagramType = "data-flow"
	DiagramNetwork        DiagramType = "network"
	DiagramSystemBoundary DiagramType = "system-boundary"
	DiagramEnclave        DiagramType = "enclave"
	DiagramIntegration    DiagramType = "integration"
	DiagramPhysical       DiagramType = "physical"
)

func (t DiagramType) Valid() bool {
	switch t {
	case DiagramDataFlow, DiagramNetwork, DiagramSystemBoundary, DiagramEnclave, DiagramIntegration, DiagramPhysical:
		return true
	}
	return false
}

func (t DiagramType) OrDefault() DiagramType {
	if t.Valid() {
		return t
	}
	return DiagramDataFlow
}

type DiagramSource string

const (
	SourceFigma      DiagramSource = "figma"
	SourceDrawio     DiagramSource = "drawio"
	SourceLucidChart DiagramSource = "lucidchart"
	SourceVisio      DiagramSource = "visio"
	SourceImage      DiagramSource = "image"
	SourcePDF        DiagramSource = "pdf"
	SourceMermaid    DiagramSource = "mermaid"
)

func (s DiagramSource) Valid() bool {
	switch s {
	case SourceFigma, SourceDrawio, SourceLucidChart, SourceVisio, SourceImage, SourcePDF, SourceMermaid:
		return true
	}
	return false
}

func (s DiagramSource) OrDefault() DiagramSource {
	if s.Valid() {
		return s
	}
	return SourceImage
}

// Linked reports whether the source is referenced by URL rather than uploaded.
func (s DiagramSource) Linked() bool {
	return s == SourceFigma || s == SourceLucidChart
}

type Direction string

const (
	DirectionUnidirectional Direction = "unidirectional"
	DirectionBidirectional  Direction = "bidirectional"
)

func (d Direction) OrDefault() Direction {
	if d == DirectionUnidirectional {
		return d
	}
	return DirectionBidirectional
}

type ZoneType string

const (
	ZoneEnclave  ZoneType = "enclave"
	ZoneDMZ      ZoneType = "dmz"
	ZoneExternal ZoneType = "external"
	ZoneInternal ZoneType = "internal"
)

func (t ZoneType) OrDefault() ZoneType {
	switch t {
	case ZoneEnclave, ZoneDMZ, ZoneExternal, ZoneInternal:
		return t
	}
	return ZoneInternal
}
