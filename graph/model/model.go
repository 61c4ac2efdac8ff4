package model

// NodeKind discriminates the content variants plus the two fixed system
// roles (hub, navigation). System kinds never enter the physics simulation.
type NodeKind string

const (
	NodeKindStatement    NodeKind = "statement"
	NodeKindOpenQuestion NodeKind = "openquestion"
	NodeKindAnswer       NodeKind = "answer"
	NodeKindQuantity     NodeKind = "quantity"
	NodeKindEvidence     NodeKind = "evidence"
	NodeKindHub          NodeKind = "hub"
	NodeKindNavigation   NodeKind = "navigation"
)

// NodeMode selects the on-screen footprint of a node.
type NodeMode string

const (
	NodeModePreview NodeMode = "preview"
	NodeModeDetail  NodeMode = "detail"
)

type HiddenReason string

const (
	HiddenReasonCommunity HiddenReason = "community"
	HiddenReasonUser      HiddenReason = "user"
)

// ContentNode is one piece of user content as ingested by the engine. The
// Payload is opaque to the engine and forwarded untouched to whatever
// renders the node.
type ContentNode struct {
	ID                string
	Kind              NodeKind
	InclusionNetVotes int
	ContentNetVotes   int
	Payload           any
	Mode              NodeMode
	Hidden            bool
	HiddenReason      HiddenReason
}

// SystemNode is the central hub or one navigation-ring node. Its
// coordinates are assigned directly, never simulated.
type SystemNode struct {
	ID     string
	Kind   NodeKind
	Radius float64
	X, Y   float64
}

type LinkKind string

const (
	LinkKindSharedKeyword  LinkKind = "shared-keyword"
	LinkKindAnswers        LinkKind = "answers"
	LinkKindEvidenceFor    LinkKind = "evidence-for"
	LinkKindRelatedTo      LinkKind = "related-to"
	LinkKindSharedCategory LinkKind = "shared-category"
)

// RawLink is one relationship as delivered by a data source. Multiple raw
// links between the same pair are consolidated into a single Link.
type RawLink struct {
	SourceID string
	TargetID string
	Kind     LinkKind
}

// Link is the consolidated, drawable relationship between an unordered
// node pair. VisualWeight is static per link; the reveal animation scales
// it at display time.
type Link struct {
	ID           string
	SourceID     string
	TargetID     string
	Kinds        []LinkKind
	Count        int
	VisualWeight float64
}

// RenderableNode is the per-frame view of one node handed to the
// presentation layer.
type RenderableNode struct {
	ID           string       `json:"id"`
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	Opacity      float64      `json:"opacity"`
	IsHidden     bool         `json:"isHidden"`
	HiddenReason HiddenReason `json:"hiddenReason,omitempty"`
	Mode         NodeMode     `json:"mode"`
	Radius       float64      `json:"radius"`
	Kind         NodeKind     `json:"kind"`
	Payload      any          `json:"payload,omitempty"`
}

type RenderableLink struct {
	ID       string  `json:"id"`
	SourceID string  `json:"sourceId"`
	TargetID string  `json:"targetId"`
	Opacity  float64 `json:"opacity"`
	Visible  bool    `json:"visible"`
}

// RenderableSnapshot is the only structure the presentation layer consumes.
// It is recomputed from engine state every frame and never mutated.
type RenderableSnapshot struct {
	Nodes []RenderableNode `json:"nodes"`
	Links []RenderableLink `json:"links"`
}
