package model

// radius tables, indexed by kind then mode. Values are in screen pixels and
// mirror the card sizes the presentation layer draws for each variant.
var previewRadius = map[NodeKind]float64{
	NodeKindStatement:    45,
	NodeKindOpenQuestion: 50,
	NodeKindAnswer:       40,
	NodeKindQuantity:     45,
	NodeKindEvidence:     40,
	NodeKindHub:          90,
	NodeKindNavigation:   40,
}

var detailRadius = map[NodeKind]float64{
	NodeKindStatement:    150,
	NodeKindOpenQuestion: 160,
	NodeKindAnswer:       140,
	NodeKindQuantity:     150,
	NodeKindEvidence:     140,
	NodeKindHub:          270,
	NodeKindNavigation:   40,
}

// RadiusFor returns the deterministic radius for a kind+mode combination.
// Unknown kinds get a zero radius, which callers treat as malformed input.
func RadiusFor(kind NodeKind, mode NodeMode) float64 {
	if mode == NodeModeDetail {
		return detailRadius[kind]
	}
	return previewRadius[kind]
}

// KindSet is the shared type-membership predicate. The graph manager builds
// exactly one of these and hands it to positioning, scheduling, simulation
// and reveal, so no component can drift out of sync on which kinds count as
// content.
type KindSet map[NodeKind]struct{}

func NewKindSet(kinds ...NodeKind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

func (s KindSet) Contains(kind NodeKind) bool {
	_, ok := s[kind]
	return ok
}

// ContentKinds returns the five simulated content variants.
func ContentKinds() KindSet {
	return NewKindSet(
		NodeKindStatement,
		NodeKindOpenQuestion,
		NodeKindAnswer,
		NodeKindQuantity,
		NodeKindEvidence,
	)
}

// SystemKinds returns the fixed-position roles excluded from simulation.
func SystemKinds() KindSet {
	return NewKindSet(NodeKindHub, NodeKindNavigation)
}
