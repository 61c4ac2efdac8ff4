package engine

import (
	"sort"

	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

// base visual weight per relationship kind. Consolidation count adds on
// top, capped at 1.
var linkKindWeight = map[model.LinkKind]float64{
	model.LinkKindAnswers:        0.9,
	model.LinkKindEvidenceFor:    0.8,
	model.LinkKindRelatedTo:      0.6,
	model.LinkKindSharedKeyword:  0.5,
	model.LinkKindSharedCategory: 0.4,
}

const (
	defaultLinkWeight    = 0.3
	consolidationBonus   = 0.08
	maxConsolidatedLinks = 1.0
)

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// consolidateLinks merges all raw relationships between the same unordered
// node pair into one drawable link and computes its static visual weight.
// Raw links whose endpoints are not both known content nodes are skipped.
func consolidateLinks(raw []model.RawLink, known func(id string) bool) map[string]*model.Link {
	links := map[string]*model.Link{}
	for _, rl := range raw {
		if rl.SourceID == rl.TargetID {
			continue
		}
		if !known(rl.SourceID) || !known(rl.TargetID) {
			continue
		}
		key := pairKey(rl.SourceID, rl.TargetID)
		link, ok := links[key]
		if !ok {
			link = &model.Link{
				ID:       key,
				SourceID: rl.SourceID,
				TargetID: rl.TargetID,
			}
			links[key] = link
		}
		link.Count++
		if !containsKind(link.Kinds, rl.Kind) {
			link.Kinds = append(link.Kinds, rl.Kind)
		}
	}
	for _, link := range links {
		link.VisualWeight = visualWeight(link)
	}
	return links
}

func containsKind(kinds []model.LinkKind, kind model.LinkKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// visualWeight is a static function of the link's kinds and consolidation
// count. It is computed once and cached on the link; the reveal animation
// multiplies it with the time-varying reveal progress.
func visualWeight(link *model.Link) float64 {
	weight := defaultLinkWeight
	for _, kind := range link.Kinds {
		if w, ok := linkKindWeight[kind]; ok && w > weight {
			weight = w
		}
	}
	weight += consolidationBonus * float64(link.Count-1)
	if weight > maxConsolidatedLinks {
		weight = maxConsolidatedLinks
	}
	return weight
}

// sortedLinkIDs gives a stable ordering for the link reveal schedule.
func sortedLinkIDs(links map[string]*model.Link) []string {
	ids := make([]string, 0, len(links))
	for id := range links {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
