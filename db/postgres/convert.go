package postgres

import (
	"github.com/rob-hayward/zer0-graph-engine/db"
	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

type ConvertToModel struct{}

func NewConvertToModel() *ConvertToModel {
	return &ConvertToModel{}
}

// Nodes maps content rows to engine nodes, folding the vote rows into net
// counts per node.
func (c *ConvertToModel) Nodes(nodes []Node, votes []Vote) []model.ContentNode {
	out := make([]model.ContentNode, 0, len(nodes))
	for _, row := range nodes {
		rowVotes := db.FindAll(votes, func(v Vote) bool { return v.NodeID == row.ID })
		node := model.ContentNode{
			ID:   row.NodeID,
			Kind: model.NodeKind(row.Kind),
			InclusionNetVotes: db.Sum(
				db.FindAll(rowVotes, func(v Vote) bool { return v.Kind == VoteKindInclusion }),
				func(v Vote) int { return v.Value },
			),
			ContentNetVotes: db.Sum(
				db.FindAll(rowVotes, func(v Vote) bool { return v.Kind == VoteKindContent }),
				func(v Vote) int { return v.Value },
			),
		}
		if len(row.Payload) > 0 {
			node.Payload = row.Payload
		}
		out = append(out, node)
	}
	return out
}

// Links maps relationship rows to raw links, translating the internal
// numeric keys back to natural node IDs. Relationships pointing at rows
// missing from `nodes` are dropped.
func (c *ConvertToModel) Links(nodes []Node, relationships []Relationship) []model.RawLink {
	naturalID := make(map[uint]string, len(nodes))
	for _, row := range nodes {
		naturalID[row.ID] = row.NodeID
	}
	out := make([]model.RawLink, 0, len(relationships))
	for _, rel := range relationships {
		from, okFrom := naturalID[rel.FromID]
		to, okTo := naturalID[rel.ToID]
		if !okFrom || !okTo {
			continue
		}
		out = append(out, model.RawLink{
			SourceID: from,
			TargetID: to,
			Kind:     model.LinkKind(rel.Kind),
		})
	}
	return out
}
