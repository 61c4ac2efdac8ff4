package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/rob-hayward/zer0-graph-engine/db"
	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

func TestConvertToModelNodes(t *testing.T) {
	for _, test := range []struct {
		Name  string
		Nodes []Node
		Votes []Vote
		Exp   []model.ContentNode
	}{
		{
			Name:  "single node, no votes",
			Nodes: []Node{{Model: gorm.Model{ID: 1}, NodeID: "n1", Kind: "statement"}},
			Exp:   []model.ContentNode{{ID: "n1", Kind: model.NodeKindStatement}},
		},
		{
			Name:  "votes are aggregated per kind",
			Nodes: []Node{{Model: gorm.Model{ID: 1}, NodeID: "n1", Kind: "statement"}},
			Votes: []Vote{
				{NodeID: 1, Kind: VoteKindInclusion, Value: 1},
				{NodeID: 1, Kind: VoteKindInclusion, Value: 1},
				{NodeID: 1, Kind: VoteKindInclusion, Value: -1},
				{NodeID: 1, Kind: VoteKindContent, Value: 1},
				{NodeID: 2, Kind: VoteKindInclusion, Value: 1},
			},
			Exp: []model.ContentNode{{
				ID:                "n1",
				Kind:              model.NodeKindStatement,
				InclusionNetVotes: 1,
				ContentNetVotes:   1,
			}},
		},
		{
			Name: "payload is forwarded",
			Nodes: []Node{{
				Model: gorm.Model{ID: 1}, NodeID: "n1", Kind: "quantity",
				Payload: db.Payload{"unit": "kg"},
			}},
			Exp: []model.ContentNode{{
				ID: "n1", Kind: model.NodeKindQuantity, Payload: db.Payload{"unit": "kg"},
			}},
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert.Equal(t, test.Exp, NewConvertToModel().Nodes(test.Nodes, test.Votes))
		})
	}
}

func TestConvertToModelLinks(t *testing.T) {
	nodes := []Node{
		{Model: gorm.Model{ID: 1}, NodeID: "n1", Kind: "statement"},
		{Model: gorm.Model{ID: 2}, NodeID: "n2", Kind: "answer"},
	}
	for _, test := range []struct {
		Name          string
		Relationships []Relationship
		Exp           []model.RawLink
	}{
		{
			Name:          "numeric keys become natural IDs",
			Relationships: []Relationship{{FromID: 1, ToID: 2, Kind: "answers"}},
			Exp:           []model.RawLink{{SourceID: "n1", TargetID: "n2", Kind: model.LinkKindAnswers}},
		},
		{
			Name:          "dangling relationship is dropped",
			Relationships: []Relationship{{FromID: 1, ToID: 99, Kind: "related-to"}},
			Exp:           []model.RawLink{},
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert.Equal(t, test.Exp, NewConvertToModel().Links(nodes, test.Relationships))
		})
	}
}
