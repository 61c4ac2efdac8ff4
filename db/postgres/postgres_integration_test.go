//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rob-hayward/zer0-graph-engine/db"
	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

func TestPostgresDB_NewPostgresDB(t *testing.T) {
	assert := assert.New(t)
	_, err := NewPostgresDB(TESTONLY_Config)
	assert.NoError(err)
}

func TestPostgresDB_CreateNode(t *testing.T) {
	pg := TESTONLY_SetupAndCleanup(t)
	assert := assert.New(t)
	ctx := context.Background()
	id, err := pg.CreateNode(ctx, "n1", model.NodeKindStatement, db.Payload{"statement": "A"})
	if !assert.NoError(err) {
		return
	}
	assert.Equal("n1", id)
	nodes := []Node{}
	assert.NoError(pg.db.Find(&nodes).Error)
	assert.Len(nodes, 1)
	assert.Equal("statement", nodes[0].Kind)
	assert.Equal(db.Payload{"statement": "A"}, nodes[0].Payload)

	_, err = pg.CreateNode(ctx, "n1", model.NodeKindStatement, nil)
	assert.Error(err, "natural IDs must be unique")
}

func TestPostgresDB_AddVote(t *testing.T) {
	pg := TESTONLY_SetupAndCleanup(t)
	assert := assert.New(t)
	ctx := context.Background()
	_, err := pg.CreateNode(ctx, "n1", model.NodeKindStatement, nil)
	assert.NoError(err)

	assert.NoError(pg.AddVote(ctx, "n1", 1, VoteKindInclusion, 1))
	assert.NoError(pg.AddVote(ctx, "n1", 2, VoteKindInclusion, -1))
	assert.NoError(pg.AddVote(ctx, "n1", 1, VoteKindContent, 1))
	assert.Error(pg.AddVote(ctx, "n1", 1, VoteKindInclusion, 2))
	assert.Error(pg.AddVote(ctx, "missing", 1, VoteKindInclusion, 1))

	votes := []Vote{}
	assert.NoError(pg.db.Find(&votes).Error)
	assert.Len(votes, 3)
}

func TestPostgresDB_Load(t *testing.T) {
	pg := TESTONLY_SetupAndCleanup(t)
	assert := assert.New(t)
	ctx := context.Background()
	_, err := pg.CreateNode(ctx, "n1", model.NodeKindStatement, nil)
	assert.NoError(err)
	_, err = pg.CreateNode(ctx, "n2", model.NodeKindAnswer, nil)
	assert.NoError(err)
	assert.NoError(pg.AddVote(ctx, "n1", 1, VoteKindInclusion, 1))
	assert.NoError(pg.AddVote(ctx, "n1", 2, VoteKindInclusion, 1))
	assert.NoError(pg.CreateRelationship(ctx, "n2", "n1", model.LinkKindAnswers))

	nodes, links, err := pg.Load(ctx)
	assert.NoError(err)
	assert.Len(nodes, 2)
	byID := map[string]model.ContentNode{}
	for _, node := range nodes {
		byID[node.ID] = node
	}
	assert.Equal(2, byID["n1"].InclusionNetVotes)
	assert.Equal(model.NodeKindAnswer, byID["n2"].Kind)
	assert.Equal([]model.RawLink{{SourceID: "n2", TargetID: "n1", Kind: model.LinkKindAnswers}}, links)
}
