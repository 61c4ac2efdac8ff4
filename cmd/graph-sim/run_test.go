package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/rob-hayward/zer0-graph-engine/db"
	"github.com/rob-hayward/zer0-graph-engine/engine"
	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

func TestRun(t *testing.T) {
	assert := assert.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	source := db.NewMockDataSource(ctrl)
	source.EXPECT().Load(gomock.Any()).Return(
		[]model.ContentNode{
			{ID: "n1", Kind: model.NodeKindStatement, InclusionNetVotes: 3},
			{ID: "n2", Kind: model.NodeKindAnswer, InclusionNetVotes: 1},
			{ID: "n3", Kind: model.NodeKindOpenQuestion},
		},
		[]model.RawLink{{SourceID: "n2", TargetID: "n3", Kind: model.LinkKindAnswers}},
		nil,
	)

	dir := t.TempDir()
	outPath := filepath.Join(dir, "snap.json")
	pngPath := filepath.Join(dir, "snap.png")
	err := run(context.Background(), source, engine.DefaultConfig(), runOptions{
		SnapshotPath: outPath,
		PNGPath:      pngPath,
		MaxFrames:    5000,
	})
	assert.NoError(err)

	raw, err := os.ReadFile(outPath)
	assert.NoError(err)
	snap := model.RenderableSnapshot{}
	assert.NoError(json.Unmarshal(raw, &snap))
	// 3 content nodes + hub + 6 navigation nodes
	assert.Len(snap.Nodes, 10)
	for _, node := range snap.Nodes {
		assert.Equal(1.0, node.Opacity, "node %s must be fully revealed", node.ID)
	}
	assert.Len(snap.Links, 1)
	assert.True(snap.Links[0].Visible)

	info, err := os.Stat(pngPath)
	assert.NoError(err)
	assert.Greater(info.Size(), int64(0))
}

func TestRun_loadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	source := db.NewMockDataSource(ctrl)
	source.EXPECT().Load(gomock.Any()).Return(nil, nil, errors.New("connection refused"))
	err := run(context.Background(), source, engine.DefaultConfig(), runOptions{MaxFrames: 10})
	assert.ErrorContains(t, err, "failed to load graph")
}
