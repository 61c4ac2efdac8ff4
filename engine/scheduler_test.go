package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func contentNodes(n int) []*model.ContentNode {
	nodes := make([]*model.ContentNode, n)
	for i := 0; i < n; i++ {
		nodes[i] = &model.ContentNode{
			ID:                fmt.Sprintf("n%02d", i),
			Kind:              model.NodeKindStatement,
			InclusionNetVotes: n - i,
		}
	}
	return nodes
}

func TestScheduler_batchPolicy(t *testing.T) {
	sched := NewScheduler(SchedulerConfig{
		Policy:           PolicyBatch,
		NodesPerBatch:    10,
		BatchRenderDelay: 500 * time.Millisecond,
		MaxBatches:       20,
	}, model.ContentKinds())
	introduced := [][]string{}
	sched.OnIntroduce(func(ids []string) { introduced = append(introduced, ids) })
	sched.Start(contentNodes(25), t0)

	sched.Step(t0)
	assert.Len(t, introduced, 1, "first batch is due immediately")
	assert.Len(t, introduced[0], 10)

	sched.Step(t0.Add(499 * time.Millisecond))
	assert.Len(t, introduced, 1, "second batch not due yet")

	sched.Step(t0.Add(1100 * time.Millisecond))
	assert.Len(t, introduced, 3, "overdue batches are dispatched together")
	assert.Len(t, introduced[2], 5, "last batch holds the remainder")
}

func TestScheduler_singleNodePolicy(t *testing.T) {
	sched := NewScheduler(SchedulerConfig{
		Policy:          PolicySingleNode,
		NodeRenderDelay: 50 * time.Millisecond,
		MaxSingleNodes:  40,
	}, model.ContentKinds())
	count := 0
	sched.OnIntroduce(func(ids []string) { count += len(ids) })
	sched.Start(contentNodes(5), t0)
	sched.Step(t0.Add(120 * time.Millisecond))
	assert.Equal(t, 3, count, "nodes at offsets 0, 50 and 100 ms are due")
}

func TestScheduler_capsSilently(t *testing.T) {
	sched := NewScheduler(SchedulerConfig{
		Policy:         PolicySingleNode,
		MaxSingleNodes: 40,
	}, model.ContentKinds())
	count := 0
	sched.OnIntroduce(func(ids []string) { count += len(ids) })
	sched.Start(contentNodes(60), t0)
	sched.Step(t0.Add(time.Hour))
	stats := sched.Stats()
	assert := assert.New(t)
	assert.Equal(40, count)
	assert.Equal(40, stats.IntroducedNodes)
	assert.Equal(20, stats.DroppedNodes)
	assert.Equal(60, stats.EligibleNodes)
	assert.True(stats.Complete)
}

func TestScheduler_neverIntroducesTwice(t *testing.T) {
	sched := NewScheduler(SchedulerConfig{}, model.ContentKinds())
	seen := map[string]int{}
	sched.OnIntroduce(func(ids []string) {
		for _, id := range ids {
			seen[id]++
		}
	})
	sched.Start(contentNodes(15), t0)
	for i := 0; i < 100; i++ {
		sched.Step(t0.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	for id, n := range seen {
		assert.Equalf(t, 1, n, "node %s introduced %d times", id, n)
	}
	assert.Len(t, seen, 15)
}

func TestScheduler_restartCancelsPendingIntroductions(t *testing.T) {
	sched := NewScheduler(SchedulerConfig{
		Policy:           PolicyBatch,
		NodesPerBatch:    5,
		BatchRenderDelay: 500 * time.Millisecond,
	}, model.ContentKinds())
	introduced := []string{}
	sched.OnIntroduce(func(ids []string) { introduced = append(introduced, ids...) })
	gen1 := sched.Start(contentNodes(20), t0)
	sched.Step(t0)

	gen2 := sched.Start(contentNodes(5), t0.Add(time.Second))
	sched.Step(t0.Add(time.Hour))

	assert := assert.New(t)
	assert.NotEqual(gen1, gen2)
	// 5 from the first dispatch of generation 1, then only generation 2's 5
	assert.Len(introduced, 10)
	assert.Equal(5, sched.Stats().IntroducedNodes)
}

func TestScheduler_filtersNonContentKinds(t *testing.T) {
	sched := NewScheduler(SchedulerConfig{}, model.ContentKinds())
	count := 0
	sched.OnIntroduce(func(ids []string) { count += len(ids) })
	sched.Start([]*model.ContentNode{
		{ID: "ok", Kind: model.NodeKindStatement},
		{ID: "hub", Kind: model.NodeKindHub},
		{ID: "nav", Kind: model.NodeKindNavigation},
	}, t0)
	sched.Step(t0.Add(time.Hour))
	assert.Equal(t, 1, count)
}

func TestScheduler_zeroNodesCompletesImmediately(t *testing.T) {
	sched := NewScheduler(SchedulerConfig{}, model.ContentKinds())
	complete := false
	sched.OnComplete(func() { complete = true })
	sched.Start(nil, t0)
	sched.Step(t0)
	assert.True(t, complete)
}
