package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func revealConf() RevealConfig {
	return RevealConfig{
		NodeStagger:      50 * time.Millisecond,
		NodeFadeDuration: 1500 * time.Millisecond,
		LinkRevealDelay:  500 * time.Millisecond,
		LinkRevealWindow: 4 * time.Second,
		LinkFadeDuration: time.Second,
	}
}

func TestRevealController_phantomBeforeBegin(t *testing.T) {
	r := NewRevealController(revealConf())
	assert := assert.New(t)
	assert.Equal(0.0, r.NodeOpacity("any", t0))
	assert.False(r.ShouldRenderLinks(t0))
	assert.Equal(0.0, r.LinkProgress("any", t0))
}

func TestRevealController_staggeredNodeReveal(t *testing.T) {
	r := NewRevealController(revealConf())
	r.BeginReveal([]RevealNode{
		{ID: "far", Distance: 900},
		{ID: "near", Distance: 500},
		{ID: "mid", Distance: 700},
	}, nil, t0)

	assert := assert.New(t)
	// at begin, only the closest node has started fading
	assert.Equal(0.0, r.NodeOpacity("near", t0))
	after := t0.Add(100 * time.Millisecond)
	assert.Greater(r.NodeOpacity("near", after), r.NodeOpacity("mid", after),
		"closer nodes start earlier")
	assert.Greater(r.NodeOpacity("mid", after), r.NodeOpacity("far", after))

	done := t0.Add(10 * time.Second)
	assert.Equal(1.0, r.NodeOpacity("near", done))
	assert.Equal(1.0, r.NodeOpacity("far", done))
}

func TestRevealController_linksWaitForNodeWindow(t *testing.T) {
	r := NewRevealController(revealConf())
	r.BeginReveal([]RevealNode{{ID: "a", Distance: 1}, {ID: "b", Distance: 2}}, []string{"a|b"}, t0)

	// node window: last start 50ms + 1500ms fade, then 500ms link delay
	assert := assert.New(t)
	assert.False(r.ShouldRenderLinks(t0))
	assert.False(r.ShouldRenderLinks(t0.Add(1549*time.Millisecond)))
	assert.False(r.ShouldRenderLinks(t0.Add(2049*time.Millisecond)), "link delay not elapsed")
	assert.True(r.ShouldRenderLinks(t0.Add(2050*time.Millisecond)))
	assert.Greater(r.LinkProgress("a|b", t0.Add(3*time.Second)), 0.0)
	assert.Equal(1.0, r.LinkProgress("a|b", t0.Add(time.Minute)))
}

func TestRevealController_weightAndProgressStaySeparable(t *testing.T) {
	r := NewRevealController(revealConf())
	r.BeginReveal([]RevealNode{{ID: "a"}}, []string{"heavy", "faint"}, t0)
	midReveal := t0.Add(2500 * time.Millisecond)
	progress := r.LinkProgress("heavy", midReveal)
	assert := assert.New(t)
	assert.Greater(progress, 0.0)
	assert.Less(progress, 1.0)
	// the controller only reports progress; an important link mid-reveal
	// still out-draws a weak fully-revealed one once weights multiply in
	heavy := 0.9 * progress
	faint := 0.3 * r.LinkProgress("faint", t0.Add(time.Minute))
	assert.Greater(heavy, faint)
}

func TestRevealController_forceRevealAllIsIdempotent(t *testing.T) {
	r := NewRevealController(revealConf())
	r.BeginReveal([]RevealNode{{ID: "a"}, {ID: "b"}}, []string{"a|b"}, t0)
	for i := 0; i < 2; i++ {
		r.ForceRevealAll()
		assert := assert.New(t)
		assert.Equal(1.0, r.NodeOpacity("a", t0))
		assert.Equal(1.0, r.NodeOpacity("b", t0))
		assert.True(r.ShouldRenderLinks(t0))
		assert.Equal(1.0, r.LinkProgress("a|b", t0))
		assert.True(r.Done())
	}
}

func TestRevealController_callbacks(t *testing.T) {
	r := NewRevealController(revealConf())
	revealed := map[string]int{}
	allDone := 0
	r.OnNodeRevealed(func(id string) { revealed[id]++ })
	r.OnAllRevealed(func() { allDone++ })
	r.BeginReveal([]RevealNode{{ID: "a", Distance: 1}, {ID: "b", Distance: 2}}, []string{"a|b"}, t0)

	now := t0
	for i := 0; i < 600; i++ {
		now = now.Add(16 * time.Millisecond)
		r.Step(now)
	}
	assert := assert.New(t)
	assert.Equal(1, revealed["a"])
	assert.Equal(1, revealed["b"])
	assert.Equal(1, allDone, "all-revealed fires exactly once")
}

func TestRevealController_beginRevealOnlyOncePerGeneration(t *testing.T) {
	r := NewRevealController(revealConf())
	r.BeginReveal([]RevealNode{{ID: "a"}}, nil, t0)
	firstStart := r.nodeStart["a"]
	r.BeginReveal([]RevealNode{{ID: "a"}}, nil, t0.Add(time.Hour))
	assert.Equal(t, firstStart, r.nodeStart["a"], "second begin is ignored until Reset")
	r.Reset()
	r.BeginReveal([]RevealNode{{ID: "a"}}, nil, t0.Add(time.Hour))
	assert.NotEqual(t, firstStart, r.nodeStart["a"])
}

func TestRevealPatterns(t *testing.T) {
	nodes := []RevealNode{
		{ID: "c", Distance: 300, Angle: 2.0, Votes: 1},
		{ID: "a", Distance: 100, Angle: 3.0, Votes: 5},
		{ID: "b", Distance: 200, Angle: 1.0, Votes: 9},
	}
	for _, test := range []struct {
		Name     string
		Pattern  RevealPattern
		Expected []string
	}{
		{Name: "staggered is center-outward", Pattern: StaggeredPattern{}, Expected: []string{"a", "b", "c"}},
		{Name: "wave sweeps by angle", Pattern: WavePattern{}, Expected: []string{"b", "c", "a"}},
		{Name: "votes reveals consensus first", Pattern: VoteOrderedPattern{}, Expected: []string{"b", "a", "c"}},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert.Equal(t, test.Expected, test.Pattern.Order(nodes))
		})
	}
}

func TestPatternByName(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("staggered", PatternByName("staggered").Name())
	assert.Equal("wave", PatternByName("wave").Name())
	assert.Equal("votes", PatternByName("votes").Name())
	assert.Equal("staggered", PatternByName("unknown").Name(), "unknown names fall back")
}
