package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rob-hayward/zer0-graph-engine/engine"
)

func TestLoadProfile(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "profile.toml")
	assert.NoError(os.WriteFile(path, []byte(`
[scheduler]
policy = "single"
node_render_delay = "25ms"

[reveal]
pattern = "wave"
node_stagger = "10ms"

[simulation]
max_settle_duration = "3s"
alpha_decay = 0.05

[spiral]
base_distance = 700.0
`), 0644))

	conf, err := loadProfile(path, engine.DefaultConfig())
	assert.NoError(err)
	assert.Equal(engine.PolicySingleNode, conf.Scheduler.Policy)
	assert.Equal(25*time.Millisecond, conf.Scheduler.NodeRenderDelay)
	assert.Equal("wave", conf.Reveal.PatternName)
	assert.Equal(10*time.Millisecond, conf.Reveal.NodeStagger)
	assert.Equal(3*time.Second, conf.Simulation.MaxSettleDuration)
	assert.Equal(0.05, conf.Simulation.AlphaDecay)
	assert.Equal(700.0, conf.Spiral.BaseDistance)
	// untouched values keep their defaults
	assert.Equal(engine.DefaultConfig().Scheduler.MaxBatches, conf.Scheduler.MaxBatches)
	assert.Equal(engine.DefaultConfig().Reveal.LinkFadeDuration, conf.Reveal.LinkFadeDuration)
}

func TestLoadProfile_missingFile(t *testing.T) {
	_, err := loadProfile("/does/not/exist.toml", engine.DefaultConfig())
	assert.Error(t, err)
}
