package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

// introduction is one pending scheduler step: a batch of node IDs that goes
// live once the clock passes due.
type introduction struct {
	due time.Time
	ids []string
}

// Scheduler feeds ranked content nodes into the simulation incrementally to
// bound per-frame cost on large graphs. It never introduces a node twice,
// and nodes beyond the policy cap are silently dropped from the simulation
// (not from the data model).
type Scheduler struct {
	conf   SchedulerConfig
	filter model.KindSet

	generation uuid.UUID
	queue      []introduction
	next       int
	introduced map[string]bool
	eligible   int
	dropped    int
	complete   bool

	onIntroduce func(ids []string)
	onComplete  func()
}

func NewScheduler(conf SchedulerConfig, filter model.KindSet) *Scheduler {
	conf.ApplyDefaults()
	return &Scheduler{
		conf:       conf,
		filter:     filter,
		introduced: map[string]bool{},
	}
}

// OnIntroduce registers the callback invoked with each batch of node IDs as
// they go live.
func (s *Scheduler) OnIntroduce(fn func(ids []string)) { s.onIntroduce = fn }

// OnComplete registers the callback invoked once the final introduction has
// been dispatched, so settlement heuristics can account for the final
// population size.
func (s *Scheduler) OnComplete(fn func()) { s.onComplete = fn }

// Start begins a fresh schedule over the ranked node list. Calling it again
// before completion cancels all pending introductions and restarts with a
// new generation.
func (s *Scheduler) Start(ranked []*model.ContentNode, now time.Time) uuid.UUID {
	s.generation = uuid.New()
	s.queue = nil
	s.next = 0
	s.introduced = map[string]bool{}
	s.complete = false

	ids := make([]string, 0, len(ranked))
	for _, node := range ranked {
		if !s.filter.Contains(node.Kind) {
			continue
		}
		ids = append(ids, node.ID)
	}
	s.eligible = len(ids)

	limit := s.conf.Cap()
	if len(ids) > limit {
		s.dropped = len(ids) - limit
		ids = ids[:limit]
		log.Warn().
			Int("dropped", s.dropped).
			Int("cap", limit).
			Msg("scheduler capped node introduction")
	} else {
		s.dropped = 0
	}

	if s.conf.Policy == PolicySingleNode {
		for i, id := range ids {
			s.queue = append(s.queue, introduction{
				due: now.Add(time.Duration(i) * s.conf.NodeRenderDelay),
				ids: []string{id},
			})
		}
	} else {
		for i := 0; i < len(ids); i += s.conf.NodesPerBatch {
			end := i + s.conf.NodesPerBatch
			if end > len(ids) {
				end = len(ids)
			}
			s.queue = append(s.queue, introduction{
				due: now.Add(time.Duration(i/s.conf.NodesPerBatch) * s.conf.BatchRenderDelay),
				ids: ids[i:end],
			})
		}
	}
	return s.generation
}

// Step dispatches every introduction whose due time has passed. Called once
// per frame by the graph manager.
func (s *Scheduler) Step(now time.Time) {
	for s.next < len(s.queue) && !s.queue[s.next].due.After(now) {
		batch := []string{}
		for _, id := range s.queue[s.next].ids {
			if s.introduced[id] {
				continue
			}
			s.introduced[id] = true
			batch = append(batch, id)
		}
		s.next++
		if len(batch) > 0 && s.onIntroduce != nil {
			s.onIntroduce(batch)
		}
	}
	if !s.complete && s.next >= len(s.queue) {
		s.complete = true
		if s.onComplete != nil {
			s.onComplete()
		}
	}
}

// Generation identifies the current schedule; stale callbacks from a
// previous Start can compare against it.
func (s *Scheduler) Generation() uuid.UUID { return s.generation }

type SchedulerStats struct {
	EligibleNodes   int
	ScheduledNodes  int
	IntroducedNodes int
	DroppedNodes    int
	Complete        bool
}

func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		EligibleNodes:   s.eligible,
		ScheduledNodes:  s.eligible - s.dropped,
		IntroducedNodes: len(s.introduced),
		DroppedNodes:    s.dropped,
		Complete:        s.complete,
	}
}
