package stats

import (
	"sync"

	"github.com/cevaris/ordered_map"
	"github.com/relloyd/stageload/logger"
)

type StatsFetcher interface {
	GetStats() []Stats
}

// PipelineStatsManager saves stats from each pipeline step added via calls to AddStepWatcher.
// Steps are reported in the order they were added.
type PipelineStatsManager struct {
	mu           sync.Mutex
	log          logger.Logger
	mapStepStats *ordered_map.OrderedMap // map containing StepWatcher{} details of all steps that we are gathering stats from.
}

func NewPipelineStats(log logger.Logger) *PipelineStatsManager {
	return &PipelineStatsManager{log: log, mapStepStats: ordered_map.NewOrderedMap()}
}

// AddStepWatcher creates a new StepWatcher and saves it into this manager.
// Adding a step name twice returns the existing watcher.
func (t *PipelineStatsManager) AddStepWatcher(stepName string) *StepWatcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sw, ok := t.mapStepStats.Get(stepName); ok {
		return sw.(*StepWatcher)
	}
	sw := NewStepWatcher(t.log, stepName)
	t.mapStepStats.Set(stepName, sw)
	return sw
}

// LogStats outputs the stats of each registered step.
func (t *PipelineStatsManager) LogStats() {
	for _, s := range t.GetStats() {
		t.log.Info(s.String())
	}
}

// GetStats implements interface StatsFetcher{}.
func (t *PipelineStatsManager) GetStats() []Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	iter := t.mapStepStats.IterFunc()
	statsList := make([]Stats, 0, t.mapStepStats.Len())
	for kv, ok := iter(); ok; kv, ok = iter() { // for each element in the map of pipeline steps...
		statsList = append(statsList, kv.Value.(*StepWatcher).RenderStats())
	}
	return statsList
}
