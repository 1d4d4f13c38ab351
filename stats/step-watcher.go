package stats

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/relloyd/stageload/logger"
)

// StepWatcher records the rows handled and time taken by one pipeline step.
// Steps call StartWatching() and StopWatching() around their work.
type StepWatcher struct {
	log       logger.Logger
	stepName  string
	startTime time.Time
	stopTime  time.Time
	totalRows int64
	running   int32
	now       func() time.Time
}

type Stats struct {
	StepName           string `json:"stepName" yaml:"stepName"`
	StatusText         string `json:"statusText" yaml:"statusText"`
	StatusEmoji        string `json:"-" yaml:"-"`
	ElapsedTimeMillis  int64  `json:"elapsedTimeMillis" yaml:"elapsedTimeMillis"`
	TotalRowsProcessed int64  `json:"totalRowsProcessed" yaml:"totalRowsProcessed"`
	RowsPerSecondAvg   int64  `json:"rowsPerSecondAvg" yaml:"rowsPerSecondAvg"`
}

func NewStepWatcher(log logger.Logger, stepName string) *StepWatcher {
	return &StepWatcher{log: log, stepName: stepName, now: time.Now}
}

func (n *StepWatcher) StartWatching() {
	n.startTime = n.now()
	n.stopTime = time.Time{}
	atomic.StoreInt64(&n.totalRows, 0) // steps may be repeated.
	atomic.StoreInt32(&n.running, 1)
}

// AddRows adds to the number of rows processed by the step.
func (n *StepWatcher) AddRows(count int) {
	atomic.AddInt64(&n.totalRows, int64(count))
}

func (n *StepWatcher) StopWatching() {
	n.stopTime = n.now()
	atomic.StoreInt32(&n.running, 0)
	n.log.Debug("STATS: ", n.RenderStats().String())
}

// RenderStats gets a struct filled with stats at the point of time it is called.
func (n *StepWatcher) RenderStats() Stats {
	var statusText, statusEmoji string
	end := n.stopTime
	if atomic.LoadInt32(&n.running) == 1 {
		statusText = "running"
		statusEmoji = "\U0000231B" // hour glass
		end = n.now()
	} else {
		statusText = "complete"
		statusEmoji = "\U00002705" // green tick
	}
	elapsed := end.Sub(n.startTime)
	if n.startTime.IsZero() {
		elapsed = 0
	}
	rows := atomic.LoadInt64(&n.totalRows)
	return Stats{
		StepName:           n.stepName,
		StatusText:         statusText,
		StatusEmoji:        statusEmoji,
		ElapsedTimeMillis:  elapsed.Milliseconds(),
		TotalRowsProcessed: rows,
		RowsPerSecondAvg:   rows / getNumSecondsOrOne(elapsed),
	}
}

// String will format the stats for general logging.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Stats for %v %v %v "+
			"elapsedTimeMillis=%v "+
			"totalRowsProcessed=%v "+
			"rowsPerSecondAvg=%v",
		s.StepName, s.StatusText, s.StatusEmoji,
		s.ElapsedTimeMillis,
		s.TotalRowsProcessed,
		s.RowsPerSecondAvg,
	)
}

func getNumSecondsOrOne(d time.Duration) (seconds int64) {
	seconds = int64(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return
}
