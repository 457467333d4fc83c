// Package metrics records run outcomes as Prometheus metrics. Each Recorder
// owns its registry, so a run can be exported as a node_exporter textfile
// without a long-lived server.
package metrics

import (
	"fmt"
	"sync"

	"github.com/ariel-frischer/gatehook/internal/workflow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gatehook"

// Recorder is a workflow.Reporter that updates Prometheus metrics.
//
// Metrics:
//   - gatehook_task_runs_total{hook,task,status} - task outcomes
//   - gatehook_task_duration_seconds{hook,task} - task execution time
//   - gatehook_stages_total{hook,result} - stage outcomes (success, failure)
//   - gatehook_fixed_files_total{hook} - files modified by fixes
//   - gatehook_run_success{hook} - 1 when the last run passed
//   - gatehook_run_duration_seconds{hook} - duration of the last run
//   - gatehook_run_timestamp_seconds{hook} - completion time of the last run
type Recorder struct {
	registry *prometheus.Registry

	mu   sync.Mutex
	hook string

	TaskRuns     *prometheus.CounterVec
	TaskDuration *prometheus.HistogramVec
	Stages       *prometheus.CounterVec
	FixedFiles   *prometheus.CounterVec
	RunSuccess   *prometheus.GaugeVec
	RunDuration  *prometheus.GaugeVec
	RunTimestamp *prometheus.GaugeVec
}

var _ workflow.Reporter = (*Recorder)(nil)

// NewRecorder creates a Recorder on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		TaskRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "task_runs_total",
				Help:      "Total number of task executions by outcome",
			},
			[]string{"hook", "task", "status"},
		),
		TaskDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Duration of task executions in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"hook", "task"},
		),
		Stages: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stages_total",
				Help:      "Total number of stages by result",
			},
			[]string{"hook", "result"},
		),
		FixedFiles: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fixed_files_total",
				Help:      "Total number of files modified by fixes",
			},
			[]string{"hook"},
		),
		RunSuccess: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_success",
				Help:      "Whether the last run succeeded (1=passed, 0=failed)",
			},
			[]string{"hook"},
		),
		RunDuration: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of the last run in seconds",
			},
			[]string{"hook"},
		),
		RunTimestamp: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_timestamp_seconds",
				Help:      "Unix time the last run finished",
			},
			[]string{"hook"},
		),
	}
}

// Registry exposes the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

func (r *Recorder) currentHook() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hook
}

func (r *Recorder) RunStarted(info workflow.RunInfo) {
	hook := string(info.Hook)
	if hook == "" {
		hook = workflow.FixStageName
	}
	r.mu.Lock()
	r.hook = hook
	r.mu.Unlock()
}

func (r *Recorder) StageStarted(string, int) {}

func (r *Recorder) TaskStarted(string, string) {}

func (r *Recorder) TaskFinished(_ string, run workflow.TaskRun) {
	hook := r.currentHook()
	r.TaskRuns.WithLabelValues(hook, run.TaskID, string(run.Result.Status)).Inc()
	if run.Result.Duration > 0 {
		r.TaskDuration.WithLabelValues(hook, run.TaskID).Observe(run.Result.Duration.Seconds())
	}
	if run.Fix != nil && len(run.Fix.ModifiedFiles) > 0 {
		r.FixedFiles.WithLabelValues(hook).Add(float64(len(run.Fix.ModifiedFiles)))
	}
}

func (r *Recorder) StageFinished(result workflow.StageResult) {
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	r.Stages.WithLabelValues(r.currentHook(), outcome).Inc()
}

func (r *Recorder) RunFinished(result *workflow.RunResult) {
	hook := r.currentHook()
	success := 0.0
	if result.Success {
		success = 1
	}
	r.RunSuccess.WithLabelValues(hook).Set(success)
	r.RunDuration.WithLabelValues(hook).Set(result.Duration.Seconds())
	r.RunTimestamp.WithLabelValues(hook).SetToCurrentTime()
}
