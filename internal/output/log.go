package output

import (
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/ariel-frischer/gatehook/internal/workflow"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogReporter writes run events as structured log entries.
type LogReporter struct {
	logger *zap.Logger
}

var _ workflow.Reporter = (*LogReporter)(nil)

// NewLogReporter creates a reporter logging through logger.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) RunStarted(info workflow.RunInfo) {
	r.logger.Info("run started",
		zap.String("run_id", info.RunID),
		zap.String("hook", string(info.Hook)),
		zap.String("scope", string(info.Scope)),
		zap.String("fix_mode", string(info.FixMode)),
		zap.Int("files", info.Files),
		zap.Bool("ci", info.CI))
}

func (r *LogReporter) StageStarted(stage string, tasks int) {
	r.logger.Debug("stage started", zap.String("stage", stage), zap.Int("tasks", tasks))
}

func (r *LogReporter) TaskStarted(stage, taskID string) {
	r.logger.Debug("task started", zap.String("stage", stage), zap.String("task", taskID))
}

func (r *LogReporter) TaskFinished(stage string, run workflow.TaskRun) {
	fields := []zap.Field{
		zap.String("stage", stage),
		zap.String("task", run.TaskID),
		zap.String("mode", string(run.Mode)),
		zap.String("status", string(run.Result.Status)),
		zap.Duration("duration", run.Result.Duration),
		zap.Int("diagnostics", len(run.Result.Diagnostics)),
	}
	if run.Result.Reason != "" {
		fields = append(fields, zap.String("reason", run.Result.Reason))
	}
	if run.Fix != nil {
		fields = append(fields, zap.Strings("modified_files", run.Fix.ModifiedFiles))
	}
	r.logger.Log(taskLevel(run), "task finished", fields...)
}

func (r *LogReporter) StageFinished(result workflow.StageResult) {
	r.logger.Debug("stage finished",
		zap.String("stage", result.Name),
		zap.Bool("success", result.Success),
		zap.Duration("duration", result.Duration))
}

func (r *LogReporter) RunFinished(result *workflow.RunResult) {
	s := result.Summary
	r.logger.Info("run finished",
		zap.String("run_id", result.RunID),
		zap.Bool("success", result.Success),
		zap.Int("passed", s.Passed),
		zap.Int("failed", s.Failed),
		zap.Int("warning", s.Warning),
		zap.Int("skipped", s.Skipped),
		zap.Int("fixes_applied", s.FixesApplied),
		zap.Strings("restaged", result.Restaged),
		zap.Duration("duration", result.Duration))
}

// taskLevel picks the log level for a finished task.
func taskLevel(run workflow.TaskRun) zapcore.Level {
	switch {
	case run.BlockingFailure():
		return zapcore.WarnLevel
	case run.Result.Status == task.StatusFailed, run.Result.Status == task.StatusWarning:
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}
