package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/airightslab/monitor/app/pipeline"
)

// PipelineRunner is the subset of the orchestrator the scheduler uses.
type PipelineRunner interface {
	RunComplete(ctx context.Context) (pipeline.CompleteReport, error)
}

var _ PipelineRunner = (*pipeline.Orchestrator)(nil)

// RunPipelineTask triggers one complete ingestion run.
type RunPipelineTask struct {
	Task
	runner PipelineRunner
}

func NewRunPipelineTask(runner PipelineRunner) *RunPipelineTask {
	return &RunPipelineTask{
		Task:   NewTask(TaskTypeRunPipeline),
		runner: runner,
	}
}

func (t *RunPipelineTask) Execute(ctx context.Context) error {
	report, err := t.runner.RunComplete(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	slog.Info("Scheduled pipeline run finished", "status", report.Status)
	for _, result := range report.Results {
		slog.Debug("Adapter result", "status", result.Status, "message", result.Message)
	}

	return nil
}
