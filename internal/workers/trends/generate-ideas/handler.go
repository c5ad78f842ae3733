// internal/workers/trends/generate-ideas/handler.go
package generateideas

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"trendmine/internal/common/errors"
	"trendmine/internal/common/logger"
	"trendmine/internal/common/metrics"
	"trendmine/internal/ideas"
	"trendmine/internal/signals"
)

const TaskType = "generate-ideas"

type Generator interface {
	Generate(ctx context.Context, in []signals.TrendSignal) (*ideas.GenerationResult, error)
}

type Handler struct {
	config    *Config
	generator Generator
	logger    logger.Logger
}

func NewHandler(config *Config, generator Generator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		generator: generator,
		logger:    log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewRequestInvalidError(fmt.Errorf("parse input: %w", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	in := make([]signals.TrendSignal, 0, len(input.Signals))
	for _, s := range input.Signals {
		if strings.TrimSpace(s.Text) != "" {
			in = append(in, s)
		}
	}

	result, err := h.generator.Generate(ctx, in)
	if err != nil {
		return nil, err
	}

	return &Output{
		Ideas:       result.Ideas,
		Warnings:    result.Warnings,
		GeneratedAt: result.GeneratedAt,
		IdeaCount:   len(result.Ideas),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// toBPMN maps a generation failure to the error the engine sees. Rate limits
// and upstream failures keep retries; bad replies and missing credentials do not.
func toBPMN(err error) *errors.BPMNError {
	return errors.ConvertToBPMNError(errors.AsStandard(err))
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	bpmnErr := toBPMN(err)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"errorCode": bpmnErr.Code,
		"category":  errors.GetErrorCategory(errors.CodeOf(err)),
		"error":     err.Error(),
		"retryable": bpmnErr.Retryable,
		"retries":   bpmnErr.Retries,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(bpmnErr.Retries)).
		ErrorMessage(fmt.Sprintf("[%s] %s", bpmnErr.Code, bpmnErr.Message))

	if varCmd, varErr := cmd.VariablesFromMap(bpmnErr.ToErrorVariables()); varErr == nil {
		_, err = varCmd.Send(context.Background())
	} else {
		h.logger.Warn("failed to set error variables, sending without them", map[string]interface{}{"error": varErr.Error()})
		_, err = cmd.Send(context.Background())
	}
	if err != nil {
		h.logger.Error("failed to send fail job command", map[string]interface{}{"error": err.Error()})
	}
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
