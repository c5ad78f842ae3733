// internal/workers/trends/aggregate-signals/handler.go
package aggregatesignals

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
	"trendmine/internal/common/validation"
	"trendmine/internal/signals"
)

const TaskType = "aggregate-signals"

var schema = validation.MustSchema(inputSchema)

// Aggregator collects signals for one set of parameters.
type Aggregator interface {
	Aggregate(ctx context.Context, params signals.RequestParams) signals.AggregationResult
}

type Handler struct {
	config     *Config
	aggregator Aggregator
	logger     logger.Logger
}

func NewHandler(config *Config, aggregator Aggregator, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		aggregator: aggregator,
		logger:     log.With(map[string]interface{}{"taskType": TaskType}),
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

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	result, err := schema.ValidateBytes([]byte(variables))
	if err != nil {
		return nil, errors.NewRequestInvalidError(err)
	}
	if !result.Valid {
		return nil, errors.NewRequestInvalidError(fmt.Errorf("invalid variables: %s", strings.Join(result.GetErrorMessages(), "; ")))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewRequestInvalidError(err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewUpstreamFailureError("aggregation", 0, err)
	}

	params := signals.RequestParams{
		TimeWindow:     input.TimeWindow,
		Location:       input.Location,
		Subreddits:     input.Subreddits,
		SocialKeywords: input.SocialKeywords,
	}
	if params.TimeWindow == "" {
		params.TimeWindow = h.config.DefaultWindow
	}
	if params.Location == "" {
		params.Location = h.config.DefaultLocation
	}

	result := h.aggregator.Aggregate(ctx, params)

	h.logger.Info("signals aggregated", map[string]interface{}{
		"signals":  len(result.Signals),
		"warnings": len(result.Warnings),
	})

	return &Output{
		Signals:     result.Signals,
		Warnings:    result.Warnings,
		SignalCount: len(result.Signals),
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	bpmnErr := errors.ConvertToBPMNError(errors.AsStandard(err))

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"errorCode": bpmnErr.Code,
		"category":  errors.GetErrorCategory(errors.CodeOf(err)),
		"error":     err.Error(),
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

// ParseInput validates and decodes raw job variables.
func (h *Handler) ParseInput(variables string) (*Input, error) {
	return h.parseInput(variables)
}
