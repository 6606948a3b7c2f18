// internal/workers/recommendation/generate-college-recommendations/handler.go
package generatecollegerecommendations

import (
	"context"
	goerrors "errors"

	"college-fit-workers/internal/common/camunda"
	"college-fit-workers/internal/common/errors"
	"college-fit-workers/internal/common/logger"
	"college-fit-workers/internal/common/metrics"
	"college-fit-workers/internal/common/validation"
	"college-fit-workers/internal/recommendation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "generate-college-recommendations"

type Generator interface {
	Generate(ctx context.Context, userID string) (*recommendation.GenerateResult, error)
}

type Handler struct {
	config       *Config
	service      Generator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, service Generator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		service:      service,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, stdErr := h.parseInput(job)
	if stdErr != nil {
		h.failJob(ctx, client, job, stdErr)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, recommendation.ToStandardError(err, input.UserID))
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) parseInput(job entities.Job) (*Input, *errors.StandardError) {
	if stdErr := validation.ValidateJobInput(inputSchema, job.GetVariables()); stdErr != nil {
		return nil, stdErr
	}
	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	return &input, nil
}

// Execute regenerates the user's list. A list that was computed but could not
// be cached still completes the job, with Persisted false.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.service.Generate(ctx, input.UserID)
	if err != nil {
		if result == nil || !goerrors.Is(err, recommendation.ErrCacheWrite) {
			return nil, err
		}
		h.logger.Warn("recommendations generated but not persisted", map[string]interface{}{
			"userId": input.UserID,
			"runId":  result.RunID,
			"error":  err.Error(),
		})
	}

	h.logger.Info("recommendations generated", map[string]interface{}{
		"userId":    input.UserID,
		"runId":     result.RunID,
		"count":     result.Stats.Total,
		"persisted": result.Persisted,
	})

	return &Output{
		RunID:       result.RunID,
		GeneratedAt: result.GeneratedAt,
		Stats:       result.Stats,
		Persisted:   result.Persisted,
	}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *errors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
