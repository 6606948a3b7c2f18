// internal/workers/recommendation/get-recommendation-stats/handler.go
package getrecommendationstats

import (
	"context"

	"college-fit-workers/internal/common/camunda"
	"college-fit-workers/internal/common/errors"
	"college-fit-workers/internal/common/logger"
	"college-fit-workers/internal/common/metrics"
	"college-fit-workers/internal/common/validation"
	"college-fit-workers/internal/recommendation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "get-recommendation-stats"

type StatsReader interface {
	GetStats(ctx context.Context, userID string) (*recommendation.ListResult, error)
}

type Handler struct {
	config       *Config
	service      StatsReader
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, service StatsReader, log logger.Logger) *Handler {
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

	if stdErr := validation.ValidateJobInput(inputSchema, job.GetVariables()); stdErr != nil {
		h.failJob(ctx, client, job, stdErr)
		return
	}
	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		h.failJob(ctx, client, job, errors.NewInvalidInputError(err.Error()))
		return
	}

	output, err := h.Execute(ctx, &input)
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.service.GetStats(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if result.ProfileIncomplete {
		return &Output{
			Stats:             result.Stats,
			ProfileIncomplete: true,
			Message:           result.Message,
		}, nil
	}

	h.logger.Info("stats served", map[string]interface{}{
		"userId":    input.UserID,
		"total":     result.Stats.Total,
		"fromCache": result.FromCache,
	})

	generatedAt := result.GeneratedAt
	return &Output{
		Stats:       result.Stats,
		FromCache:   result.FromCache,
		GeneratedAt: &generatedAt,
	}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *errors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
