// internal/workers/recommendation/get-college-recommendations/handler.go
package getcollegerecommendations

import (
	"context"

	"college-fit-workers/internal/common/camunda"
	"college-fit-workers/internal/common/errors"
	"college-fit-workers/internal/common/logger"
	"college-fit-workers/internal/common/metrics"
	"college-fit-workers/internal/common/validation"
	"college-fit-workers/internal/models"
	"college-fit-workers/internal/recommendation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "get-college-recommendations"

type Lister interface {
	GetAll(ctx context.Context, userID string, filters models.RecommendationFilters) (*recommendation.ListResult, error)
}

type Handler struct {
	config       *Config
	service      Lister
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, service Lister, log logger.Logger) *Handler {
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

	filters, err := recommendation.ParseFilters(input.Filters)
	if err != nil {
		return nil, errors.NewInvalidFilterFormatError(err.Error())
	}
	input.parsed = filters
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	filters := input.parsed
	if filters.Limit == 0 || filters.Limit > h.config.MaxResults {
		filters.Limit = h.config.MaxResults
	}

	result, err := h.service.GetAll(ctx, input.UserID, filters)
	if err != nil {
		return nil, err
	}

	if result.ProfileIncomplete {
		h.logger.Info("profile incomplete", map[string]interface{}{"userId": input.UserID})
		return &Output{
			Recommendations:   []models.Recommendation{},
			Stats:             result.Stats,
			ProfileIncomplete: true,
			Message:           result.Message,
		}, nil
	}

	h.logger.Info("recommendations served", map[string]interface{}{
		"userId":    input.UserID,
		"count":     len(result.Recommendations),
		"total":     result.Stats.Total,
		"fromCache": result.FromCache,
	})

	generatedAt := result.GeneratedAt
	return &Output{
		Recommendations: result.Recommendations,
		Count:           len(result.Recommendations),
		Stats:           result.Stats,
		FromCache:       result.FromCache,
		GeneratedAt:     &generatedAt,
	}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *errors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
