// internal/workers/recommendation/get-college-recommendation/handler.go
package getcollegerecommendation

import (
	"context"
	goerrors "errors"

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

const TaskType = "get-college-recommendation"

type CollegeReader interface {
	GetForCollege(ctx context.Context, userID string, collegeID int64) (*models.Recommendation, error)
}

type Handler struct {
	config       *Config
	service      CollegeReader
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, service CollegeReader, log logger.Logger) *Handler {
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

// Execute looks the college up in the user's list. A college missing from the
// list completes with Found false so the process can branch on it.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	rec, err := h.service.GetForCollege(ctx, input.UserID, input.CollegeID)
	if goerrors.Is(err, recommendation.ErrRecommendationNotFound) {
		h.logger.Info("no recommendation for college", map[string]interface{}{
			"userId":    input.UserID,
			"collegeId": input.CollegeID,
		})
		return &Output{Found: false}, nil
	}
	if err != nil {
		return nil, err
	}

	h.logger.Info("recommendation served", map[string]interface{}{
		"userId":         input.UserID,
		"collegeId":      input.CollegeID,
		"classification": rec.Classification,
		"fitScore":       rec.FitScore,
	})
	return &Output{Recommendation: rec, Found: true}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *errors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
