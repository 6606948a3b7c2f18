// internal/workers/recommendation/classify-college-fit/handler.go
package classifycollegefit

import (
	"context"

	"college-fit-workers/internal/common/camunda"
	"college-fit-workers/internal/common/errors"
	"college-fit-workers/internal/common/logger"
	"college-fit-workers/internal/common/metrics"
	"college-fit-workers/internal/common/validation"
	"college-fit-workers/internal/engine"
	"college-fit-workers/internal/models"
	"college-fit-workers/internal/recommendation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "classify-college-fit"

type Classifier interface {
	Classify(profile *models.UserAcademicProfile, college *models.CollegeRecord) (*engine.PairResult, error)
}

// Handler scores one inline pair; nothing is read from or written to the cache.
type Handler struct {
	config       *Config
	service      Classifier
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, service Classifier, log logger.Logger) *Handler {
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
		h.failJob(ctx, client, job, recommendation.ToStandardError(err, input.Profile.UserID))
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

	var raw struct {
		Profile map[string]interface{} `json:"profile"`
		College map[string]interface{} `json:"college"`
	}
	if err := job.GetVariablesAs(&raw); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	profile, err := models.ProfileFromMap(raw.Profile)
	if err != nil {
		return nil, errors.NewInvalidInputError("profile: " + err.Error())
	}
	college, err := models.CollegeFromMap(raw.College)
	if err != nil {
		return nil, errors.NewInvalidInputError("college: " + err.Error())
	}
	return &Input{Profile: profile, College: college}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := h.service.Classify(input.Profile, input.College)
	if err != nil {
		return nil, err
	}
	rec := result.Recommendation

	h.logger.Info("college classified", map[string]interface{}{
		"userId":         input.Profile.UserID,
		"college":        input.College.Name,
		"score":          rec.FitScore,
		"category":       rec.Category,
		"classification": rec.Classification,
		"matchLabel":     result.MatchLabel,
	})

	return &Output{
		CollegeID:      rec.CollegeID,
		Score:          rec.FitScore,
		Category:       rec.Category,
		Classification: rec.Classification,
		MatchLabel:     result.MatchLabel,
		Selectivity:    rec.SelectivityLevel,
		SignalScores:   rec.SignalScores,
		Explanation:    rec.Explanation,
		Eligibility:    rec.Eligibility,
		FinancialFit:   rec.FinancialFit,
	}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *errors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
