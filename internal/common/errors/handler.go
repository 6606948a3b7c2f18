// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	goerrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler turns a worker error into either a FailJob (retryable, with
// the broker's retry budget) or a ThrowError the process model can catch.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// AsStandardError unwraps err to a StandardError, or wraps it as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if goerrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// Resolution is what HandleJobError will send for a job.
type Resolution struct {
	Throw   bool
	Retries int32
}

// Resolve decides between failing with retries and throwing. The broker's
// remaining retries are never raised.
func Resolve(bpmnErr *BPMNError, remaining int32) Resolution {
	if bpmnErr.Retries <= 0 || remaining <= 1 {
		return Resolution{Throw: true}
	}
	retries := remaining - 1
	if retries > int32(bpmnErr.Retries) {
		retries = int32(bpmnErr.Retries)
	}
	return Resolution{Retries: retries}
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	res := Resolve(bpmnErr, job.Retries)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"workflowInstance": job.ProcessInstanceKey,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"thrown":           res.Throw,
		"retriesLeft":      res.Retries,
	})

	vars := errorVariablesJSON(bpmnErr)
	if res.Throw {
		h.throw(ctx, client, job, bpmnErr, vars)
		return
	}
	h.fail(ctx, client, job, bpmnErr, res.Retries, vars)
}

func (h *ErrorHandler) fail(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int32, vars string) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(bpmnErr.Message)

	if vars != "" {
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			h.send(ctx, job, func(ctx context.Context) (interface{}, error) { return withVars.Send(ctx) })
			return
		}
	}
	h.send(ctx, job, func(ctx context.Context) (interface{}, error) { return cmd.Send(ctx) })
}

func (h *ErrorHandler) throw(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, vars string) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if vars != "" {
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			h.send(ctx, job, func(ctx context.Context) (interface{}, error) { return withVars.Send(ctx) })
			return
		}
	}
	h.send(ctx, job, func(ctx context.Context) (interface{}, error) { return cmd.Send(ctx) })
}

func (h *ErrorHandler) send(ctx context.Context, job entities.Job, send func(context.Context) (interface{}, error)) {
	if _, err := send(ctx); err != nil {
		h.logger.Error("failed to report job error to broker", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// errorVariablesJSON returns "" when there is nothing to attach.
func errorVariablesJSON(bpmnErr *BPMNError) string {
	vars := bpmnErr.ToErrorVariables()
	if len(vars) == 0 {
		return ""
	}
	raw, err := json.Marshal(vars)
	if err != nil {
		return ""
	}
	return string(raw)
}
