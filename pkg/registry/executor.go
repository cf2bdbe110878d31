package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/wehubfusion/Daedalus/pkg/events"
	"github.com/wehubfusion/Daedalus/pkg/lifecycle"
	"github.com/wehubfusion/Daedalus/pkg/unit"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ExecutionResult is produced once per invocation and never mutated after
// return.
type ExecutionResult struct {
	ExecutionID  string                 `json:"execution_id"`
	UnitID       string                 `json:"unit_id"`
	Outputs      map[string]interface{} `json:"outputs,omitempty"`
	Success      bool                   `json:"success"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	DurationMs   int64                  `json:"duration_ms"`
	StateAfter   lifecycle.State        `json:"state_after"`
}

// ExecuteUnit invokes a loaded unit with isolation: validation hooks and the
// execute entry point may fail or panic without anything propagating past the
// registry. The only errors returned alongside a nil result are typed lookup
// failures for unknown or disabled ids; execution failures come back as a
// failed ExecutionResult.
func (r *Registry) ExecuteUnit(ctx context.Context, id string, inputs, config map[string]interface{}) (*ExecutionResult, error) {
	lu, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	ctx, span := r.tracer.Start(ctx, "registry.execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("unit.id", id),
		attribute.String("unit.instance", lu.InstanceID),
	)

	if r.limiter != nil {
		if err := r.limiter.Acquire(ctx); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		defer r.limiter.Release()
	}

	if err := lu.tracker.BeginExecution(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	execID := uuid.NewString()
	start := time.Now()
	outputs, execErr := runGuarded(ctx, lu.instance, inputs, config)
	duration := time.Since(start)

	failed := execErr != nil
	stats := lu.tracker.RecordExecution(duration, failed)
	stateAfter := lu.tracker.State()
	if stateAfter == lifecycle.StateCompleted {
		// Completed loops back to initialized so the unit is ready for the
		// next invocation.
		_ = lu.tracker.Transition(lifecycle.StateInitialized)
	}

	result := &ExecutionResult{
		ExecutionID: execID,
		UnitID:      id,
		Outputs:     outputs,
		Success:     !failed,
		DurationMs:  duration.Milliseconds(),
		StateAfter:  stateAfter,
	}

	if failed {
		result.ErrorMessage = execErr.Error()
		span.SetStatus(codes.Error, execErr.Error())
		span.RecordError(execErr)
		r.logger.Error("unit execution failed",
			zap.String("unit", id),
			zap.String("execution", execID),
			zap.Duration("duration", duration),
			zap.Error(execErr))
		if r.config.ReportErrors {
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("unit", id)
				scope.SetTag("execution", execID)
				sentry.CaptureException(execErr)
			})
		}
	} else {
		span.SetStatus(codes.Ok, "")
		r.logger.Debug("unit executed",
			zap.String("unit", id),
			zap.String("execution", execID),
			zap.Duration("duration", duration),
			zap.Int64("executions", stats.ExecutionCount))
	}

	r.collector.ObserveExecution(id, duration.Seconds(), failed)
	success := !failed
	r.emitter.Emit(events.Event{
		Type:       events.EventUnitExecuted,
		UnitID:     id,
		Category:   lu.descriptor.Category,
		Success:    &success,
		DurationMs: duration.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	})

	return result, nil
}

// runGuarded runs the unit's validation hooks and execute entry point,
// converting panics anywhere in that path into execution errors.
func runGuarded(ctx context.Context, instance unit.Unit, inputs, config map[string]interface{}) (outputs map[string]interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			outputs = nil
			err = fmt.Errorf("unit panicked: %v", rec)
		}
	}()

	if v, ok := instance.(unit.InputValidator); ok {
		inputs, err = v.ValidateInputs(inputs)
		if err != nil {
			return nil, fmt.Errorf("input validation failed: %w", err)
		}
	}
	if v, ok := instance.(unit.ConfigValidator); ok {
		config, err = v.ValidateConfig(config)
		if err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return instance.Execute(ctx, inputs, config)
}
