package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/clock"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/SscSPs/ledger_engine/internal/core/services"

// BaseService provides common functionality for all services
type BaseService struct {
	Clock    clock.Clock
	Validate *validator.Validate
}

func newBaseService(clk clock.Clock) BaseService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return BaseService{Clock: clk, Validate: validator.New()}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// StartSpan opens a span on the global tracer provider. It is a no-op until
// a provider is installed.
func (s *BaseService) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name)
}

// EndSpan records err on the span, if any, and ends it.
func (s *BaseService) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// requireAttribution enforces the explicit actor and source system every
// mutating call must carry.
func requireAttribution(actor, sourceSystem string) error {
	if strings.TrimSpace(actor) == "" {
		return fmt.Errorf("%w: actor is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(sourceSystem) == "" {
		return fmt.Errorf("%w: source system is required", apperrors.ErrValidation)
	}
	return nil
}

// validateStruct runs validator tags and folds failures into ErrValidation.
// Fields named in except are skipped.
func (s *BaseService) validateStruct(v any, except ...string) error {
	var err error
	if len(except) > 0 {
		err = s.Validate.StructExcept(v, except...)
	} else {
		err = s.Validate.Struct(v)
	}
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return nil
}
