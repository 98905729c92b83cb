package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/formrelay"
)

type formRelay interface {
	Configured() bool
	Submit(ctx context.Context, fields map[string]string) (*formrelay.Result, error)
}

// ContactService relays public contact-form submissions to the external form
// delivery provider. Without an access key it degrades to a clear
// configuration error instead of silently dropping messages.
type ContactService struct {
	relay     formRelay
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService constructs a ContactService instance.
func NewContactService(relay formRelay, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ContactService{relay: relay, validator: validate, logger: logger}
}

// Submit validates and relays the contact form.
func (s *ContactService) Submit(ctx context.Context, req models.ContactRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contact payload")
	}

	if s.relay == nil || !s.relay.Configured() {
		return appErrors.Clone(appErrors.ErrConfigAbsent, "contact form delivery is not configured")
	}

	result, err := s.relay.Submit(ctx, map[string]string{
		"name":    req.Name,
		"email":   req.Email,
		"subject": req.Subject,
		"message": req.Message,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to relay contact form")
	}
	if !result.Success {
		s.logger.Warn("contact relay rejected submission", zap.String("message", result.Message))
		return appErrors.Clone(appErrors.ErrInternal, "contact form delivery failed")
	}
	return nil
}
