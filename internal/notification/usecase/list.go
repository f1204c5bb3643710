package usecase

import (
	"context"

	"github.com/anastasipancheva/miniapppass/internal/notification/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
)

const defaultListLimit = 50

type (
	ListInput struct {
		Limit int `json:"limit" validate:"gte=0,lte=500"`
	}

	ListOutput struct {
		Notifications []entity.Notification
	}
)

// List returns the most recent notifications first.
func (s *Usecase) List(ctx context.Context, in ListInput) (*ListOutput, error) {
	ctx, span := s.startSpan(ctx, "List")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	limit := in.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	return &ListOutput{Notifications: s.feed.Latest(ctx, limit)}, nil
}
