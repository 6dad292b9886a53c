package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/clinova/consult/internal/model"
)

// InviteLogService serves the invite dispatch audit trail
type InviteLogService struct {
	logs InviteLogStore
}

// NewInviteLogService creates a new invite log service
func NewInviteLogService(logs InviteLogStore) *InviteLogService {
	return &InviteLogService{
		logs: logs,
	}
}

// List retrieves invite log summaries with optional filtering
func (s *InviteLogService) List(ctx context.Context, consultationID, finalStatus string, page, limit int) ([]model.InviteLogSummary, int64, error) {
	filter := bson.M{}
	if consultationID != "" {
		filter["consultation_id"] = consultationID
	}
	if finalStatus != "" {
		filter["final_status"] = finalStatus
	}

	logs, total, err := s.logs.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]model.InviteLogSummary, len(logs))
	for i, log := range logs {
		summaries[i] = log.ToSummary()
	}

	return summaries, total, nil
}
