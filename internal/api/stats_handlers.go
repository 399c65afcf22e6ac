package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagepace/pagepace-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Get reading stats",
		Description: "Returns aggregates derived from the current user's finalized sessions",
		Tags:        []string{"Stats"},
	}, s.handleGetStats)
}

// GetStatsInput has no parameters; identity comes from context.
type GetStatsInput struct{}

// StatsOutput wraps the stats response for Huma.
type StatsOutput struct {
	Body domain.ReadingStats
}

func (s *Server) handleGetStats(ctx context.Context, _ *GetStatsInput) (*StatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Stats.Compute(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: *result}, nil
}
