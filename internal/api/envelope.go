package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagepace/pagepace-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the same envelope the
// plain chi handlers produce, so clients see one shape everywhere.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, err := strconv.Atoi(status)
	if err != nil {
		code = 200
	}

	if apiErr, ok := v.(*APIError); ok {
		return response.Envelope{
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
		}, nil
	}

	return response.Envelope{
		Success: code < 400,
		Data:    v,
	}, nil
}
