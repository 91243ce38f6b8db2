// Package problems creates problem records.
package problems

import (
	"context"
	"fmt"
	"strings"

	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/common/validation"
	"servicenow-toolkit/internal/snow"
	"servicenow-toolkit/internal/snow/resolve"
)

const tableProblem = "problem"

var createProblemSchema = validation.ObjectSchema(map[string]interface{}{
	"short_description": validation.NonEmptyStringProp(),
	"urgency":           validation.EnumProp("1", "2", "3"),
	"impact":            validation.EnumProp("1", "2", "3"),
}, "short_description")

// CreateProblemParams holds the fields for a new problem record. Extra
// fields beyond the named ones go into Fields verbatim.
type CreateProblemParams struct {
	ShortDescription string            `json:"short_description"`
	Urgency          string            `json:"urgency,omitempty"`
	Impact           string            `json:"impact,omitempty"`
	AssignedTo       string            `json:"assigned_to,omitempty"`
	Fields           map[string]string `json:"fields,omitempty"`
}

type ProblemResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ProblemID     string `json:"problem_id,omitempty"`
	ProblemNumber string `json:"problem_number,omitempty"`
}

type TableAPI interface {
	CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error)
}

type Resolver interface {
	Resolve(ctx context.Context, kind resolve.EntityKind, raw string) (resolve.Result, error)
}

type Service struct {
	client   TableAPI
	resolver Resolver
	logger   logger.Logger
}

func NewService(client TableAPI, resolver Resolver, log logger.Logger) *Service {
	return &Service{
		client:   client,
		resolver: resolver,
		logger:   log,
	}
}

// Create inserts a problem. Parameters are checked against the schema first;
// urgency and impact default to low.
func (s *Service) Create(ctx context.Context, params CreateProblemParams) *ProblemResponse {
	check, err := validation.ValidateParams(params, createProblemSchema)
	if err != nil {
		s.logger.Error("problem parameter validation failed to run", map[string]interface{}{"error": err.Error()})
		return &ProblemResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to validate parameters: %v", err),
		}
	}
	if !check.Valid {
		return &ProblemResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid parameters: %s", strings.Join(check.GetErrorMessages(), "; ")),
		}
	}

	urgency := params.Urgency
	if urgency == "" {
		urgency = "3"
	}
	impact := params.Impact
	if impact == "" {
		impact = "3"
	}

	data := map[string]interface{}{
		"short_description": params.ShortDescription,
		"urgency":           urgency,
		"impact":            impact,
	}

	if params.AssignedTo != "" {
		result, err := s.resolver.Resolve(ctx, resolve.KindUser, params.AssignedTo)
		if err != nil || !result.Resolved {
			return &ProblemResponse{
				Success: false,
				Message: fmt.Sprintf("Could not resolve user: %s", params.AssignedTo),
			}
		}
		data["assigned_to"] = result.CanonicalID
	}

	for field, value := range params.Fields {
		data[field] = value
	}

	record, err := s.client.CreateRecord(ctx, tableProblem, data)
	if err != nil {
		s.logger.Error("failed to create problem", map[string]interface{}{"error": err.Error()})
		return &ProblemResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to create problem: %v", err),
		}
	}

	return &ProblemResponse{
		Success:       true,
		Message:       fmt.Sprintf("Problem created successfully. The sys_id of the problem is: %s", record.SysID()),
		ProblemID:     record.SysID(),
		ProblemNumber: record.GetString("number"),
	}
}
