// Package requests manages sc_request and sc_req_item records.
package requests

import (
	"context"
	"fmt"

	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/snow"
	"servicenow-toolkit/internal/snow/query"
	"servicenow-toolkit/internal/snow/resolve"
)

const (
	tableRequest     = "sc_request"
	tableRequestItem = "sc_req_item"
	tableCatalogItem = "sc_cat_item"
)

type TableAPI interface {
	GetRecords(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error)
	CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error)
	DeleteRecord(ctx context.Context, table, sysID string) error
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

// ListItemRequests returns a page of sc_req_item rows. Filters that carry
// free-form identifiers are resolved first; an unresolvable value is kept as
// a direct match since it may already be a valid reference.
func (s *Service) ListItemRequests(ctx context.Context, params ListItemRequestsParams) *ListItemRequestsResponse {
	b := query.NewBuilder()

	if params.RequestedFor != "" {
		result, err := s.resolver.Resolve(ctx, resolve.KindUser, params.RequestedFor)
		if err == nil && result.Resolved {
			b.Equals("requested_for", result.CanonicalID)
		} else {
			b.Equals("requested_for", params.RequestedFor)
		}
	}
	if params.CatItem != "" {
		result, err := s.resolver.Resolve(ctx, resolve.KindCatalogItem, params.CatItem)
		if err == nil && result.Resolved {
			b.Equals("cat_item", result.CanonicalID)
		} else {
			b.Equals("cat_item", params.CatItem)
		}
	}
	b.Equals("number", params.Number)
	b.Like("short_description", params.ShortDescription)

	q, err := b.Build()
	if err != nil {
		return &ListItemRequestsResponse{Success: false, Message: err.Error()}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}

	records, err := s.client.GetRecords(ctx, tableRequestItem, snow.RecordQuery{
		Query:        q,
		Limit:        limit,
		Offset:       params.Offset,
		DisplayValue: "true",
	})
	if err != nil {
		s.logger.Error("failed to list item requests", map[string]interface{}{"error": err.Error()})
		return &ListItemRequestsResponse{Success: false, Message: fmt.Sprintf("Failed to list item requests: %v", err)}
	}

	return &ListItemRequestsResponse{
		Success:      true,
		Message:      fmt.Sprintf("Found %d item requests", len(records)),
		ItemRequests: records,
		Count:        len(records),
	}
}

// CreateItemRequest inserts one sc_req_item row.
func (s *Service) CreateItemRequest(ctx context.Context, params CreateItemRequestParams) *RequestResponse {
	quantity := params.Quantity
	if quantity == "" {
		quantity = "1"
	}

	data := map[string]interface{}{
		"state":             params.State,
		"short_description": params.ShortDescription,
		"quantity":          quantity,
	}
	if params.Number != "" {
		data["number"] = params.Number
	}
	if params.Request != "" {
		data["request"] = params.Request
	}

	if params.RequestedFor != "" {
		result, err := s.resolver.Resolve(ctx, resolve.KindUser, params.RequestedFor)
		if err != nil || !result.Resolved {
			return &RequestResponse{
				Success: false,
				Message: fmt.Sprintf("Could not resolve user: %s", params.RequestedFor),
			}
		}
		data["requested_for"] = result.CanonicalID
	}

	if params.CatItem != "" {
		result, err := s.resolver.Resolve(ctx, resolve.KindCatalogItem, params.CatItem)
		if err != nil || !result.Resolved {
			return &RequestResponse{
				Success: false,
				Message: fmt.Sprintf("Could not resolve catalog item: %s", params.CatItem),
			}
		}
		data["cat_item"] = result.CanonicalID
	}

	record, err := s.client.CreateRecord(ctx, tableRequestItem, data)
	if err != nil {
		s.logger.Error("failed to create item request", map[string]interface{}{"error": err.Error()})
		return &RequestResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to create item request: %v", err),
		}
	}

	return &RequestResponse{
		Success: true,
		Message: "Item request created successfully",
		SysID:   record.SysID(),
		Number:  record.GetString("number"),
	}
}

// CreateRequest inserts one sc_request row.
func (s *Service) CreateRequest(ctx context.Context, params CreateRequestParams) *RequestResponse {
	approval := params.Approval
	if approval == "" {
		approval = "not requested"
	}

	data := map[string]interface{}{
		"state":    params.State,
		"approval": approval,
	}

	if params.RequestedFor != "" {
		result, err := s.resolver.Resolve(ctx, resolve.KindUser, params.RequestedFor)
		if err != nil || !result.Resolved {
			return &RequestResponse{
				Success: false,
				Message: fmt.Sprintf("Could not resolve user: %s", params.RequestedFor),
			}
		}
		data["requested_for"] = result.CanonicalID
	}

	record, err := s.client.CreateRecord(ctx, tableRequest, data)
	if err != nil {
		s.logger.Error("failed to create request", map[string]interface{}{"error": err.Error()})
		return &RequestResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to create request: %v", err),
		}
	}

	return &RequestResponse{
		Success: true,
		Message: "Request created successfully",
		SysID:   record.SysID(),
		Number:  record.GetString("number"),
	}
}

// CreateServiceRequest finds the catalog item, creates the parent request
// and then the request item. If the item insert fails the parent request is
// deleted so no orphaned half-request survives; the cleanup is best-effort
// and its own failure is only logged.
func (s *Service) CreateServiceRequest(ctx context.Context, params CreateServiceRequestParams) *ServiceRequestResponse {
	if err := query.ValidateTerm(params.CatalogItem); err != nil {
		return &ServiceRequestResponse{Success: false, Message: err.Error()}
	}

	items, err := s.client.GetRecords(ctx, tableCatalogItem, snow.RecordQuery{
		Query:  fmt.Sprintf("nameLIKE%s^ORsys_id=%s", params.CatalogItem, params.CatalogItem),
		Limit:  1,
		Fields: []string{"sys_id", "name", "short_description"},
	})
	if err != nil {
		s.logger.Error("failed to find catalog item", map[string]interface{}{"error": err.Error()})
		return &ServiceRequestResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to create service request: %v", err),
		}
	}
	if len(items) == 0 {
		return &ServiceRequestResponse{
			Success: false,
			Message: fmt.Sprintf("Catalog item '%s' not found", params.CatalogItem),
		}
	}

	catalogItemID := items[0].SysID()
	catalogItemName := items[0].GetString("name")

	shortDescription := params.ShortDescription
	if shortDescription == "" {
		shortDescription = fmt.Sprintf("Request for %s", catalogItemName)
	}
	description := params.Description
	if description == "" {
		description = fmt.Sprintf("Service catalog request for %s", catalogItemName)
	}

	requestData := map[string]interface{}{
		"short_description": shortDescription,
		"description":       description,
	}
	if params.RequestedFor != "" {
		requestData["requested_for"] = params.RequestedFor
	}

	request, err := s.client.CreateRecord(ctx, tableRequest, requestData)
	if err != nil {
		s.logger.Error("failed to create service request", map[string]interface{}{"error": err.Error()})
		return &ServiceRequestResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to create service request: %v", err),
		}
	}

	requestID := request.SysID()
	requestNumber := request.GetString("number")

	quantity := params.Quantity
	if quantity == "" {
		quantity = "1"
	}
	itemData := map[string]interface{}{
		"request":           requestID,
		"cat_item":          catalogItemID,
		"quantity":          quantity,
		"short_description": shortDescription,
	}
	if params.RequestedFor != "" {
		itemData["requested_for"] = params.RequestedFor
	}

	item, err := s.client.CreateRecord(ctx, tableRequestItem, itemData)
	if err != nil {
		s.logger.Error("failed to create request item, removing parent request", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		if delErr := s.client.DeleteRecord(ctx, tableRequest, requestID); delErr != nil {
			s.logger.Warn("failed to remove orphaned request", map[string]interface{}{
				"request_id": requestID,
				"error":      delErr.Error(),
			})
		}
		return &ServiceRequestResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to create service request: %v", err),
		}
	}

	return &ServiceRequestResponse{
		Success:       true,
		Message:       fmt.Sprintf("Service request %s created successfully", requestNumber),
		RequestID:     requestID,
		RequestNumber: requestNumber,
		ItemID:        item.SysID(),
		CatalogItem:   catalogItemName,
	}
}
