// Package orders runs hardware orders through the service catalog, from
// browsing items to provisioning the resulting asset.
package orders

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/notify"
	"servicenow-toolkit/internal/snow"
	"servicenow-toolkit/internal/snow/query"
	"servicenow-toolkit/internal/snow/resolve"
)

const (
	tableCatalogItem = "sc_cat_item"
	tableRequest     = "sc_request"
	tableRequestItem = "sc_req_item"
	tableAsset       = "alm_asset"
	tableUser        = "sys_user"
)

type TableAPI interface {
	GetRecords(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error)
	GetRecord(ctx context.Context, table, sysID string) (snow.Record, error)
	CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error)
	UpdateRecord(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error)
	DeleteRecord(ctx context.Context, table, sysID string) error
}

type Resolver interface {
	Resolve(ctx context.Context, kind resolve.EntityKind, raw string) (resolve.Result, error)
}

// Service runs order operations. The notifier is optional; without one,
// CancelOrder skips requestor notification.
type Service struct {
	client   TableAPI
	resolver Resolver
	notifier notify.Notifier
	logger   logger.Logger
}

func NewService(client TableAPI, resolver Resolver, notifier notify.Notifier, log logger.Logger) *Service {
	return &Service{
		client:   client,
		resolver: resolver,
		notifier: notifier,
		logger:   log,
	}
}

// BrowseCatalog lists active catalog items with a derived price bucket.
// PriceRange ("min-max") filters client side, after retrieval.
func (s *Service) BrowseCatalog(ctx context.Context, params BrowseCatalogParams) *BrowseCatalogResponse {
	b := query.NewBuilder()
	if params.AvailableOnly == nil || *params.AvailableOnly {
		b.Equals("active", "true")
	}
	b.Like("category.name", params.Category)
	b.Like("short_description", params.Manufacturer)

	q, err := b.Build()
	if err != nil {
		return &BrowseCatalogResponse{Success: false, Message: err.Error()}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 20
	}

	records, err := s.client.GetRecords(ctx, tableCatalogItem, snow.RecordQuery{
		Query:        q,
		Fields:       []string{"sys_id", "name", "short_description", "category", "price", "active", "description"},
		Limit:        limit,
		Offset:       params.Offset,
		DisplayValue: "true",
	})
	if err != nil {
		s.logger.Error("failed to browse catalog", map[string]interface{}{"error": err.Error()})
		return &BrowseCatalogResponse{Success: false, Message: fmt.Sprintf("Failed to browse hardware catalog: %v", err)}
	}

	minPrice, maxPrice, filterByPrice := parsePriceRange(params.PriceRange)

	items := make([]CatalogItem, 0, len(records))
	for _, record := range records {
		price := record.GetString("price")
		value, parsed := parsePrice(price)
		if filterByPrice && (!parsed || value < minPrice || value > maxPrice) {
			continue
		}
		items = append(items, CatalogItem{
			SysID:            record.SysID(),
			Name:             record.GetString("name"),
			ShortDescription: record.GetString("short_description"),
			Category:         record.GetDisplayValue("category"),
			Price:            price,
			PriceRange:       classifyPrice(price),
			Description:      record.GetString("description"),
			Active:           record.GetString("active") == "true",
		})
	}

	return &BrowseCatalogResponse{
		Success: true,
		Message: fmt.Sprintf("Found %d hardware items", len(items)),
		Items:   items,
		Count:   len(items),
	}
}

// SubmitOrder creates the service request and its request item. If the item
// insert fails the parent request is deleted so no orphan remains.
func (s *Service) SubmitOrder(ctx context.Context, params SubmitOrderParams) *SubmitOrderResponse {
	catalogItem, err := s.client.GetRecord(ctx, tableCatalogItem, params.CatalogItemID)
	if err != nil || len(catalogItem) == 0 {
		if apiErr, ok := err.(*snow.APIError); err == nil || (ok && apiErr.IsNotFound()) {
			return &SubmitOrderResponse{
				Success: false,
				Message: fmt.Sprintf("Catalog item %s not found", params.CatalogItemID),
			}
		}
		s.logger.Error("failed to look up catalog item", map[string]interface{}{"error": err.Error()})
		return &SubmitOrderResponse{Success: false, Message: fmt.Sprintf("Failed to submit hardware order: %v", err)}
	}

	result, err := s.resolver.Resolve(ctx, resolve.KindUser, params.RequestedFor)
	if err != nil || !result.Resolved {
		return &SubmitOrderResponse{
			Success: false,
			Message: fmt.Sprintf("Could not resolve user: %s", params.RequestedFor),
		}
	}

	quantity := params.Quantity
	if quantity == 0 {
		quantity = 1
	}
	priority := params.Priority
	if priority == "" {
		priority = "3"
	}
	itemName := catalogItem.GetString("name")
	if itemName == "" {
		itemName = "Hardware Item"
	}

	requestData := map[string]interface{}{
		"requested_for":     result.CanonicalID,
		"short_description": fmt.Sprintf("Hardware Order: %s", itemName),
		"description":       fmt.Sprintf("Order for %dx %s", quantity, itemName),
		"priority":          priority,
		"state":             "1",
	}
	if params.Justification != "" {
		requestData["justification"] = params.Justification
	}
	if params.RequestedDeliveryDate != "" {
		requestData["delivery_date"] = params.RequestedDeliveryDate
	}
	if params.SpecialInstructions != "" {
		requestData["special_instructions"] = params.SpecialInstructions
	}

	request, err := s.client.CreateRecord(ctx, tableRequest, requestData)
	if err != nil {
		s.logger.Error("failed to create service request", map[string]interface{}{"error": err.Error()})
		return &SubmitOrderResponse{Success: false, Message: fmt.Sprintf("Failed to submit hardware order: %v", err)}
	}
	requestID := request.SysID()

	itemData := map[string]interface{}{
		"request":         requestID,
		"cat_item":        params.CatalogItemID,
		"quantity":        strconv.Itoa(quantity),
		"price":           catalogItem.GetString("price"),
		"recurring_price": catalogItem.GetString("recurring_price"),
		"state":           "1",
	}
	if params.CostCenter != "" {
		itemData["cost_center"] = params.CostCenter
	}
	if params.ProjectCode != "" {
		itemData["project_code"] = params.ProjectCode
	}

	item, err := s.client.CreateRecord(ctx, tableRequestItem, itemData)
	if err != nil {
		s.logger.Error("failed to create request item, removing parent request", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		if cleanupErr := s.client.DeleteRecord(ctx, tableRequest, requestID); cleanupErr != nil {
			s.logger.Warn("failed to clean up orphaned request", map[string]interface{}{
				"request_id": requestID,
				"error":      cleanupErr.Error(),
			})
		}
		return &SubmitOrderResponse{Success: false, Message: fmt.Sprintf("Failed to submit hardware order: %v", err)}
	}

	estimatedCost := catalogItem.GetString("price")
	if estimatedCost == "" {
		estimatedCost = "TBD"
	}

	return &SubmitOrderResponse{
		Success:       true,
		Message:       fmt.Sprintf("Hardware order %s submitted successfully", request.GetString("number")),
		RequestID:     requestID,
		RequestNumber: request.GetString("number"),
		ItemID:        item.SysID(),
		CatalogItem:   itemName,
		Quantity:      quantity,
		EstimatedCost: estimatedCost,
		Status:        "Pending Approval",
	}
}

// TrackOrders lists service requests and expands each with its request
// items. An item expansion failure degrades that order to an empty item
// list rather than failing the whole call.
func (s *Service) TrackOrders(ctx context.Context, params TrackOrdersParams) *TrackOrdersResponse {
	b := query.NewBuilder()
	b.Equals("number", params.RequestNumber)
	if params.RequestedFor != "" {
		b.Equals("requested_for", s.resolveUser(ctx, params.RequestedFor))
	}
	b.Equals("state", params.Status)
	switch params.DateRange {
	case "last_7_days":
		b.GreaterOrEqual("sys_created_on", "javascript:gs.daysAgo(7)")
	case "last_30_days":
		b.GreaterOrEqual("sys_created_on", "javascript:gs.daysAgo(30)")
	}

	q, err := b.Build()
	if err != nil {
		return &TrackOrdersResponse{Success: false, Message: err.Error()}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}

	records, err := s.client.GetRecords(ctx, tableRequest, snow.RecordQuery{
		Query:        q,
		Fields:       []string{"sys_id", "number", "short_description", "state", "priority", "requested_for", "sys_created_on", "delivery_date"},
		Limit:        limit,
		DisplayValue: "true",
	})
	if err != nil {
		s.logger.Error("failed to track orders", map[string]interface{}{"error": err.Error()})
		return &TrackOrdersResponse{Success: false, Message: fmt.Sprintf("Failed to track hardware orders: %v", err)}
	}

	orders := make([]Order, 0, len(records))
	for _, record := range records {
		requestID := record.SysID()
		orders = append(orders, Order{
			RequestNumber: record.GetString("number"),
			RequestID:     requestID,
			Description:   record.GetString("short_description"),
			Status:        record.GetString("state"),
			Priority:      record.GetString("priority"),
			RequestedFor:  record.GetDisplayValue("requested_for"),
			CreatedDate:   record.GetString("sys_created_on"),
			DeliveryDate:  record.GetString("delivery_date"),
			Items:         s.fetchOrderItems(ctx, requestID),
		})
	}

	return &TrackOrdersResponse{
		Success: true,
		Message: fmt.Sprintf("Found %d hardware orders", len(orders)),
		Orders:  orders,
		Count:   len(orders),
	}
}

func (s *Service) fetchOrderItems(ctx context.Context, requestID string) []OrderItem {
	q, err := query.NewBuilder().Equals("request", requestID).Build()
	if err != nil {
		s.logger.Warn("failed to expand request items", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return []OrderItem{}
	}

	records, err := s.client.GetRecords(ctx, tableRequestItem, snow.RecordQuery{
		Query:        q,
		Fields:       []string{"sys_id", "quantity", "cat_item", "state", "price"},
		DisplayValue: "true",
	})
	if err != nil {
		s.logger.Warn("failed to expand request items", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return []OrderItem{}
	}

	items := make([]OrderItem, 0, len(records))
	for _, record := range records {
		quantity := record.GetString("quantity")
		if quantity == "" {
			quantity = "1"
		}
		items = append(items, OrderItem{
			ItemName: record.GetDisplayValue("cat_item"),
			Quantity: quantity,
			Status:   record.GetString("state"),
			Price:    record.GetString("price"),
		})
	}
	return items
}

// CancelOrder moves the request and its items to the cancelled state. When
// NotifyRequestor is set and a notifier is configured, the requestor gets
// exactly one email; notification failures never fail the cancellation.
func (s *Service) CancelOrder(ctx context.Context, params CancelOrderParams) *CancelOrderResponse {
	updated, err := s.client.UpdateRecord(ctx, tableRequest, params.RequestID, map[string]interface{}{
		"state":       "4",
		"close_notes": fmt.Sprintf("Order cancelled: %s", params.CancellationReason),
		"work_notes":  fmt.Sprintf("Hardware order cancelled by user. Reason: %s", params.CancellationReason),
	})
	if err != nil {
		s.logger.Error("failed to cancel order", map[string]interface{}{
			"request_id": params.RequestID,
			"error":      err.Error(),
		})
		return &CancelOrderResponse{
			Success:   false,
			Message:   fmt.Sprintf("Failed to cancel hardware order: %v", err),
			RequestID: params.RequestID,
		}
	}

	var items []snow.Record
	itemQuery, err := query.NewBuilder().Equals("request", params.RequestID).Build()
	if err == nil {
		items, err = s.client.GetRecords(ctx, tableRequestItem, snow.RecordQuery{
			Query:  itemQuery,
			Fields: []string{"sys_id"},
		})
	}
	if err != nil {
		s.logger.Warn("failed to list request items for cancellation", map[string]interface{}{
			"request_id": params.RequestID,
			"error":      err.Error(),
		})
	}
	for _, item := range items {
		if _, err := s.client.UpdateRecord(ctx, tableRequestItem, item.SysID(), map[string]interface{}{"state": "4"}); err != nil {
			s.logger.Warn("failed to cancel request item", map[string]interface{}{
				"item_id": item.SysID(),
				"error":   err.Error(),
			})
		}
	}

	number := updated.GetString("number")
	if number == "" {
		number = params.RequestID
	}

	if params.NotifyRequestor && s.notifier != nil {
		s.notifyCancellation(ctx, updated, number, params.CancellationReason)
	}

	return &CancelOrderResponse{
		Success:            true,
		Message:            fmt.Sprintf("Hardware order %s cancelled successfully", number),
		RequestID:          params.RequestID,
		CancellationReason: params.CancellationReason,
		Status:             "Cancelled",
	}
}

func (s *Service) notifyCancellation(ctx context.Context, request snow.Record, number, reason string) {
	requestedFor := request.GetString("requested_for")
	if requestedFor == "" {
		s.logger.Warn("cancelled request has no requestor, skipping notification", map[string]interface{}{"request": number})
		return
	}

	user, err := s.client.GetRecord(ctx, tableUser, requestedFor)
	if err != nil {
		s.logger.Warn("failed to look up requestor for notification", map[string]interface{}{
			"user":  requestedFor,
			"error": err.Error(),
		})
		return
	}
	email := user.GetString("email")
	if email == "" {
		s.logger.Warn("requestor has no email address, skipping notification", map[string]interface{}{"user": requestedFor})
		return
	}

	subject := fmt.Sprintf("Hardware order %s cancelled", number)
	body := fmt.Sprintf("Your hardware order %s has been cancelled.\n\nReason: %s\n", number, reason)
	if err := s.notifier.Notify(ctx, email, subject, body); err != nil {
		s.logger.Warn("failed to notify requestor of cancellation", map[string]interface{}{
			"request": number,
			"error":   err.Error(),
		})
	}
}

// Provision creates the asset record for an approved order and marks the
// request fulfilled.
func (s *Service) Provision(ctx context.Context, params ProvisionParams) *ProvisionResponse {
	request, err := s.client.GetRecord(ctx, tableRequest, params.RequestID)
	if err != nil || len(request) == 0 {
		if apiErr, ok := err.(*snow.APIError); err == nil || (ok && apiErr.IsNotFound()) {
			return &ProvisionResponse{
				Success: false,
				Message: fmt.Sprintf("Service request %s not found", params.RequestID),
			}
		}
		s.logger.Error("failed to look up service request", map[string]interface{}{"error": err.Error()})
		return &ProvisionResponse{Success: false, Message: fmt.Sprintf("Failed to provision hardware: %v", err)}
	}

	displayName := fmt.Sprintf("Hardware Asset - %s", params.AssetTag)
	var items []snow.Record
	itemQuery, err := query.NewBuilder().Equals("request", params.RequestID).Build()
	if err == nil {
		items, err = s.client.GetRecords(ctx, tableRequestItem, snow.RecordQuery{
			Query:        itemQuery,
			Fields:       []string{"cat_item", "quantity"},
			DisplayValue: "true",
		})
	}
	if err != nil {
		s.logger.Warn("failed to read ordered items", map[string]interface{}{
			"request_id": params.RequestID,
			"error":      err.Error(),
		})
	} else if len(items) > 0 {
		if name := items[0].GetDisplayValue("cat_item"); name != "" {
			displayName = fmt.Sprintf("%s - %s", name, params.AssetTag)
		}
	}

	assetData := map[string]interface{}{
		"asset_tag":      params.AssetTag,
		"display_name":   displayName,
		"assigned_to":    request.GetString("requested_for"),
		"state":          "1",
		"install_status": "1",
		"substatus":      "available",
	}
	if params.SerialNumber != "" {
		assetData["serial_number"] = params.SerialNumber
	}
	if params.Location != "" {
		assetData["location"] = params.Location
	}
	if params.ConfigurationNotes != "" {
		assetData["comments"] = params.ConfigurationNotes
	}

	asset, err := s.client.CreateRecord(ctx, tableAsset, assetData)
	if err != nil {
		s.logger.Error("failed to create asset", map[string]interface{}{"error": err.Error()})
		return &ProvisionResponse{Success: false, Message: fmt.Sprintf("Failed to provision hardware: %v", err)}
	}

	_, err = s.client.UpdateRecord(ctx, tableRequest, params.RequestID, map[string]interface{}{
		"state":      "3",
		"work_notes": fmt.Sprintf("Hardware provisioned with asset tag: %s", params.AssetTag),
	})
	if err != nil {
		s.logger.Warn("failed to mark request fulfilled", map[string]interface{}{
			"request_id": params.RequestID,
			"error":      err.Error(),
		})
	}

	return &ProvisionResponse{
		Success:       true,
		Message:       fmt.Sprintf("Hardware provisioned successfully with asset tag %s", params.AssetTag),
		AssetID:       asset.SysID(),
		AssetTag:      params.AssetTag,
		AssignedTo:    request.GetString("requested_for"),
		RequestNumber: request.GetString("number"),
	}
}

var roleRecommendations = map[string]Recommendation{
	"Developer": {
		Primary:        "High-performance laptop with development tools",
		Specs:          []string{"16GB+ RAM", "SSD Storage", "Dedicated Graphics"},
		SuggestedItems: []string{"MacBook Pro 16", "Dell XPS 15", "ThinkPad P1"},
	},
	"Manager": {
		Primary:        "Business laptop with presentation capabilities",
		Specs:          []string{"8GB+ RAM", "Lightweight", "Long battery life"},
		SuggestedItems: []string{"MacBook Air", "Dell Latitude", "Surface Laptop"},
	},
	"Analyst": {
		Primary:        "Standard business laptop for office productivity",
		Specs:          []string{"8GB RAM", "Office Suite", "Webcam"},
		SuggestedItems: []string{"MacBook Air", "HP EliteBook", "Lenovo ThinkPad"},
	},
}

var departmentEquipment = map[string][]string{
	"IT":      {"Dual monitors", "Docking station", "External keyboard"},
	"Finance": {"Number pad keyboard", "Large monitor", "Ergonomic mouse"},
	"HR":      {"Webcam", "Headset", "Document scanner"},
}

// Recommendations returns the hardware profile for a role and department.
// Unknown roles get the generic profile.
func (s *Service) Recommendations(_ context.Context, params RecommendationsParams) *RecommendationsResponse {
	rec, ok := roleRecommendations[params.UserRole]
	if !ok {
		rec = Recommendation{
			Primary:        "Standard business laptop",
			Specs:          []string{"8GB RAM", "Office productivity"},
			SuggestedItems: []string{"MacBook Air", "Dell Latitude"},
		}
	}
	if extra, ok := departmentEquipment[params.Department]; ok {
		rec.AdditionalEquipment = extra
	}
	if params.BudgetRange != "" {
		rec.BudgetNotes = fmt.Sprintf("Filtered for %s price range", params.BudgetRange)
	}

	return &RecommendationsResponse{
		Success:        true,
		Message:        fmt.Sprintf("Hardware recommendations for %s in %s", params.UserRole, params.Department),
		Recommendation: rec,
		UserRole:       params.UserRole,
		Department:     params.Department,
	}
}

// resolveUser maps an identifier to a sys_id for use as a list filter. An
// unresolvable value passes through unchanged as a direct match.
func (s *Service) resolveUser(ctx context.Context, raw string) string {
	result, err := s.resolver.Resolve(ctx, resolve.KindUser, raw)
	if err != nil || !result.Resolved {
		return raw
	}
	return result.CanonicalID
}

func parsePrice(price string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(price, "$", ""), ",", "")
	value, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// parsePriceRange reads a "min-max" filter. Malformed ranges disable the
// filter rather than failing the browse.
func parsePriceRange(s string) (min, max float64, ok bool) {
	if s == "" {
		return 0, 0, false
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	min, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	max, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return min, max, true
}

func classifyPrice(price string) string {
	value, ok := parsePrice(price)
	if !ok {
		return "Price varies"
	}
	switch {
	case value == 0:
		return "Contact for pricing"
	case value < 1000:
		return "Budget ($0-$999)"
	case value < 2000:
		return "Standard ($1,000-$1,999)"
	case value < 3000:
		return "Premium ($2,000-$2,999)"
	default:
		return "Enterprise ($3,000+)"
	}
}
