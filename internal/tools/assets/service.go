// Package assets manages alm_asset and alm_hardware records.
package assets

import (
	"context"
	"fmt"
	"strings"

	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/common/validation"
	"servicenow-toolkit/internal/snow"
	"servicenow-toolkit/internal/snow/query"
	"servicenow-toolkit/internal/snow/resolve"
)

const (
	tableAsset    = "alm_asset"
	tableHardware = "alm_hardware"
)

const datePattern = `^\d{4}-\d{2}-\d{2}$`

var createAssetSchema = validation.ObjectSchema(map[string]interface{}{
	"asset_tag":           validation.NonEmptyStringProp(),
	"display_name":        validation.NonEmptyStringProp(),
	"purchase_date":       validation.StringProp(datePattern),
	"warranty_expiration": validation.StringProp(datePattern),
}, "asset_tag", "display_name")

// TableAPI is the slice of the snow client used by this package.
type TableAPI interface {
	GetRecords(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error)
	CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error)
	UpdateRecord(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error)
	DeleteRecord(ctx context.Context, table, sysID string) error
}

// Resolver maps free-form identifiers to sys_ids.
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

// Create inserts a new asset. Parameters are checked against the schema and
// AssignedTo is resolved before the insert; an unresolvable user fails the
// whole operation without creating anything.
func (s *Service) Create(ctx context.Context, params CreateAssetParams) *AssetResponse {
	check, err := validation.ValidateParams(params, createAssetSchema)
	if err != nil {
		s.logger.Error("asset parameter validation failed to run", map[string]interface{}{"error": err.Error()})
		return &AssetResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to validate parameters: %v", err),
		}
	}
	if !check.Valid {
		return &AssetResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid parameters: %s", strings.Join(check.GetErrorMessages(), "; ")),
		}
	}

	data := map[string]interface{}{
		"asset_tag":    params.AssetTag,
		"display_name": params.DisplayName,
	}

	setIfPresent(data, "model", params.Model)
	setIfPresent(data, "serial_number", params.SerialNumber)
	setIfPresent(data, "location", params.Location)
	setIfPresent(data, "cost", params.Cost)
	setIfPresent(data, "purchase_date", params.PurchaseDate)
	setIfPresent(data, "warranty_expiration", params.WarrantyExpiration)
	setIfPresent(data, "category", params.Category)
	setIfPresent(data, "subcategory", params.Subcategory)
	setIfPresent(data, "manufacturer", params.Manufacturer)
	setIfPresent(data, "model_category", params.ModelCategory)
	setIfPresent(data, "state", params.State)
	setIfPresent(data, "substatus", params.Substatus)
	setIfPresent(data, "comments", params.Comments)

	if params.AssignedTo != "" {
		result, err := s.resolver.Resolve(ctx, resolve.KindUser, params.AssignedTo)
		if err != nil || !result.Resolved {
			return &AssetResponse{
				Success: false,
				Message: fmt.Sprintf("Could not resolve user: %s", params.AssignedTo),
			}
		}
		data["assigned_to"] = result.CanonicalID
	}

	record, err := s.client.CreateRecord(ctx, tableAsset, data)
	if err != nil {
		s.logger.Error("failed to create asset", map[string]interface{}{
			"asset_tag": params.AssetTag,
			"error":     err.Error(),
		})
		return &AssetResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to create asset: %v", err),
		}
	}

	return &AssetResponse{
		Success:  true,
		Message:  "Asset created successfully",
		AssetID:  record.SysID(),
		AssetTag: record.GetString("asset_tag"),
	}
}

// Update patches an existing asset found by sys_id, tag, serial or name.
func (s *Service) Update(ctx context.Context, params UpdateAssetParams) *AssetResponse {
	assetID, resp := s.resolveAsset(ctx, params.AssetID)
	if resp != nil {
		return resp
	}

	data := map[string]interface{}{}
	setIfPresent(data, "display_name", params.DisplayName)
	setIfPresent(data, "model", params.Model)
	setIfPresent(data, "serial_number", params.SerialNumber)
	setIfPresent(data, "location", params.Location)
	setIfPresent(data, "cost", params.Cost)
	setIfPresent(data, "purchase_date", params.PurchaseDate)
	setIfPresent(data, "warranty_expiration", params.WarrantyExpiration)
	setIfPresent(data, "category", params.Category)
	setIfPresent(data, "subcategory", params.Subcategory)
	setIfPresent(data, "manufacturer", params.Manufacturer)
	setIfPresent(data, "model_category", params.ModelCategory)
	setIfPresent(data, "state", params.State)
	setIfPresent(data, "substatus", params.Substatus)
	setIfPresent(data, "comments", params.Comments)

	if params.AssignedTo != "" {
		result, err := s.resolver.Resolve(ctx, resolve.KindUser, params.AssignedTo)
		if err != nil || !result.Resolved {
			return &AssetResponse{
				Success: false,
				Message: fmt.Sprintf("Could not resolve user: %s", params.AssignedTo),
			}
		}
		data["assigned_to"] = result.CanonicalID
	}

	record, err := s.client.UpdateRecord(ctx, tableAsset, assetID, data)
	if err != nil {
		s.logger.Error("failed to update asset", map[string]interface{}{
			"asset_id": assetID,
			"error":    err.Error(),
		})
		return &AssetResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to update asset: %v", err),
		}
	}

	return &AssetResponse{
		Success:  true,
		Message:  "Asset updated successfully",
		AssetID:  record.SysID(),
		AssetTag: record.GetString("asset_tag"),
	}
}

// Get fetches a single asset by sys_id, asset tag or serial number.
func (s *Service) Get(ctx context.Context, params GetAssetParams) *GetAssetResponse {
	b := query.NewBuilder()
	switch {
	case params.AssetID != "":
		b.Equals("sys_id", params.AssetID)
	case params.AssetTag != "":
		b.Equals("asset_tag", params.AssetTag)
	case params.SerialNumber != "":
		b.Equals("serial_number", params.SerialNumber)
	default:
		return &GetAssetResponse{Success: false, Message: "At least one search parameter is required"}
	}

	q, err := b.Build()
	if err != nil {
		return &GetAssetResponse{Success: false, Message: err.Error()}
	}

	records, err := s.client.GetRecords(ctx, tableAsset, snow.RecordQuery{
		Query:        q,
		Limit:        1,
		DisplayValue: "true",
	})
	if err != nil {
		s.logger.Error("failed to get asset", map[string]interface{}{"error": err.Error()})
		return &GetAssetResponse{Success: false, Message: fmt.Sprintf("Failed to get asset: %v", err)}
	}
	if len(records) == 0 {
		return &GetAssetResponse{Success: false, Message: "Asset not found"}
	}

	return &GetAssetResponse{Success: true, Message: "Asset found", Asset: records[0]}
}

// List returns a page of assets. AssignedTo entries are resolved per user;
// entries that do not resolve are dropped from the filter.
func (s *Service) List(ctx context.Context, params ListAssetsParams) *ListAssetsResponse {
	b := query.NewBuilder()

	if len(params.AssignedTo) > 0 {
		userIDs := make([]string, 0, len(params.AssignedTo))
		for _, user := range params.AssignedTo {
			result, err := s.resolver.Resolve(ctx, resolve.KindUser, user)
			if err == nil && result.Resolved {
				userIDs = append(userIDs, result.CanonicalID)
			}
		}
		b.In("assigned_to", userIDs)
	}

	b.Equals("location", params.Location)
	b.Like("display_name", params.Name)
	b.OrGroup(params.Query, "asset_tag", "display_name", "serial_number", "model", "short_description")

	q, err := b.Build()
	if err != nil {
		return &ListAssetsResponse{Success: false, Message: err.Error()}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 100
	}

	records, err := s.client.GetRecords(ctx, tableAsset, snow.RecordQuery{
		Query:        q,
		Limit:        limit,
		Offset:       params.Offset,
		DisplayValue: "true",
	})
	if err != nil {
		s.logger.Error("failed to list assets", map[string]interface{}{"error": err.Error()})
		return &ListAssetsResponse{Success: false, Message: fmt.Sprintf("Failed to list assets: %v", err)}
	}

	return &ListAssetsResponse{
		Success: true,
		Message: fmt.Sprintf("Found %d assets", len(records)),
		Assets:  records,
		Count:   len(records),
	}
}

// SearchByName finds assets by display name, exact or LIKE.
func (s *Service) SearchByName(ctx context.Context, params SearchAssetsByNameParams) *ListAssetsResponse {
	b := query.NewBuilder()
	if params.ExactMatch {
		b.Equals("display_name", params.Name)
	} else {
		b.Like("display_name", params.Name)
	}

	q, err := b.Build()
	if err != nil {
		return &ListAssetsResponse{Success: false, Message: err.Error()}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}

	records, err := s.client.GetRecords(ctx, tableAsset, snow.RecordQuery{
		Query:        q,
		Limit:        limit,
		Offset:       params.Offset,
		DisplayValue: "true",
	})
	if err != nil {
		s.logger.Error("failed to search assets by name", map[string]interface{}{"error": err.Error()})
		return &ListAssetsResponse{Success: false, Message: fmt.Sprintf("Failed to search assets by name: %v", err)}
	}

	return &ListAssetsResponse{
		Success: true,
		Message: fmt.Sprintf("Found %d assets matching name '%s'", len(records), params.Name),
		Assets:  records,
		Count:   len(records),
	}
}

// Delete removes an asset found by any supported identifier.
func (s *Service) Delete(ctx context.Context, params DeleteAssetParams) *AssetResponse {
	assetID, resp := s.resolveAsset(ctx, params.AssetID)
	if resp != nil {
		return resp
	}

	if err := s.client.DeleteRecord(ctx, tableAsset, assetID); err != nil {
		s.logger.Error("failed to delete asset", map[string]interface{}{
			"asset_id": assetID,
			"error":    err.Error(),
		})
		return &AssetResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to delete asset: %v", err),
		}
	}

	s.logger.Info("asset deleted", map[string]interface{}{
		"asset_id": assetID,
		"reason":   params.Reason,
	})
	return &AssetResponse{
		Success: true,
		Message: "Asset deleted successfully",
		AssetID: assetID,
	}
}

// Transfer reassigns an asset to a new user and records a transfer comment.
func (s *Service) Transfer(ctx context.Context, params TransferAssetParams) *AssetResponse {
	assetID, resp := s.resolveAsset(ctx, params.AssetID)
	if resp != nil {
		return resp
	}

	userResult, err := s.resolver.Resolve(ctx, resolve.KindUser, params.NewAssignedTo)
	if err != nil || !userResult.Resolved {
		return &AssetResponse{
			Success: false,
			Message: fmt.Sprintf("Could not resolve user: %s", params.NewAssignedTo),
		}
	}

	transferComment := fmt.Sprintf("Asset transferred to %s", params.NewAssignedTo)
	if params.TransferReason != "" {
		transferComment += fmt.Sprintf(" - Reason: %s", params.TransferReason)
	}
	if params.Comments != "" {
		transferComment += fmt.Sprintf(" - %s", params.Comments)
	}

	record, err := s.client.UpdateRecord(ctx, tableAsset, assetID, map[string]interface{}{
		"assigned_to": userResult.CanonicalID,
		"comments":    transferComment,
	})
	if err != nil {
		s.logger.Error("failed to transfer asset", map[string]interface{}{
			"asset_id": assetID,
			"error":    err.Error(),
		})
		return &AssetResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to transfer asset: %v", err),
		}
	}

	return &AssetResponse{
		Success:  true,
		Message:  fmt.Sprintf("Asset transferred successfully to %s", params.NewAssignedTo),
		AssetID:  record.SysID(),
		AssetTag: record.GetString("asset_tag"),
	}
}

// ListHardware returns a page of alm_hardware records.
func (s *Service) ListHardware(ctx context.Context, params ListHardwareAssetsParams) *ListAssetsResponse {
	b := query.NewBuilder()

	if params.AssignedTo != "" {
		result, err := s.resolver.Resolve(ctx, resolve.KindUser, params.AssignedTo)
		if err == nil && result.Resolved {
			b.Equals("assigned_to", result.CanonicalID)
		} else {
			// Keep the raw value; it may already be a valid reference.
			b.Equals("assigned_to", params.AssignedTo)
		}
	}
	b.Like("display_name", params.Name)
	b.OrGroup(params.Query, "asset_tag", "display_name", "serial_number", "model")

	q, err := b.Build()
	if err != nil {
		return &ListAssetsResponse{Success: false, Message: err.Error()}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}

	records, err := s.client.GetRecords(ctx, tableHardware, snow.RecordQuery{
		Query:        q,
		Limit:        limit,
		Offset:       params.Offset,
		DisplayValue: "true",
	})
	if err != nil {
		s.logger.Error("failed to list hardware assets", map[string]interface{}{"error": err.Error()})
		return &ListAssetsResponse{Success: false, Message: fmt.Sprintf("Failed to list hardware assets: %v", err)}
	}

	return &ListAssetsResponse{
		Success: true,
		Message: fmt.Sprintf("Found %d hardware assets", len(records)),
		Assets:  records,
		Count:   len(records),
	}
}

// resolveAsset maps any supported asset identifier to its sys_id, or returns
// the failure response to hand back.
func (s *Service) resolveAsset(ctx context.Context, raw string) (string, *AssetResponse) {
	result, err := s.resolver.Resolve(ctx, resolve.KindAsset, raw)
	if err != nil || !result.Resolved {
		return "", &AssetResponse{
			Success: false,
			Message: fmt.Sprintf("Could not find asset: %s", raw),
		}
	}
	return result.CanonicalID, nil
}

func setIfPresent(data map[string]interface{}, field, value string) {
	if value != "" {
		data[field] = value
	}
}
