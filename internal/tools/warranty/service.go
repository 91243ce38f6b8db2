// Package warranty tracks hardware warranty coverage, reconciling ServiceNow
// records with manufacturer support APIs.
package warranty

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"servicenow-toolkit/internal/common/errors"
	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/snow"
	"servicenow-toolkit/internal/snow/query"
)

const (
	tableHardware = "alm_hardware"
	dateLayout    = "2006-01-02"

	defaultExpiryWindow = 30
)

var hardwareFields = []string{"sys_id", "asset_tag", "serial_number", "manufacturer", "model", "warranty_expiration", "assigned_to"}

type TableAPI interface {
	GetRecords(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error)
	GetRecord(ctx context.Context, table, sysID string) (snow.Record, error)
	UpdateRecord(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error)
}

// Service runs warranty operations. BulkCheck fans out over maxConcurrent
// workers; every other operation is sequential.
type Service struct {
	client        TableAPI
	vendor        VendorAPI
	maxConcurrent int
	logger        logger.Logger

	now func() time.Time
}

func NewService(client TableAPI, vendor VendorAPI, maxConcurrent int, log logger.Logger) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Service{
		client:        client,
		vendor:        vendor,
		maxConcurrent: maxConcurrent,
		logger:        log,
		now:           time.Now,
	}
}

// Check reads the asset's warranty from ServiceNow and asks the vendor API
// for its view. Vendor lookup failures degrade to a record-only answer.
func (s *Service) Check(ctx context.Context, params CheckParams) *CheckResponse {
	asset, err := s.findAsset(ctx, params.AssetID, params.AssetTag, params.SerialNumber)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeMalformedInput) {
			return &CheckResponse{Success: false, Message: err.Error()}
		}
		s.logger.Error("failed to look up asset", map[string]interface{}{"error": err.Error()})
		return &CheckResponse{Success: false, Message: fmt.Sprintf("Failed to check asset warranty: %v", err)}
	}
	if len(asset) == 0 {
		return &CheckResponse{Success: false, Message: "Asset not found in ServiceNow"}
	}

	manufacturer := params.Manufacturer
	if manufacturer == "" {
		manufacturer = asset.GetDisplayValue("manufacturer")
	}
	currentExpiration := asset.GetString("warranty_expiration")

	info := &Info{
		AssetID:           asset.SysID(),
		AssetTag:          asset.GetString("asset_tag"),
		SerialNumber:      asset.GetString("serial_number"),
		Manufacturer:      manufacturer,
		Model:             asset.GetDisplayValue("model"),
		CurrentExpiration: currentExpiration,
		AssignedTo:        asset.GetDisplayValue("assigned_to"),
	}

	vendor, err := s.vendor.Lookup(ctx, manufacturer, info.SerialNumber)
	if err != nil {
		s.logger.Warn("vendor warranty lookup failed", map[string]interface{}{
			"manufacturer": manufacturer,
			"error":        err.Error(),
		})
		vendor = nil
	}
	if vendor != nil {
		info.VendorChecked = true
		info.Vendor = vendor
		if currentExpiration != "" && vendor.Expiration != "" {
			match := currentExpiration == vendor.Expiration
			info.Match = &match
		}
	}

	effective := currentExpiration
	if vendor != nil && vendor.Expiration != "" {
		effective = vendor.Expiration
	}
	info.Status, info.StatusMessage, info.DaysRemaining = s.warrantyStatus(effective, defaultExpiryWindow)

	return &CheckResponse{
		Success: true,
		Message: fmt.Sprintf("Warranty check completed for %s", info.AssetTag),
		Info:    info,
	}
}

// Update writes new warranty fields on the asset. Notes are appended to the
// existing comments with a timestamp, never overwritten.
func (s *Service) Update(ctx context.Context, params UpdateParams) *UpdateResponse {
	assetID := params.AssetID
	if assetID == "" && params.AssetTag != "" {
		asset, err := s.findAsset(ctx, "", params.AssetTag, "")
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeMalformedInput) {
				return &UpdateResponse{Success: false, Message: err.Error()}
			}
			s.logger.Error("failed to look up asset", map[string]interface{}{"error": err.Error()})
			return &UpdateResponse{Success: false, Message: fmt.Sprintf("Failed to update asset warranty: %v", err)}
		}
		assetID = asset.SysID()
	}
	if assetID == "" {
		return &UpdateResponse{Success: false, Message: "Asset not found for warranty update"}
	}

	data := map[string]interface{}{
		"warranty_expiration": params.WarrantyExpirationDate,
	}
	if params.WarrantyStartDate != "" {
		data["warranty_start"] = params.WarrantyStartDate
	}
	if params.WarrantyDurationMonths > 0 {
		data["warranty_duration"] = strconv.Itoa(params.WarrantyDurationMonths)
	}
	warrantyType := params.WarrantyType
	if warrantyType == "" {
		warrantyType = "Standard"
	}
	data["warranty_type"] = warrantyType

	if params.WarrantyNotes != "" {
		current := ""
		existing, err := s.client.GetRecord(ctx, tableHardware, assetID)
		if err != nil {
			s.logger.Warn("failed to read existing comments", map[string]interface{}{
				"asset_id": assetID,
				"error":    err.Error(),
			})
		} else {
			current = existing.GetString("comments")
		}
		stamp := s.now().Format("2006-01-02 15:04")
		note := fmt.Sprintf("Warranty Update (%s): %s", stamp, params.WarrantyNotes)
		if current != "" {
			note = current + "\n\n" + note
		}
		data["comments"] = note
	}

	updated, err := s.client.UpdateRecord(ctx, tableHardware, assetID, data)
	if err != nil {
		s.logger.Error("failed to update asset warranty", map[string]interface{}{
			"asset_id": assetID,
			"error":    err.Error(),
		})
		return &UpdateResponse{Success: false, Message: fmt.Sprintf("Failed to update asset warranty: %v", err)}
	}

	assetTag := updated.GetString("asset_tag")
	if assetTag == "" {
		assetTag = params.AssetTag
	}

	return &UpdateResponse{
		Success:            true,
		Message:            "Warranty information updated successfully",
		AssetID:            assetID,
		AssetTag:           assetTag,
		WarrantyExpiration: params.WarrantyExpirationDate,
	}
}

// BulkCheck runs Check over a filtered asset set on a bounded worker pool.
// Assets whose vendor expiration disagrees with the record are patched. Each
// result lands at its asset's position, so ordering is stable regardless of
// which worker finished first.
func (s *Service) BulkCheck(ctx context.Context, params BulkCheckParams) *BulkCheckResponse {
	b := query.NewBuilder()
	b.Equals("manufacturer", params.Manufacturer)
	b.Equals("location.name", params.Location)
	if params.MissingWarrantyOnly == nil || *params.MissingWarrantyOnly {
		b.IsNull("warranty_expiration")
	}
	b.Equals("category", params.AssetCategory)

	q, err := b.Build()
	if err != nil {
		return &BulkCheckResponse{Success: false, Message: err.Error()}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 50
	}

	assets, err := s.client.GetRecords(ctx, tableHardware, snow.RecordQuery{
		Query:  q,
		Fields: hardwareFields,
		Limit:  limit,
	})
	if err != nil {
		s.logger.Error("failed to list assets for bulk check", map[string]interface{}{"error": err.Error()})
		return &BulkCheckResponse{Success: false, Message: fmt.Sprintf("Failed to perform bulk warranty check: %v", err)}
	}

	results := make([]BulkCheckResult, len(assets))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup
	for i, asset := range assets {
		wg.Add(1)
		go func(i int, asset snow.Record) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.checkAndSync(ctx, asset)
		}(i, asset)
	}
	wg.Wait()

	summary := BulkCheckSummary{TotalChecked: len(assets)}
	for _, r := range results {
		if r.Error != "" {
			summary.Errors++
		} else {
			summary.SuccessfulChecks++
		}
		if r.Updated {
			summary.UpdatedAssets++
		}
	}

	return &BulkCheckResponse{
		Success: true,
		Message: fmt.Sprintf("Bulk warranty check completed on %d assets", len(assets)),
		Summary: summary,
		Results: results,
	}
}

// checkAndSync is one asset's pipeline inside BulkCheck: check, then update
// the record when the vendor disagrees with it.
func (s *Service) checkAndSync(ctx context.Context, asset snow.Record) BulkCheckResult {
	result := BulkCheckResult{
		AssetTag:     asset.GetString("asset_tag"),
		AssetID:      asset.SysID(),
		Manufacturer: asset.GetDisplayValue("manufacturer"),
	}

	check := s.Check(ctx, CheckParams{
		AssetID:      asset.SysID(),
		SerialNumber: asset.GetString("serial_number"),
		Manufacturer: asset.GetDisplayValue("manufacturer"),
	})
	if !check.Success {
		result.Error = check.Message
		return result
	}
	result.Info = check.Info

	info := check.Info
	if info.VendorChecked && info.Vendor != nil && info.Vendor.Expiration != "" && info.Match != nil && !*info.Match {
		update := s.Update(ctx, UpdateParams{
			AssetID:                asset.SysID(),
			WarrantyExpirationDate: info.Vendor.Expiration,
			WarrantyNotes:          "Updated from external warranty API",
		})
		if update.Success {
			result.Updated = true
		} else {
			result.Error = update.Message
		}
	}

	return result
}

// Validate checks an asset's warranty date for presence, format, and
// approaching expiration.
func (s *Service) Validate(ctx context.Context, params ValidateParams) *ValidateResponse {
	asset, err := s.findAsset(ctx, params.AssetID, params.AssetTag, "")
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeMalformedInput) {
			return &ValidateResponse{Success: false, Message: err.Error()}
		}
		s.logger.Error("failed to look up asset", map[string]interface{}{"error": err.Error()})
		return &ValidateResponse{Success: false, Message: fmt.Sprintf("Failed to validate warranty information: %v", err)}
	}
	if len(asset) == 0 {
		return &ValidateResponse{Success: false, Message: "Asset not found for warranty validation"}
	}

	window := params.DaysBeforeExpiration
	if window == 0 {
		window = defaultExpiryWindow
	}

	resp := &ValidateResponse{
		Success:            true,
		Message:            "Warranty validation completed",
		AssetID:            asset.SysID(),
		AssetTag:           asset.GetString("asset_tag"),
		Manufacturer:       asset.GetDisplayValue("manufacturer"),
		Model:              asset.GetDisplayValue("model"),
		AssignedTo:         asset.GetDisplayValue("assigned_to"),
		WarrantyExpiration: asset.GetString("warranty_expiration"),
	}

	expiration := resp.WarrantyExpiration
	resp.Checks.HasWarrantyDate = expiration != ""
	if expiration == "" {
		return resp
	}

	status, message, days := s.warrantyStatus(expiration, window)
	if status == "invalid" {
		return resp
	}

	resp.Checks.WarrantyDateValid = true
	resp.Checks.DaysRemaining = days
	resp.Checks.Status = status

	switch status {
	case "expired":
		resp.Alerts = append(resp.Alerts, Alert{Type: "expired", Message: message, Severity: "high"})
	case "expiring_soon":
		resp.Alerts = append(resp.Alerts, Alert{Type: "expiring_soon", Message: message, Severity: "medium"})
	}

	return resp
}

// Report builds one of the four warranty reports. The expiring report looks
// DaysAhead days out; summary applies no date filter.
func (s *Service) Report(ctx context.Context, params ReportParams) *ReportResponse {
	daysAhead := params.DaysAhead
	if daysAhead == 0 {
		daysAhead = defaultExpiryWindow
	}
	today := s.now().Format(dateLayout)

	b := query.NewBuilder()
	switch params.ReportType {
	case "expired":
		b.LessThan("warranty_expiration", today)
	case "expiring":
		b.GreaterOrEqual("warranty_expiration", today)
		b.LessOrEqual("warranty_expiration", s.now().AddDate(0, 0, daysAhead).Format(dateLayout))
	case "missing":
		b.IsNull("warranty_expiration")
	case "summary":
	default:
		return &ReportResponse{Success: false, Message: fmt.Sprintf("Unknown report type: %s", params.ReportType)}
	}
	b.Equals("assigned_to.department.name", params.Department)
	b.Equals("location.name", params.Location)
	b.Equals("manufacturer", params.Manufacturer)

	q, err := b.Build()
	if err != nil {
		return &ReportResponse{Success: false, Message: err.Error()}
	}

	fields := []string{"sys_id", "asset_tag", "manufacturer", "model", "warranty_expiration", "assigned_to", "location"}
	if params.IncludeDetails {
		fields = append(fields, "serial_number", "cost", "purchase_date", "install_date", "assigned_to.department.name")
	}

	records, err := s.client.GetRecords(ctx, tableHardware, snow.RecordQuery{
		Query:        q,
		Fields:       fields,
		DisplayValue: "true",
	})
	if err != nil {
		s.logger.Error("failed to generate warranty report", map[string]interface{}{"error": err.Error()})
		return &ReportResponse{Success: false, Message: fmt.Sprintf("Failed to generate warranty report: %v", err)}
	}

	resp := &ReportResponse{
		Success:       true,
		Message:       fmt.Sprintf("Warranty report generated successfully (%s)", params.ReportType),
		ReportType:    params.ReportType,
		GeneratedDate: today,
		Summary:       ReportSummary{TotalAssets: len(records)},
	}

	for _, record := range records {
		asset := ReportAsset{
			SysID:              record.SysID(),
			AssetTag:           record.GetString("asset_tag"),
			Manufacturer:       record.GetDisplayValue("manufacturer"),
			Model:              record.GetDisplayValue("model"),
			WarrantyExpiration: record.GetString("warranty_expiration"),
			AssignedTo:         record.GetDisplayValue("assigned_to"),
			Location:           record.GetDisplayValue("location"),
		}
		if params.IncludeDetails {
			asset.SerialNumber = record.GetString("serial_number")
			asset.Cost = record.GetString("cost")
			asset.PurchaseDate = record.GetString("purchase_date")
			asset.InstallDate = record.GetString("install_date")
			asset.Department = record.GetString("assigned_to.department.name")
		}

		if asset.WarrantyExpiration == "" {
			asset.Status = "missing"
			resp.Summary.MissingWarranties++
		} else {
			status, _, days := s.warrantyStatus(asset.WarrantyExpiration, daysAhead)
			asset.DaysRemaining = days
			switch status {
			case "expired":
				asset.Status = "expired"
				resp.Summary.ExpiredWarranties++
			case "expiring_soon":
				asset.Status = "expiring_soon"
				resp.Summary.ExpiringWarranties++
			case "active":
				asset.Status = "active"
				resp.Summary.ActiveWarranties++
			default:
				asset.Status = "invalid_date"
			}
		}

		resp.Assets = append(resp.Assets, asset)
	}

	return resp
}

// findAsset locates one hardware record by sys_id, asset tag, or serial
// number, in that precedence. An empty record means no match.
func (s *Service) findAsset(ctx context.Context, assetID, assetTag, serialNumber string) (snow.Record, error) {
	if assetID != "" {
		record, err := s.client.GetRecord(ctx, tableHardware, assetID)
		if err != nil {
			if apiErr, ok := err.(*snow.APIError); ok && apiErr.IsNotFound() {
				return nil, nil
			}
			return nil, err
		}
		return record, nil
	}

	var field, value string
	switch {
	case assetTag != "":
		field, value = "asset_tag", assetTag
	case serialNumber != "":
		field, value = "serial_number", serialNumber
	default:
		return nil, nil
	}

	q, err := query.BuildQuery([]query.Field{{Name: field, Op: query.Equals, Value: value}})
	if err != nil {
		return nil, err
	}
	records, err := s.client.GetRecords(ctx, tableHardware, snow.RecordQuery{
		Query:  q,
		Fields: hardwareFields,
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// warrantyStatus classifies an expiration date against today. Days counts
// whole days until expiration, negative once past.
func (s *Service) warrantyStatus(expiration string, window int) (status, message string, days int) {
	if expiration == "" {
		return "unknown", "No warranty expiration date available", 0
	}

	warrantyDate, err := time.Parse(dateLayout, expiration)
	if err != nil {
		return "invalid", "Invalid warranty expiration date format", 0
	}

	days = int(warrantyDate.Sub(s.now()).Hours() / 24)
	switch {
	case days < 0:
		return "expired", fmt.Sprintf("Warranty expired %d days ago", -days), days
	case days <= window:
		return "expiring_soon", fmt.Sprintf("Warranty expires in %d days", days), days
	default:
		return "active", fmt.Sprintf("Warranty expires in %d days", days), days
	}
}
