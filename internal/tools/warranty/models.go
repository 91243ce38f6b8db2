package warranty

type CheckParams struct {
	AssetID      string `json:"asset_id,omitempty"`
	AssetTag     string `json:"asset_tag,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

type UpdateParams struct {
	AssetID                string `json:"asset_id,omitempty"`
	AssetTag               string `json:"asset_tag,omitempty"`
	WarrantyExpirationDate string `json:"warranty_expiration_date"`
	WarrantyStartDate      string `json:"warranty_start_date,omitempty"`
	WarrantyDurationMonths int    `json:"warranty_duration_months,omitempty"`
	WarrantyType           string `json:"warranty_type,omitempty"`
	WarrantyNotes          string `json:"warranty_notes,omitempty"`
}

type BulkCheckParams struct {
	Manufacturer        string `json:"manufacturer,omitempty"`
	Location            string `json:"location,omitempty"`
	MissingWarrantyOnly *bool  `json:"missing_warranty_only,omitempty"`
	AssetCategory       string `json:"asset_category,omitempty"`
	Limit               int    `json:"limit,omitempty"`
}

type ValidateParams struct {
	AssetID              string `json:"asset_id,omitempty"`
	AssetTag             string `json:"asset_tag,omitempty"`
	DaysBeforeExpiration int    `json:"days_before_expiration,omitempty"`
}

type ReportParams struct {
	ReportType     string `json:"report_type"` // expired, expiring, missing, summary
	DaysAhead      int    `json:"days_ahead,omitempty"`
	Department     string `json:"department,omitempty"`
	Location       string `json:"location,omitempty"`
	Manufacturer   string `json:"manufacturer,omitempty"`
	IncludeDetails bool   `json:"include_details,omitempty"`
}

// ==========================
// Responses
// ==========================

// Info is the combined warranty picture for one asset: the ServiceNow record
// plus whatever the vendor API reported.
type Info struct {
	AssetID           string `json:"asset_id"`
	AssetTag          string `json:"asset_tag"`
	SerialNumber      string `json:"serial_number"`
	Manufacturer      string `json:"manufacturer"`
	Model             string `json:"model"`
	CurrentExpiration string `json:"current_warranty_expiration"`
	AssignedTo        string `json:"assigned_to"`

	VendorChecked bool            `json:"vendor_api_check"`
	Vendor        *VendorWarranty `json:"vendor,omitempty"`
	// Match is nil when either side lacks an expiration date.
	Match *bool `json:"warranty_match,omitempty"`

	Status        string `json:"warranty_status"`
	StatusMessage string `json:"status_message"`
	DaysRemaining int    `json:"days_until_expiration"`
}

type CheckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Info    *Info  `json:"warranty_info,omitempty"`
}

type UpdateResponse struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	AssetID            string `json:"asset_id,omitempty"`
	AssetTag           string `json:"asset_tag,omitempty"`
	WarrantyExpiration string `json:"warranty_expiration,omitempty"`
}

// BulkCheckResult is one asset's outcome within a bulk run.
type BulkCheckResult struct {
	AssetTag     string `json:"asset_tag"`
	AssetID      string `json:"asset_id"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Info         *Info  `json:"warranty_info,omitempty"`
	Updated      bool   `json:"updated_in_servicenow,omitempty"`
	Error        string `json:"error,omitempty"`
}

type BulkCheckSummary struct {
	TotalChecked     int `json:"total_checked"`
	SuccessfulChecks int `json:"successful_checks"`
	UpdatedAssets    int `json:"updated_assets"`
	Errors           int `json:"errors"`
}

type BulkCheckResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Summary BulkCheckSummary  `json:"summary"`
	Results []BulkCheckResult `json:"results"`
}

// Alert flags a warranty needing attention.
type Alert struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

type ValidationChecks struct {
	HasWarrantyDate   bool   `json:"has_warranty_date"`
	WarrantyDateValid bool   `json:"warranty_date_valid"`
	DaysRemaining     int    `json:"days_until_expiration,omitempty"`
	Status            string `json:"warranty_status,omitempty"`
}

type ValidateResponse struct {
	Success            bool             `json:"success"`
	Message            string           `json:"message"`
	AssetID            string           `json:"asset_id,omitempty"`
	AssetTag           string           `json:"asset_tag,omitempty"`
	Manufacturer       string           `json:"manufacturer,omitempty"`
	Model              string           `json:"model,omitempty"`
	AssignedTo         string           `json:"assigned_to,omitempty"`
	WarrantyExpiration string           `json:"warranty_expiration,omitempty"`
	Checks             ValidationChecks `json:"validation_checks"`
	Alerts             []Alert          `json:"alerts,omitempty"`
}

// ReportAsset is one asset row in a warranty report.
type ReportAsset struct {
	SysID              string `json:"sys_id"`
	AssetTag           string `json:"asset_tag"`
	Manufacturer       string `json:"manufacturer"`
	Model              string `json:"model"`
	WarrantyExpiration string `json:"warranty_expiration"`
	AssignedTo         string `json:"assigned_to"`
	Location           string `json:"location"`
	Status             string `json:"warranty_status"`
	DaysRemaining      int    `json:"days_until_expiration,omitempty"`

	SerialNumber string `json:"serial_number,omitempty"`
	Cost         string `json:"cost,omitempty"`
	PurchaseDate string `json:"purchase_date,omitempty"`
	InstallDate  string `json:"install_date,omitempty"`
	Department   string `json:"department,omitempty"`
}

type ReportSummary struct {
	TotalAssets        int `json:"total_assets"`
	ExpiredWarranties  int `json:"expired_warranties"`
	ExpiringWarranties int `json:"expiring_warranties"`
	MissingWarranties  int `json:"missing_warranties"`
	ActiveWarranties   int `json:"active_warranties"`
}

type ReportResponse struct {
	Success       bool          `json:"success"`
	Message       string        `json:"message"`
	ReportType    string        `json:"report_type,omitempty"`
	GeneratedDate string        `json:"generated_date,omitempty"`
	Summary       ReportSummary `json:"summary"`
	Assets        []ReportAsset `json:"assets,omitempty"`
}
