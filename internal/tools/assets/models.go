package assets

import "servicenow-toolkit/internal/snow"

// CreateAssetParams holds the fields for a new alm_asset record. AssignedTo
// accepts a sys_id, login name or email.
type CreateAssetParams struct {
	AssetTag           string `json:"asset_tag"`
	DisplayName        string `json:"display_name"`
	Model              string `json:"model,omitempty"`
	SerialNumber       string `json:"serial_number,omitempty"`
	AssignedTo         string `json:"assigned_to,omitempty"`
	Location           string `json:"location,omitempty"`
	Cost               string `json:"cost,omitempty"`
	PurchaseDate       string `json:"purchase_date,omitempty"`
	WarrantyExpiration string `json:"warranty_expiration,omitempty"`
	Category           string `json:"category,omitempty"`
	Subcategory        string `json:"subcategory,omitempty"`
	Manufacturer       string `json:"manufacturer,omitempty"`
	ModelCategory      string `json:"model_category,omitempty"`
	State              string `json:"state,omitempty"`
	Substatus          string `json:"substatus,omitempty"`
	Comments           string `json:"comments,omitempty"`
}

// UpdateAssetParams holds a partial update. AssetID accepts a sys_id, asset
// tag, serial number or display name.
type UpdateAssetParams struct {
	AssetID            string `json:"asset_id"`
	DisplayName        string `json:"display_name,omitempty"`
	Model              string `json:"model,omitempty"`
	SerialNumber       string `json:"serial_number,omitempty"`
	AssignedTo         string `json:"assigned_to,omitempty"`
	Location           string `json:"location,omitempty"`
	Cost               string `json:"cost,omitempty"`
	PurchaseDate       string `json:"purchase_date,omitempty"`
	WarrantyExpiration string `json:"warranty_expiration,omitempty"`
	Category           string `json:"category,omitempty"`
	Subcategory        string `json:"subcategory,omitempty"`
	Manufacturer       string `json:"manufacturer,omitempty"`
	ModelCategory      string `json:"model_category,omitempty"`
	State              string `json:"state,omitempty"`
	Substatus          string `json:"substatus,omitempty"`
	Comments           string `json:"comments,omitempty"`
}

// GetAssetParams selects one asset by exactly one of the identifiers.
type GetAssetParams struct {
	AssetID      string `json:"asset_id,omitempty"`
	AssetTag     string `json:"asset_tag,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

type ListAssetsParams struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
	// AssignedTo entries may be sys_ids, login names or emails; each is
	// resolved before the query is built.
	AssignedTo []string `json:"assigned_to,omitempty"`
	Location   string   `json:"location,omitempty"`
	Name       string   `json:"name,omitempty"`
	// Query is a free-text term matched against tag, name, serial number,
	// model and short description.
	Query string `json:"query,omitempty"`
}

type DeleteAssetParams struct {
	AssetID string `json:"asset_id"`
	Reason  string `json:"reason,omitempty"`
}

type TransferAssetParams struct {
	AssetID        string `json:"asset_id"`
	NewAssignedTo  string `json:"new_assigned_to"`
	TransferReason string `json:"transfer_reason,omitempty"`
	Comments       string `json:"comments,omitempty"`
}

type SearchAssetsByNameParams struct {
	Name       string `json:"name"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
	ExactMatch bool   `json:"exact_match,omitempty"`
}

type ListHardwareAssetsParams struct {
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty"`
	Name       string `json:"name,omitempty"`
	Query      string `json:"query,omitempty"`
}

// AssetResponse is the uniform result of mutating asset operations.
type AssetResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	AssetID  string `json:"asset_id,omitempty"`
	AssetTag string `json:"asset_tag,omitempty"`
}

// GetAssetResponse carries a single asset record.
type GetAssetResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Asset   snow.Record `json:"asset,omitempty"`
}

// ListAssetsResponse carries a page of asset records.
type ListAssetsResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Assets  []snow.Record `json:"assets,omitempty"`
	Count   int           `json:"count"`
}
