package orders

type BrowseCatalogParams struct {
	Category      string `json:"category,omitempty"`
	Manufacturer  string `json:"manufacturer,omitempty"`
	PriceRange    string `json:"price_range,omitempty"`
	AvailableOnly *bool  `json:"available_only,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

type SubmitOrderParams struct {
	CatalogItemID         string `json:"catalog_item_id"`
	RequestedFor          string `json:"requested_for"`
	Quantity              int    `json:"quantity,omitempty"`
	Justification         string `json:"justification,omitempty"`
	Priority              string `json:"priority,omitempty"`
	RequestedDeliveryDate string `json:"requested_delivery_date,omitempty"`
	SpecialInstructions   string `json:"special_instructions,omitempty"`
	CostCenter            string `json:"cost_center,omitempty"`
	ProjectCode           string `json:"project_code,omitempty"`
}

type TrackOrdersParams struct {
	RequestNumber string `json:"request_number,omitempty"`
	RequestedFor  string `json:"requested_for,omitempty"`
	Status        string `json:"status,omitempty"`
	DateRange     string `json:"date_range,omitempty"` // last_7_days, last_30_days
	Limit         int    `json:"limit,omitempty"`
}

type CancelOrderParams struct {
	RequestID          string `json:"request_id"`
	CancellationReason string `json:"cancellation_reason"`
	NotifyRequestor    bool   `json:"notify_requestor,omitempty"`
}

type ProvisionParams struct {
	RequestID          string `json:"request_id"`
	AssetTag           string `json:"asset_tag"`
	SerialNumber       string `json:"serial_number,omitempty"`
	Location           string `json:"location,omitempty"`
	ConfigurationNotes string `json:"configuration_notes,omitempty"`
}

type RecommendationsParams struct {
	UserRole    string `json:"user_role"`
	Department  string `json:"department"`
	BudgetRange string `json:"budget_range,omitempty"`
}

// ==========================
// Responses
// ==========================

// CatalogItem is the flattened shape returned by BrowseCatalog, with a
// price bucket derived from the list price.
type CatalogItem struct {
	SysID            string `json:"sys_id"`
	Name             string `json:"name"`
	ShortDescription string `json:"short_description"`
	Category         string `json:"category"`
	Price            string `json:"price"`
	PriceRange       string `json:"price_range"`
	Description      string `json:"description"`
	Active           bool   `json:"active"`
}

type BrowseCatalogResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Items   []CatalogItem `json:"items"`
	Count   int           `json:"count"`
}

type SubmitOrderResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	RequestID     string `json:"request_id,omitempty"`
	RequestNumber string `json:"request_number,omitempty"`
	ItemID        string `json:"item_id,omitempty"`
	CatalogItem   string `json:"catalog_item,omitempty"`
	Quantity      int    `json:"quantity,omitempty"`
	EstimatedCost string `json:"estimated_cost,omitempty"`
	Status        string `json:"status,omitempty"`
}

// OrderItem is one catalog line inside a tracked order.
type OrderItem struct {
	ItemName string `json:"item_name"`
	Quantity string `json:"quantity"`
	Status   string `json:"status"`
	Price    string `json:"price"`
}

// Order is one tracked service request with its expanded items.
type Order struct {
	RequestNumber string      `json:"request_number"`
	RequestID     string      `json:"request_id"`
	Description   string      `json:"description"`
	Status        string      `json:"status"`
	Priority      string      `json:"priority"`
	RequestedFor  string      `json:"requested_for"`
	CreatedDate   string      `json:"created_date"`
	DeliveryDate  string      `json:"delivery_date"`
	Items         []OrderItem `json:"items"`
}

type TrackOrdersResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Orders  []Order `json:"orders"`
	Count   int     `json:"count"`
}

type CancelOrderResponse struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	RequestID          string `json:"request_id"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
	Status             string `json:"status,omitempty"`
}

type ProvisionResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	AssetID       string `json:"asset_id,omitempty"`
	AssetTag      string `json:"asset_tag,omitempty"`
	AssignedTo    string `json:"assigned_to,omitempty"`
	RequestNumber string `json:"request_number,omitempty"`
}

// Recommendation is the role-derived hardware profile.
type Recommendation struct {
	Primary             string   `json:"primary"`
	Specs               []string `json:"specs"`
	SuggestedItems      []string `json:"suggested_items"`
	AdditionalEquipment []string `json:"additional_equipment,omitempty"`
	BudgetNotes         string   `json:"budget_notes,omitempty"`
}

type RecommendationsResponse struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	Recommendation Recommendation `json:"recommendation"`
	UserRole       string         `json:"user_role"`
	Department     string         `json:"department"`
}
