package requests

import "servicenow-toolkit/internal/snow"

// CreateItemRequestParams describes one sc_req_item row. RequestedFor and
// CatItem accept free-form identifiers.
type CreateItemRequestParams struct {
	Number           string `json:"number,omitempty"`
	CatItem          string `json:"cat_item"`
	RequestedFor     string `json:"requested_for"`
	Quantity         string `json:"quantity,omitempty"`
	Request          string `json:"request,omitempty"`
	State            string `json:"state"`
	ShortDescription string `json:"short_description"`
}

// CreateRequestParams describes one sc_request row.
type CreateRequestParams struct {
	RequestedFor string `json:"requested_for"`
	State        string `json:"state"`
	Approval     string `json:"approval,omitempty"`
}

type ListItemRequestsParams struct {
	Limit            int    `json:"limit,omitempty"`
	Offset           int    `json:"offset,omitempty"`
	RequestedFor     string `json:"requested_for,omitempty"`
	CatItem          string `json:"cat_item,omitempty"`
	Number           string `json:"number,omitempty"`
	ShortDescription string `json:"short_description,omitempty"`
}

// CreateServiceRequestParams creates a request plus its request item in one
// operation.
type CreateServiceRequestParams struct {
	CatalogItem      string `json:"catalog_item"`
	RequestedFor     string `json:"requested_for,omitempty"`
	Quantity         string `json:"quantity,omitempty"`
	ShortDescription string `json:"short_description,omitempty"`
	Description      string `json:"description,omitempty"`
}

// RequestResponse is the uniform result of request mutations.
type RequestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	SysID   string `json:"sys_id,omitempty"`
	Number  string `json:"number,omitempty"`
}

// ServiceRequestResponse carries both halves of a composed request.
type ServiceRequestResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	RequestID     string `json:"request_id,omitempty"`
	RequestNumber string `json:"request_number,omitempty"`
	ItemID        string `json:"item_id,omitempty"`
	CatalogItem   string `json:"catalog_item,omitempty"`
}

type ListItemRequestsResponse struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	ItemRequests []snow.Record `json:"item_requests,omitempty"`
	Count        int           `json:"count"`
}
