package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/snow"
	"servicenow-toolkit/internal/snow/resolve"
)

// ==========================
// Mock Implementations
// ==========================

type mockTableAPI struct {
	getRecordsFunc   func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error)
	getRecordFunc    func(ctx context.Context, table, sysID string) (snow.Record, error)
	createRecordFunc func(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error)
	updateRecordFunc func(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error)

	updatedRecords []string
	deletedRecords []string
}

func (m *mockTableAPI) GetRecords(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
	if m.getRecordsFunc != nil {
		return m.getRecordsFunc(ctx, table, q)
	}
	return nil, nil
}

func (m *mockTableAPI) GetRecord(ctx context.Context, table, sysID string) (snow.Record, error) {
	if m.getRecordFunc != nil {
		return m.getRecordFunc(ctx, table, sysID)
	}
	return snow.Record{"sys_id": sysID}, nil
}

func (m *mockTableAPI) CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error) {
	if m.createRecordFunc != nil {
		return m.createRecordFunc(ctx, table, fields)
	}
	return snow.Record{"sys_id": "created"}, nil
}

func (m *mockTableAPI) UpdateRecord(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error) {
	m.updatedRecords = append(m.updatedRecords, table+"/"+sysID)
	if m.updateRecordFunc != nil {
		return m.updateRecordFunc(ctx, table, sysID, fields)
	}
	return snow.Record{"sys_id": sysID}, nil
}

func (m *mockTableAPI) DeleteRecord(ctx context.Context, table, sysID string) error {
	m.deletedRecords = append(m.deletedRecords, table+"/"+sysID)
	return nil
}

type mockResolver struct {
	results map[string]resolve.Result
}

func (m *mockResolver) Resolve(ctx context.Context, kind resolve.EntityKind, raw string) (resolve.Result, error) {
	if result, ok := m.results[raw]; ok {
		return result, nil
	}
	return resolve.Result{Resolved: false}, nil
}

type mockNotifier struct {
	notifyFunc func(ctx context.Context, to, subject, body string) error
	calls      int
}

func (m *mockNotifier) Notify(ctx context.Context, to, subject, body string) error {
	m.calls++
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, to, subject, body)
	}
	return nil
}

func newService(t *testing.T, client TableAPI, resolver Resolver, notifier *mockNotifier) *Service {
	t.Helper()
	if notifier == nil {
		return NewService(client, resolver, nil, logger.NewTestLogger(t))
	}
	return NewService(client, resolver, notifier, logger.NewTestLogger(t))
}

// ==========================
// BrowseCatalog
// ==========================

func TestBrowseCatalog_DefaultsToActiveItems(t *testing.T) {
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			assert.Equal(t, "sc_cat_item", table)
			assert.Equal(t, "active=true", q.Query)
			assert.Equal(t, 20, q.Limit)
			return []snow.Record{{
				"sys_id": "item1",
				"name":   "ThinkPad X1",
				"price":  "$1,499.00",
				"active": "true",
			}}, nil
		},
	}

	resp := newService(t, client, &mockResolver{}, nil).BrowseCatalog(context.Background(), BrowseCatalogParams{})

	require.True(t, resp.Success)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Standard ($1,000-$1,999)", resp.Items[0].PriceRange)
	assert.True(t, resp.Items[0].Active)
}

func TestBrowseCatalog_CategoryAndManufacturerFilters(t *testing.T) {
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			assert.Equal(t, "active=true^category.nameLIKELaptops^short_descriptionLIKEDell", q.Query)
			return nil, nil
		},
	}

	resp := newService(t, client, &mockResolver{}, nil).BrowseCatalog(context.Background(), BrowseCatalogParams{
		Category:     "Laptops",
		Manufacturer: "Dell",
	})

	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.Count)
}

func TestBrowseCatalog_PriceRangeFiltersClientSide(t *testing.T) {
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			return []snow.Record{
				{"sys_id": "cheap", "price": "$499.00"},
				{"sys_id": "mid", "price": "$1,499.00"},
				{"sys_id": "pricey", "price": "$3,200.00"},
				{"sys_id": "unpriced", "price": ""},
			}, nil
		},
	}

	resp := newService(t, client, &mockResolver{}, nil).BrowseCatalog(context.Background(), BrowseCatalogParams{
		PriceRange: "1000-2000",
	})

	require.True(t, resp.Success)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "mid", resp.Items[0].SysID)
}

func TestClassifyPrice(t *testing.T) {
	tests := []struct {
		price string
		want  string
	}{
		{"$0.00", "Contact for pricing"},
		{"$499.99", "Budget ($0-$999)"},
		{"$1,200.00", "Standard ($1,000-$1,999)"},
		{"$2,500.00", "Premium ($2,000-$2,999)"},
		{"$4,000.00", "Enterprise ($3,000+)"},
		{"on request", "Price varies"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyPrice(tt.price), "price %q", tt.price)
	}
}

// ==========================
// SubmitOrder
// ==========================

func TestSubmitOrder(t *testing.T) {
	client := &mockTableAPI{
		getRecordFunc: func(ctx context.Context, table, sysID string) (snow.Record, error) {
			assert.Equal(t, "sc_cat_item", table)
			return snow.Record{"sys_id": sysID, "name": "ThinkPad X1", "price": "$1,499.00"}, nil
		},
		createRecordFunc: func(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error) {
			switch table {
			case "sc_request":
				assert.Equal(t, "user1", fields["requested_for"])
				assert.Equal(t, "Hardware Order: ThinkPad X1", fields["short_description"])
				assert.Equal(t, "Order for 2x ThinkPad X1", fields["description"])
				assert.Equal(t, "3", fields["priority"])
				return snow.Record{"sys_id": "req1", "number": "REQ0010001"}, nil
			case "sc_req_item":
				assert.Equal(t, "req1", fields["request"])
				assert.Equal(t, "2", fields["quantity"])
				assert.Equal(t, "$1,499.00", fields["price"])
				return snow.Record{"sys_id": "ritm1"}, nil
			}
			return nil, fmt.Errorf("unexpected table %s", table)
		},
	}
	resolver := &mockResolver{results: map[string]resolve.Result{
		"jdoe": {Resolved: true, CanonicalID: "user1"},
	}}

	resp := newService(t, client, resolver, nil).SubmitOrder(context.Background(), SubmitOrderParams{
		CatalogItemID: "item1",
		RequestedFor:  "jdoe",
		Quantity:      2,
	})

	require.True(t, resp.Success)
	assert.Equal(t, "req1", resp.RequestID)
	assert.Equal(t, "REQ0010001", resp.RequestNumber)
	assert.Equal(t, "ritm1", resp.ItemID)
	assert.Equal(t, "Pending Approval", resp.Status)
	assert.Empty(t, client.deletedRecords)
}

func TestSubmitOrder_CatalogItemNotFound(t *testing.T) {
	client := &mockTableAPI{
		getRecordFunc: func(ctx context.Context, table, sysID string) (snow.Record, error) {
			return nil, &snow.APIError{StatusCode: 404, Body: "not found"}
		},
	}

	resp := newService(t, client, &mockResolver{}, nil).SubmitOrder(context.Background(), SubmitOrderParams{
		CatalogItemID: "ghost",
		RequestedFor:  "jdoe",
	})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "not found")
}

func TestSubmitOrder_UnresolvableUser(t *testing.T) {
	resp := newService(t, &mockTableAPI{
		getRecordFunc: func(ctx context.Context, table, sysID string) (snow.Record, error) {
			return snow.Record{"sys_id": sysID, "name": "ThinkPad X1"}, nil
		},
	}, &mockResolver{}, nil).SubmitOrder(context.Background(), SubmitOrderParams{
		CatalogItemID: "item1",
		RequestedFor:  "ghost",
	})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Could not resolve user")
}

func TestSubmitOrder_ItemFailureDeletesParentRequest(t *testing.T) {
	client := &mockTableAPI{
		getRecordFunc: func(ctx context.Context, table, sysID string) (snow.Record, error) {
			return snow.Record{"sys_id": sysID, "name": "ThinkPad X1"}, nil
		},
		createRecordFunc: func(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error) {
			if table == "sc_request" {
				return snow.Record{"sys_id": "req1"}, nil
			}
			return nil, fmt.Errorf("insert rejected")
		},
	}
	resolver := &mockResolver{results: map[string]resolve.Result{
		"jdoe": {Resolved: true, CanonicalID: "user1"},
	}}

	resp := newService(t, client, resolver, nil).SubmitOrder(context.Background(), SubmitOrderParams{
		CatalogItemID: "item1",
		RequestedFor:  "jdoe",
	})

	assert.False(t, resp.Success)
	assert.Equal(t, []string{"sc_request/req1"}, client.deletedRecords)
}

// ==========================
// TrackOrders
// ==========================

func TestTrackOrders_ExpandsItems(t *testing.T) {
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			switch table {
			case "sc_request":
				assert.Equal(t, "requested_for=user1^sys_created_on>=javascript:gs.daysAgo(7)", q.Query)
				return []snow.Record{{"sys_id": "req1", "number": "REQ0010001"}}, nil
			case "sc_req_item":
				assert.Equal(t, "request=req1", q.Query)
				return []snow.Record{{
					"sys_id":   "ritm1",
					"cat_item": map[string]interface{}{"value": "item1", "display_value": "ThinkPad X1"},
					"quantity": "2",
					"state":    "1",
				}}, nil
			}
			return nil, fmt.Errorf("unexpected table %s", table)
		},
	}
	resolver := &mockResolver{results: map[string]resolve.Result{
		"jdoe": {Resolved: true, CanonicalID: "user1"},
	}}

	resp := newService(t, client, resolver, nil).TrackOrders(context.Background(), TrackOrdersParams{
		RequestedFor: "jdoe",
		DateRange:    "last_7_days",
	})

	require.True(t, resp.Success)
	require.Len(t, resp.Orders, 1)
	require.Len(t, resp.Orders[0].Items, 1)
	assert.Equal(t, "ThinkPad X1", resp.Orders[0].Items[0].ItemName)
	assert.Equal(t, "2", resp.Orders[0].Items[0].Quantity)
}

func TestTrackOrders_ItemExpansionFailureDegrades(t *testing.T) {
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			if table == "sc_request" {
				return []snow.Record{{"sys_id": "req1", "number": "REQ0010001"}}, nil
			}
			return nil, fmt.Errorf("item query rejected")
		},
	}

	resp := newService(t, client, &mockResolver{}, nil).TrackOrders(context.Background(), TrackOrdersParams{})

	require.True(t, resp.Success)
	require.Len(t, resp.Orders, 1)
	assert.Empty(t, resp.Orders[0].Items)
}

// ==========================
// CancelOrder
// ==========================

func cancelClient() *mockTableAPI {
	return &mockTableAPI{
		updateRecordFunc: func(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error) {
			if table == "sc_request" {
				return snow.Record{"sys_id": sysID, "number": "REQ0010001", "requested_for": "user1"}, nil
			}
			return snow.Record{"sys_id": sysID}, nil
		},
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			return []snow.Record{{"sys_id": "ritm1"}, {"sys_id": "ritm2"}}, nil
		},
		getRecordFunc: func(ctx context.Context, table, sysID string) (snow.Record, error) {
			return snow.Record{"sys_id": sysID, "email": "jdoe@example.com"}, nil
		},
	}
}

func TestCancelOrder_CancelsRequestAndItems(t *testing.T) {
	client := cancelClient()

	resp := newService(t, client, &mockResolver{}, nil).CancelOrder(context.Background(), CancelOrderParams{
		RequestID:          "req1",
		CancellationReason: "no longer needed",
	})

	require.True(t, resp.Success)
	assert.Equal(t, "Cancelled", resp.Status)
	assert.Equal(t, []string{"sc_request/req1", "sc_req_item/ritm1", "sc_req_item/ritm2"}, client.updatedRecords)
}

func TestCancelOrder_NotifiesRequestorExactlyOnce(t *testing.T) {
	notifier := &mockNotifier{
		notifyFunc: func(ctx context.Context, to, subject, body string) error {
			assert.Equal(t, "jdoe@example.com", to)
			assert.Contains(t, subject, "REQ0010001")
			assert.Contains(t, body, "no longer needed")
			return nil
		},
	}

	resp := newService(t, cancelClient(), &mockResolver{}, notifier).CancelOrder(context.Background(), CancelOrderParams{
		RequestID:          "req1",
		CancellationReason: "no longer needed",
		NotifyRequestor:    true,
	})

	assert.True(t, resp.Success)
	assert.Equal(t, 1, notifier.calls)
}

func TestCancelOrder_NoNotificationWhenNotRequested(t *testing.T) {
	notifier := &mockNotifier{}

	resp := newService(t, cancelClient(), &mockResolver{}, notifier).CancelOrder(context.Background(), CancelOrderParams{
		RequestID:          "req1",
		CancellationReason: "duplicate",
	})

	assert.True(t, resp.Success)
	assert.Equal(t, 0, notifier.calls)
}

func TestCancelOrder_NotificationFailureDoesNotFailCancellation(t *testing.T) {
	notifier := &mockNotifier{
		notifyFunc: func(ctx context.Context, to, subject, body string) error {
			return fmt.Errorf("ses unavailable")
		},
	}

	resp := newService(t, cancelClient(), &mockResolver{}, notifier).CancelOrder(context.Background(), CancelOrderParams{
		RequestID:          "req1",
		CancellationReason: "duplicate",
		NotifyRequestor:    true,
	})

	assert.True(t, resp.Success)
	assert.Equal(t, 1, notifier.calls)
}

func TestCancelOrder_UpdateFailure(t *testing.T) {
	client := &mockTableAPI{
		updateRecordFunc: func(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error) {
			return nil, fmt.Errorf("status 403")
		},
	}

	resp := newService(t, client, &mockResolver{}, nil).CancelOrder(context.Background(), CancelOrderParams{
		RequestID:          "req1",
		CancellationReason: "duplicate",
	})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Failed to cancel hardware order")
}

func TestCancelOrder_SeparatorInRequestIDSkipsItemListing(t *testing.T) {
	listed := false
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			listed = true
			return nil, nil
		},
	}

	resp := newService(t, client, &mockResolver{}, nil).CancelOrder(context.Background(), CancelOrderParams{
		RequestID:          "req1^state=3",
		CancellationReason: "duplicate",
	})

	assert.True(t, resp.Success)
	assert.False(t, listed)
}

// ==========================
// Provision
// ==========================

func TestProvision(t *testing.T) {
	client := &mockTableAPI{
		getRecordFunc: func(ctx context.Context, table, sysID string) (snow.Record, error) {
			assert.Equal(t, "sc_request", table)
			return snow.Record{"sys_id": sysID, "number": "REQ0010001", "requested_for": "user1"}, nil
		},
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			return []snow.Record{{
				"cat_item": map[string]interface{}{"value": "item1", "display_value": "ThinkPad X1"},
			}}, nil
		},
		createRecordFunc: func(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error) {
			assert.Equal(t, "alm_asset", table)
			assert.Equal(t, "ThinkPad X1 - LAP-0042", fields["display_name"])
			assert.Equal(t, "user1", fields["assigned_to"])
			assert.Equal(t, "SN-1", fields["serial_number"])
			return snow.Record{"sys_id": "asset1"}, nil
		},
	}

	resp := newService(t, client, &mockResolver{}, nil).Provision(context.Background(), ProvisionParams{
		RequestID:    "req1",
		AssetTag:     "LAP-0042",
		SerialNumber: "SN-1",
	})

	require.True(t, resp.Success)
	assert.Equal(t, "asset1", resp.AssetID)
	assert.Equal(t, "REQ0010001", resp.RequestNumber)
	assert.Equal(t, []string{"sc_request/req1"}, client.updatedRecords)
}

func TestProvision_RequestNotFound(t *testing.T) {
	client := &mockTableAPI{
		getRecordFunc: func(ctx context.Context, table, sysID string) (snow.Record, error) {
			return nil, &snow.APIError{StatusCode: 404, Body: "not found"}
		},
	}

	resp := newService(t, client, &mockResolver{}, nil).Provision(context.Background(), ProvisionParams{
		RequestID: "ghost",
		AssetTag:  "LAP-0042",
	})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "not found")
}

// ==========================
// Recommendations
// ==========================

func TestRecommendations_KnownRoleAndDepartment(t *testing.T) {
	resp := newService(t, &mockTableAPI{}, &mockResolver{}, nil).Recommendations(context.Background(), RecommendationsParams{
		UserRole:   "Developer",
		Department: "IT",
	})

	require.True(t, resp.Success)
	assert.Contains(t, resp.Recommendation.SuggestedItems, "ThinkPad P1")
	assert.Contains(t, resp.Recommendation.AdditionalEquipment, "Docking station")
}

func TestRecommendations_UnknownRoleGetsGenericProfile(t *testing.T) {
	resp := newService(t, &mockTableAPI{}, &mockResolver{}, nil).Recommendations(context.Background(), RecommendationsParams{
		UserRole:    "Astronaut",
		Department:  "Legal",
		BudgetRange: "under-1000",
	})

	require.True(t, resp.Success)
	assert.Equal(t, "Standard business laptop", resp.Recommendation.Primary)
	assert.Empty(t, resp.Recommendation.AdditionalEquipment)
	assert.Contains(t, resp.Recommendation.BudgetNotes, "under-1000")
}
