package warranty

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// VendorWarranty is the coverage record reported by a manufacturer API.
type VendorWarranty struct {
	Expiration   string `json:"warranty_expiration"`
	Start        string `json:"warranty_start"`
	Type         string `json:"warranty_type"`
	SupportLevel string `json:"support_level"`
	Source       string `json:"api_source"`
}

// VendorAPI looks up warranty coverage with the device manufacturer. A nil
// result with nil error means no vendor data is available for the device.
type VendorAPI interface {
	Lookup(ctx context.Context, manufacturer, serialNumber string) (*VendorWarranty, error)
}

type vendorProfile struct {
	daysRemaining int
	daysSinceSale int
	warrantyType  string
	supportLevel  string
	source        string
}

var vendorProfiles = map[string]vendorProfile{
	"lenovo": {365, 730, "Standard Limited Warranty", "Warranty", "Lenovo Support API (simulated)"},
	"dell":   {400, 695, "Basic Hardware Support", "Basic", "Dell Support API (simulated)"},
	"hp":     {450, 650, "Limited Hardware Warranty", "Limited", "HP Support API (simulated)"},
	"apple":  {300, 800, "Limited Warranty", "Limited Warranty and Service", "Apple Support API (simulated)"},
}

var genericProfile = vendorProfile{200, 900, "Standard Warranty", "Standard", ""}

// SimulatedVendorAPI stands in for the per-manufacturer support APIs. Each
// known vendor answers with a fixed coverage window relative to Now; unknown
// vendors get a generic window. Swap in real clients per vendor when the
// integration accounts exist.
type SimulatedVendorAPI struct {
	Now func() time.Time
}

func NewSimulatedVendorAPI() *SimulatedVendorAPI {
	return &SimulatedVendorAPI{Now: time.Now}
}

func (v *SimulatedVendorAPI) Lookup(_ context.Context, manufacturer, serialNumber string) (*VendorWarranty, error) {
	if manufacturer == "" || serialNumber == "" {
		return nil, nil
	}

	normalized := strings.ToLower(strings.TrimSpace(manufacturer))
	profile := genericProfile
	for vendor, p := range vendorProfiles {
		if strings.Contains(normalized, vendor) {
			profile = p
			break
		}
	}

	source := profile.source
	if source == "" {
		source = fmt.Sprintf("%s API (simulated)", capitalize(normalized))
	}

	now := v.Now()
	return &VendorWarranty{
		Expiration:   now.AddDate(0, 0, profile.daysRemaining).Format(dateLayout),
		Start:        now.AddDate(0, 0, -profile.daysSinceSale).Format(dateLayout),
		Type:         profile.warrantyType,
		SupportLevel: profile.supportLevel,
		Source:       source,
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
