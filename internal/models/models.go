package models

import "github.com/goccy/go-json"

// GeoLocation represents optional location data for an IP address
// Every field is a pointer so a missing value serializes as JSON null
// instead of an empty string
type GeoLocation struct {
	Country  *string `json:"country"`  // Country name
	Region   *string `json:"region"`   // Region or state name
	City     *string `json:"city"`     // City name
	Org      *string `json:"org"`      // Organization / ISP
	Timezone *string `json:"timezone"` // IANA timezone (e.g. "Europe/Berlin")
	Postal   *string `json:"postal"`   // Postal or ZIP code
}

// IsEmpty reports whether no field of the location is set
func (g *GeoLocation) IsEmpty() bool {
	return g.Country == nil && g.Region == nil && g.City == nil &&
		g.Org == nil && g.Timezone == nil && g.Postal == nil
}

// HeaderPair is a single request header as received
// It is encoded as a two element JSON array: ["name", "value"]
type HeaderPair struct {
	Name  string
	Value string
}

// MarshalJSON encodes the pair as [name, value]
func (p HeaderPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Name, p.Value})
}

// UnmarshalJSON decodes a [name, value] array
func (p *HeaderPair) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	p.Name, p.Value = pair[0], pair[1]
	return nil
}

// RequestInfo is the body of the /api response
// It aggregates everything the classifier derives from one request
type RequestInfo struct {
	IP             string       `json:"ip"`
	UserAgent      string       `json:"user_agent"`
	Headers        []HeaderPair `json:"headers"`
	Geo            *GeoLocation `json:"geo"` // nil when the lookup degraded
	ConnectionType string       `json:"connection_type"`
	IsMobile       bool         `json:"is_mobile"`
	IsTor          bool         `json:"is_tor"`
	IsVPN          bool         `json:"is_vpn"`
}

// StringPtr returns a pointer to s, or nil when s is empty
// Dataset providers use it to turn blank columns into absent fields
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
