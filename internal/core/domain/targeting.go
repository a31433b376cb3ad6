package domain

// Targeting describes who a line item should reach.
type Targeting struct {
	Audience     string   `json:"audience"`
	Geos         []string `json:"geos,omitempty"`
	Devices      []string `json:"devices,omitempty"`
	ContentTypes []string `json:"content_types,omitempty"`
	Dayparts     []string `json:"dayparts,omitempty"`
}
