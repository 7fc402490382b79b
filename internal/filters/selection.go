package filters

import (
	"net/url"
	"strings"
)

// Selection is the filter applied to the resource table
type Selection struct {
	Department string
	Location   string
	Device     string
	Search     string
}

// Default selects everything
func Default() Selection {
	return Selection{Department: All, Location: All, Device: All}
}

// Normalize maps blank dimensions to All and trims the search text
func (s Selection) Normalize() Selection {
	if isAll(strings.TrimSpace(s.Department)) {
		s.Department = All
	}
	if isAll(strings.TrimSpace(s.Location)) {
		s.Location = All
	}
	if isAll(strings.TrimSpace(s.Device)) {
		s.Device = All
	}
	s.Search = strings.TrimSpace(s.Search)
	return s
}

// IsDefault reports whether nothing is filtered
func (s Selection) IsDefault() bool {
	return s.Normalize() == Default()
}

// Values encodes the non-default fields as backend query parameters.
// Dimensions at All and an empty search are omitted.
func (s Selection) Values() url.Values {
	s = s.Normalize()
	v := url.Values{}
	if s.Department != All {
		v.Set("department", s.Department)
	}
	if s.Location != All {
		v.Set("location", s.Location)
	}
	if s.Device != All {
		v.Set("device_name", s.Device)
	}
	if s.Search != "" {
		v.Set("search", s.Search)
	}
	return v
}

// FromValues is the inverse of Values
func FromValues(v url.Values) Selection {
	return Selection{
		Department: v.Get("department"),
		Location:   v.Get("location"),
		Device:     v.Get("device_name"),
		Search:     v.Get("search"),
	}.Normalize()
}
