package models

// Device represents a bookable unit on the café floor
type Device struct {
	ID      int          `json:"id" yaml:"id"`
	Name    string       `json:"name" yaml:"name"`
	Type    DeviceType   `json:"type" yaml:"type"`
	Status  DeviceStatus `json:"status" yaml:"-"`
	Specs   string       `json:"specs" yaml:"specs"`
	Version int64        `json:"version" yaml:"-"` // bumped on every status change
}

type DeviceType string

const (
	DeviceTypeDesktop DeviceType = "desktop"
	DeviceTypeLaptop  DeviceType = "laptop"
)

// Valid reports whether t is a known device type
func (t DeviceType) Valid() bool {
	return t == DeviceTypeDesktop || t == DeviceTypeLaptop
}

type DeviceStatus string

const (
	DeviceStatusAvailable DeviceStatus = "available"
	DeviceStatusInUse     DeviceStatus = "in-use"
)

// Valid reports whether s is a known device status
func (s DeviceStatus) Valid() bool {
	return s == DeviceStatusAvailable || s == DeviceStatusInUse
}

// DeviceFilter narrows a device listing. Zero values match everything.
type DeviceFilter struct {
	Type   DeviceType   `json:"type,omitempty"`
	Status DeviceStatus `json:"status,omitempty"`
}

// Matches reports whether d passes the filter
func (f DeviceFilter) Matches(d Device) bool {
	if f.Type != "" && d.Type != f.Type {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	return true
}

// TypeSummary counts devices of one type by status
type TypeSummary struct {
	Available int `json:"available"`
	InUse     int `json:"inUse"`
}

// AvailabilitySummary is the floor overview shown on the booking dashboard
type AvailabilitySummary struct {
	Total     int                        `json:"total"`
	Available int                        `json:"available"`
	InUse     int                        `json:"inUse"`
	ByType    map[DeviceType]TypeSummary `json:"byType"`
}

// SummarizeDevices builds an AvailabilitySummary from a device list
func SummarizeDevices(devices []Device) AvailabilitySummary {
	summary := AvailabilitySummary{ByType: make(map[DeviceType]TypeSummary)}
	for _, d := range devices {
		ts := summary.ByType[d.Type]
		summary.Total++
		if d.Status == DeviceStatusInUse {
			summary.InUse++
			ts.InUse++
		} else {
			summary.Available++
			ts.Available++
		}
		summary.ByType[d.Type] = ts
	}
	return summary
}
