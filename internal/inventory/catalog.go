package inventory

import (
	"fmt"
	"os"

	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Devices []models.Device `yaml:"devices"`
}

// LoadCatalog reads a device catalog from a YAML file
func LoadCatalog(path string) ([]models.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML device catalog
func ParseCatalog(data []byte) ([]models.Device, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(f.Devices) == 0 {
		return nil, fmt.Errorf("catalog has no devices")
	}

	seen := make(map[int]bool, len(f.Devices))
	for i := range f.Devices {
		d := &f.Devices[i]
		switch {
		case d.ID <= 0:
			return nil, fmt.Errorf("catalog entry %d: id must be positive", i)
		case d.Name == "":
			return nil, fmt.Errorf("catalog entry %d: name is required", i)
		case !d.Type.Valid():
			return nil, fmt.Errorf("catalog entry %d: %w %q", i, models.ErrInvalidDeviceType, d.Type)
		case seen[d.ID]:
			return nil, fmt.Errorf("catalog entry %d: duplicate id %d", i, d.ID)
		}
		seen[d.ID] = true
		d.Status = models.DeviceStatusAvailable
	}
	return f.Devices, nil
}

// DefaultCatalog returns the built-in café floor
func DefaultCatalog() []models.Device {
	return []models.Device{
		{ID: 1, Name: "PC-101", Type: models.DeviceTypeDesktop, Specs: "Intel i7, 32GB RAM, 1TB SSD, RTX 3060"},
		{ID: 2, Name: "PC-102", Type: models.DeviceTypeDesktop, Specs: "Intel i7, 32GB RAM, 1TB SSD, RTX 3060"},
		{ID: 3, Name: "PC-103", Type: models.DeviceTypeDesktop, Specs: "Intel i5, 16GB RAM, 512GB SSD"},
		{ID: 4, Name: "PC-104", Type: models.DeviceTypeDesktop, Specs: "Intel i5, 16GB RAM, 512GB SSD"},
		{ID: 5, Name: "PC-105", Type: models.DeviceTypeDesktop, Specs: "Intel i5, 16GB RAM, 512GB SSD"},
		{ID: 6, Name: "PC-106", Type: models.DeviceTypeDesktop, Specs: "Intel i3, 8GB RAM, 256GB SSD"},
		{ID: 7, Name: "LT-201", Type: models.DeviceTypeLaptop, Specs: "MacBook Pro M2, 32GB RAM, 512GB SSD"},
		{ID: 8, Name: "LT-202", Type: models.DeviceTypeLaptop, Specs: "Dell XPS 13, 16GB RAM, 512GB SSD"},
		{ID: 9, Name: "LT-203", Type: models.DeviceTypeLaptop, Specs: "Lenovo ThinkPad T14, 16GB RAM, 256GB SSD"},
		{ID: 10, Name: "LT-204", Type: models.DeviceTypeLaptop, Specs: "HP EliteBook, 8GB RAM, 256GB SSD"},
	}
}
