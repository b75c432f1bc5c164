package inventory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
)

// Registry manages device state in memory
type Registry struct {
	mu      sync.RWMutex
	devices map[int]*models.Device
}

// NewRegistry builds a registry from a catalog. Every device starts available.
func NewRegistry(catalog []models.Device) (*Registry, error) {
	r := &Registry{devices: make(map[int]*models.Device, len(catalog))}
	for _, d := range catalog {
		if _, exists := r.devices[d.ID]; exists {
			return nil, fmt.Errorf("duplicate device id %d", d.ID)
		}
		device := d
		device.Status = models.DeviceStatusAvailable
		r.devices[d.ID] = &device
	}
	return r, nil
}

// ListByType returns all devices of the given type, or every device when t is empty
func (r *Registry) ListByType(t models.DeviceType) []models.Device {
	return r.list(models.DeviceFilter{Type: t})
}

// ListAvailable returns the available devices of the given type, or of every type when t is empty
func (r *Registry) ListAvailable(t models.DeviceType) []models.Device {
	return r.list(models.DeviceFilter{Type: t, Status: models.DeviceStatusAvailable})
}

// List returns the devices matching filter, ordered by id
func (r *Registry) List(filter models.DeviceFilter) []models.Device {
	return r.list(filter)
}

func (r *Registry) list(filter models.DeviceFilter) []models.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]models.Device, 0, len(r.devices))
	for _, d := range r.devices {
		if filter.Matches(*d) {
			devices = append(devices, *d)
		}
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices
}

// GetByID returns a device by id
func (r *Registry) GetByID(id int) (models.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[id]
	if !ok {
		return models.Device{}, fmt.Errorf("device %d: %w", id, models.ErrDeviceNotFound)
	}
	return *d, nil
}

// Book moves a device from available to in-use. It fails if the device is already in use.
func (r *Registry) Book(id int) (models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return models.Device{}, fmt.Errorf("device %d: %w", id, models.ErrDeviceNotFound)
	}
	if d.Status != models.DeviceStatusAvailable {
		return models.Device{}, fmt.Errorf("device %d: %w", id, models.ErrDeviceNotAvailable)
	}
	d.Status = models.DeviceStatusInUse
	d.Version++
	return *d, nil
}

// Release makes a device available again. Releasing an available device is a no-op.
func (r *Registry) Release(id int) (models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return models.Device{}, fmt.Errorf("device %d: %w", id, models.ErrDeviceNotFound)
	}
	if d.Status != models.DeviceStatusAvailable {
		d.Status = models.DeviceStatusAvailable
		d.Version++
	}
	return *d, nil
}

// Summary counts devices by type and status
func (r *Registry) Summary() models.AvailabilitySummary {
	return models.SummarizeDevices(r.list(models.DeviceFilter{}))
}
