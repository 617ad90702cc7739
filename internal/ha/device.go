package ha

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DeviceInfo describes the physical device every entity of a node belongs
// to. Home Assistant groups entities by the identifiers.
//
// The descriptor is serialized once at startup; entities embed the
// resulting fragment verbatim under the "dev" key.
type DeviceInfo struct {
	Identifiers     []string `json:"ids"`
	Name            string   `json:"name,omitempty"`
	Manufacturer    string   `json:"mf,omitempty"`
	Model           string   `json:"mdl,omitempty"`
	SoftwareVersion string   `json:"sw,omitempty"`
	HardwareVersion string   `json:"hw,omitempty"`
	ConfigURL       string   `json:"cu,omitempty"`
}

// Serialize returns the JSON fragment for the "dev" field.
func (d DeviceInfo) Serialize() ([]byte, error) {
	if len(d.Identifiers) == 0 || d.Identifiers[0] == "" {
		return nil, fmt.Errorf("%w: device has no identifier", ErrNoDevice)
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Join(ErrNoDevice, err)
	}
	return b, nil
}
