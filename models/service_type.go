package models

import "fmt"

type ServiceType string

const (
	ServiceDoctor  ServiceType = "doctor"
	ServiceDentist ServiceType = "dentist"
)

// ParseServiceType validates a service type coming off the wire.
func ParseServiceType(s string) (ServiceType, error) {
	switch ServiceType(s) {
	case ServiceDoctor:
		return ServiceDoctor, nil
	case ServiceDentist:
		return ServiceDentist, nil
	}
	return "", fmt.Errorf("unknown service type %q", s)
}

// Other returns the opposite service, used by the switch-service action.
func (s ServiceType) Other() ServiceType {
	if s == ServiceDoctor {
		return ServiceDentist
	}
	return ServiceDoctor
}
