package entity

import (
	"errors"
	"fmt"
	"time"
)

// FlightType selects which directions a subscriber monitors
type FlightType string

const (
	FlightTypeArrivals   FlightType = "arrivals"
	FlightTypeDepartures FlightType = "departures"
	FlightTypeBoth       FlightType = "both"
)

const (
	DefaultHoursBack  = 2
	DefaultHoursAhead = 24
)

// Subscriber is one configured airport monitoring target
type Subscriber struct {
	ID         string     `bson:"_id,omitempty"`
	Airport    string     `bson:"airport"` // IATA code, unique index
	FlightType FlightType `bson:"flightType"`
	HoursBack  int        `bson:"hoursBack"`
	HoursAhead int        `bson:"hoursAhead"`
	CreatedAt  time.Time  `bson:"createdAt"`
	UpdatedAt  time.Time  `bson:"updatedAt"`
}

// Directions returns the concrete flight directions this subscriber fetches
func (s *Subscriber) Directions() []FlightType {
	switch s.FlightType {
	case FlightTypeBoth:
		return []FlightType{FlightTypeArrivals, FlightTypeDepartures}
	case FlightTypeDepartures:
		return []FlightType{FlightTypeDepartures}
	default:
		return []FlightType{FlightTypeArrivals}
	}
}

// WantsArrivals reports whether arrivals are monitored
func (s *Subscriber) WantsArrivals() bool {
	return s.FlightType == FlightTypeArrivals || s.FlightType == FlightTypeBoth
}

// WantsDepartures reports whether departures are monitored
func (s *Subscriber) WantsDepartures() bool {
	return s.FlightType == FlightTypeDepartures || s.FlightType == FlightTypeBoth
}

// Validate checks field-level constraints. Airport whitelist membership is
// checked separately against the airports reference table.
func (s *Subscriber) Validate() error {
	if s.Airport == "" {
		return errors.New("subscriber airport is required")
	}
	switch s.FlightType {
	case FlightTypeArrivals, FlightTypeDepartures, FlightTypeBoth:
	default:
		return fmt.Errorf("invalid flight type %q", s.FlightType)
	}
	if s.HoursBack <= 0 {
		return fmt.Errorf("hoursBack must be positive, got %d", s.HoursBack)
	}
	if s.HoursAhead <= 0 {
		return fmt.Errorf("hoursAhead must be positive, got %d", s.HoursAhead)
	}
	return nil
}
