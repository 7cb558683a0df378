package entity

import "time"

// FlightSummary is the flattened per-flight view published in snapshots
type FlightSummary struct {
	FlightID      string   `json:"flight_id"`
	Airline       string   `json:"airline"`
	AirlineIATA   string   `json:"airline_iata"`
	AirlineICAO   string   `json:"airline_icao"`
	ScheduledTime string   `json:"scheduled_time"`
	EstimatedTime string   `json:"estimated_time,omitempty"`
	ActualTime    string   `json:"actual_time,omitempty"`
	Status        string   `json:"status"`
	Terminal      string   `json:"terminal,omitempty"`
	Gate          string   `json:"gate,omitempty"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	CodeShares    []string `json:"code_share_flights,omitempty"`
	Remarks       string   `json:"remarks,omitempty"`

	// Departures only
	GateAction    string `json:"gate_action,omitempty"`
	GateOpen      string `json:"gate_open,omitempty"`
	GateClose     string `json:"gate_close,omitempty"`
	CheckInStatus string `json:"check_in_status,omitempty"`
	CheckInFrom   any    `json:"check_in_from,omitempty"`
	CheckInTo     any    `json:"check_in_to,omitempty"`

	// Arrivals only
	BaggageClaim      string `json:"baggage_claim,omitempty"`
	EstimatedFirstBag string `json:"estimated_first_bag,omitempty"`
	FirstBag          string `json:"first_bag,omitempty"`
	LastBag           string `json:"last_bag,omitempty"`
}

// BaggageEvent is one arrival with an assigned baggage claim unit
type BaggageEvent struct {
	FlightID          string   `json:"flight_id"`
	Airline           string   `json:"airline"`
	Origin            string   `json:"origin"`
	ScheduledTime     string   `json:"scheduled_time"`
	ActualTime        string   `json:"actual_time,omitempty"`
	Status            string   `json:"status"`
	Terminal          string   `json:"terminal,omitempty"`
	BaggageClaim      string   `json:"baggage_claim"`
	EstimatedFirstBag string   `json:"estimated_first_bag,omitempty"`
	FirstBag          string   `json:"first_bag,omitempty"`
	LastBag           string   `json:"last_bag,omitempty"`
	CodeShares        []string `json:"code_share_flights,omitempty"`
}

// FlightSnapshot is the complete published result of one poll cycle.
// A snapshot is replaced wholesale on each successful poll; a failed poll
// leaves the previous snapshot in place.
type FlightSnapshot struct {
	Airport        string          `json:"airport"`
	AirportName    string          `json:"airport_name"`
	FlightType     FlightType      `json:"flight_type"`
	UpdatedAt      time.Time       `json:"last_updated"`
	ArrivalCount   int             `json:"arrival_count"`
	DepartureCount int             `json:"departure_count"`
	Arrivals       []FlightSummary `json:"arrivals,omitempty"`
	Departures     []FlightSummary `json:"departures,omitempty"`
	BaggageClaims  []BaggageEvent  `json:"baggage_claims,omitempty"`
}
