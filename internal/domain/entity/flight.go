package entity

import "time"

// FlightTimes holds the scheduled/estimated/actual times for one leg
type FlightTimes struct {
	ScheduledUTC string `json:"scheduledUtc"`
	EstimatedUTC string `json:"estimatedUtc"`
	ActualUTC    string `json:"actualUtc"`
}

// Best returns the most accurate known time: actual, then estimated,
// then scheduled. Empty string when none is set.
func (t FlightTimes) Best() string {
	if t.ActualUTC != "" {
		return t.ActualUTC
	}
	if t.EstimatedUTC != "" {
		return t.EstimatedUTC
	}
	return t.ScheduledUTC
}

// BestTime parses the most accurate known time
func (t FlightTimes) BestTime() (time.Time, bool) {
	raw := t.Best()
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// AirlineOperator identifies the operating airline
type AirlineOperator struct {
	Name string `json:"name"`
	IATA string `json:"iata"`
	ICAO string `json:"icao"`
}

// LocationAndStatus carries gate/terminal/status details
type LocationAndStatus struct {
	FlightLegStatusSwedish string `json:"flightLegStatusSwedish"`
	Terminal               string `json:"terminal"`
	Gate                   string `json:"gate"`
	GateActionSwedish      string `json:"gateActionSwedish"`
	GateOpenUTC            string `json:"gateOpenUtc"`
	GateCloseUTC           string `json:"gateCloseUtc"`
}

// Baggage carries baggage claim details for arrivals
type Baggage struct {
	BaggageClaimUnit     string `json:"baggageClaimUnit"`
	EstimatedFirstBagUTC string `json:"estimatedFirstBagUtc"`
	FirstBagUTC          string `json:"firstBagUtc"`
	LastBagUTC           string `json:"lastBagUtc"`
}

// CheckIn carries check-in desk details for departures
type CheckIn struct {
	CheckInStatusSwedish string `json:"checkInStatusSwedish"`
	CheckInDeskFrom      any    `json:"checkInDeskFrom"`
	CheckInDeskTo        any    `json:"checkInDeskTo"`
}

// Remark is one free-text remark attached to a flight
type Remark struct {
	Text string `json:"text"`
}

// Flight is one flight document as returned by the Swedavia API. It is
// passed through to snapshots without the core managing its lifecycle.
type Flight struct {
	FlightID                string            `json:"flightId"`
	DepartureAirportSwedish string            `json:"departureAirportSwedish"`
	ArrivalAirportSwedish   string            `json:"arrivalAirportSwedish"`
	AirlineOperator         AirlineOperator   `json:"airlineOperator"`
	ArrivalTime             FlightTimes       `json:"arrivalTime"`
	DepartureTime           FlightTimes       `json:"departureTime"`
	LocationAndStatus       LocationAndStatus `json:"locationAndStatus"`
	Baggage                 Baggage           `json:"baggage"`
	CheckIn                 CheckIn           `json:"checkIn"`
	CodeShareData           []string          `json:"codeShareData"`
	RemarksSwedish          []Remark          `json:"remarksSwedish"`
}

// Times returns the time block relevant for the given direction
func (f Flight) Times(direction FlightType) FlightTimes {
	if direction == FlightTypeArrivals {
		return f.ArrivalTime
	}
	return f.DepartureTime
}

// FlightsResponse is the JSON body of an arrivals/departures request
type FlightsResponse struct {
	Flights []Flight `json:"flights"`
}
