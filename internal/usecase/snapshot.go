package usecase

import (
	"sort"
	"strings"
	"time"

	"swedavia-flights-service/internal/domain/entity"
)

// maxFlightsPerDirection caps the detail lists in a snapshot
const maxFlightsPerDirection = 50

// BuildSnapshot assembles the published snapshot for one poll cycle
func BuildSnapshot(subscriber *entity.Subscriber, airportName string, arrivals, departures []entity.Flight, now time.Time) *entity.FlightSnapshot {
	snapshot := &entity.FlightSnapshot{
		Airport:        subscriber.Airport,
		AirportName:    airportName,
		FlightType:     subscriber.FlightType,
		UpdatedAt:      now,
		ArrivalCount:   len(arrivals),
		DepartureCount: len(departures),
	}

	if subscriber.WantsArrivals() {
		snapshot.Arrivals = summarizeFlights(arrivals, entity.FlightTypeArrivals, airportName)
		snapshot.BaggageClaims = baggageEvents(arrivals)
	}
	if subscriber.WantsDepartures() {
		snapshot.Departures = summarizeFlights(departures, entity.FlightTypeDepartures, airportName)
	}

	return snapshot
}

func summarizeFlights(flights []entity.Flight, direction entity.FlightType, airportName string) []entity.FlightSummary {
	limit := len(flights)
	if limit > maxFlightsPerDirection {
		limit = maxFlightsPerDirection
	}

	summaries := make([]entity.FlightSummary, 0, limit)
	for _, flight := range flights[:limit] {
		summaries = append(summaries, summarizeFlight(flight, direction, airportName))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ScheduledTime < summaries[j].ScheduledTime
	})
	return summaries
}

func summarizeFlight(flight entity.Flight, direction entity.FlightType, airportName string) entity.FlightSummary {
	isArrival := direction == entity.FlightTypeArrivals
	times := flight.Times(direction)
	location := flight.LocationAndStatus

	summary := entity.FlightSummary{
		FlightID:      flight.FlightID,
		Airline:       flight.AirlineOperator.Name,
		AirlineIATA:   flight.AirlineOperator.IATA,
		AirlineICAO:   flight.AirlineOperator.ICAO,
		ScheduledTime: times.ScheduledUTC,
		EstimatedTime: times.EstimatedUTC,
		ActualTime:    times.ActualUTC,
		Status:        location.FlightLegStatusSwedish,
		Terminal:      location.Terminal,
		Gate:          location.Gate,
		CodeShares:    flight.CodeShareData,
		Remarks:       joinRemarks(flight.RemarksSwedish),
	}

	if isArrival {
		summary.Origin = flight.DepartureAirportSwedish
		summary.Destination = airportName
		summary.BaggageClaim = flight.Baggage.BaggageClaimUnit
		summary.EstimatedFirstBag = flight.Baggage.EstimatedFirstBagUTC
		summary.FirstBag = flight.Baggage.FirstBagUTC
		summary.LastBag = flight.Baggage.LastBagUTC
	} else {
		summary.Origin = airportName
		summary.Destination = flight.ArrivalAirportSwedish
		summary.GateAction = location.GateActionSwedish
		summary.GateOpen = location.GateOpenUTC
		summary.GateClose = location.GateCloseUTC
		summary.CheckInStatus = flight.CheckIn.CheckInStatusSwedish
		summary.CheckInFrom = flight.CheckIn.CheckInDeskFrom
		summary.CheckInTo = flight.CheckIn.CheckInDeskTo
	}

	return summary
}

func joinRemarks(remarks []entity.Remark) string {
	texts := make([]string, 0, len(remarks))
	for _, remark := range remarks {
		if remark.Text != "" {
			texts = append(texts, remark.Text)
		}
	}
	return strings.Join(texts, ", ")
}

// baggageEvents extracts arrivals that have an assigned baggage claim
// unit, sorted by their best known time
func baggageEvents(arrivals []entity.Flight) []entity.BaggageEvent {
	events := make([]entity.BaggageEvent, 0)
	for _, flight := range arrivals {
		if flight.Baggage.BaggageClaimUnit == "" {
			continue
		}

		events = append(events, entity.BaggageEvent{
			FlightID:          flight.FlightID,
			Airline:           flight.AirlineOperator.Name,
			Origin:            flight.DepartureAirportSwedish,
			ScheduledTime:     flight.ArrivalTime.ScheduledUTC,
			ActualTime:        flight.ArrivalTime.ActualUTC,
			Status:            flight.LocationAndStatus.FlightLegStatusSwedish,
			Terminal:          flight.LocationAndStatus.Terminal,
			BaggageClaim:      flight.Baggage.BaggageClaimUnit,
			EstimatedFirstBag: flight.Baggage.EstimatedFirstBagUTC,
			FirstBag:          flight.Baggage.FirstBagUTC,
			LastBag:           flight.Baggage.LastBagUTC,
			CodeShares:        flight.CodeShareData,
		})
	}

	sort.Slice(events, func(i, j int) bool {
		return sortKey(events[i]) < sortKey(events[j])
	})
	return events
}

func sortKey(event entity.BaggageEvent) string {
	if event.ActualTime != "" {
		return event.ActualTime
	}
	return event.ScheduledTime
}
