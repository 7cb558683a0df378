package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swedavia-flights-service/internal/domain/entity"
)

func sampleArrival(id, scheduled, actual, claim string) entity.Flight {
	return entity.Flight{
		FlightID:                id,
		DepartureAirportSwedish: "Köpenhamn",
		AirlineOperator:         entity.AirlineOperator{Name: "SAS", IATA: "SK", ICAO: "SAS"},
		ArrivalTime:             entity.FlightTimes{ScheduledUTC: scheduled, ActualUTC: actual},
		LocationAndStatus: entity.LocationAndStatus{
			FlightLegStatusSwedish: "Landat",
			Terminal:               "5",
			Gate:                   "F26",
		},
		Baggage: entity.Baggage{BaggageClaimUnit: claim, FirstBagUTC: actual},
		RemarksSwedish: []entity.Remark{
			{Text: "Försenad"},
			{Text: "Nytt bagageband"},
		},
	}
}

func TestBuildSnapshotArrivals(t *testing.T) {
	subscriber := &entity.Subscriber{
		Airport:    "ARN",
		FlightType: entity.FlightTypeArrivals,
		HoursBack:  2,
		HoursAhead: 24,
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	arrivals := []entity.Flight{
		sampleArrival("SK402", "2026-03-01T13:00:00Z", "", ""),
		sampleArrival("SK400", "2026-03-01T11:30:00Z", "2026-03-01T11:35:00Z", "3"),
	}

	snapshot := BuildSnapshot(subscriber, "Stockholm Arlanda", arrivals, nil, now)

	assert.Equal(t, "ARN", snapshot.Airport)
	assert.Equal(t, "Stockholm Arlanda", snapshot.AirportName)
	assert.Equal(t, 2, snapshot.ArrivalCount)
	assert.Equal(t, 0, snapshot.DepartureCount)
	assert.Empty(t, snapshot.Departures)

	require.Len(t, snapshot.Arrivals, 2)
	// Sorted by scheduled time
	assert.Equal(t, "SK400", snapshot.Arrivals[0].FlightID)
	assert.Equal(t, "SK402", snapshot.Arrivals[1].FlightID)

	first := snapshot.Arrivals[0]
	assert.Equal(t, "SAS", first.Airline)
	assert.Equal(t, "SK", first.AirlineIATA)
	assert.Equal(t, "Köpenhamn", first.Origin)
	assert.Equal(t, "Stockholm Arlanda", first.Destination)
	assert.Equal(t, "3", first.BaggageClaim)
	assert.Equal(t, "Försenad, Nytt bagageband", first.Remarks)
	assert.Empty(t, first.CheckInStatus, "departure fields stay unset for arrivals")
}

func TestBuildSnapshotDepartureFields(t *testing.T) {
	subscriber := &entity.Subscriber{
		Airport:    "GOT",
		FlightType: entity.FlightTypeDepartures,
		HoursBack:  2,
		HoursAhead: 24,
	}

	departures := []entity.Flight{{
		FlightID:              "DY4312",
		ArrivalAirportSwedish: "Oslo",
		DepartureTime:         entity.FlightTimes{ScheduledUTC: "2026-03-01T15:00:00Z"},
		LocationAndStatus: entity.LocationAndStatus{
			GateActionSwedish: "Gå till gaten",
			GateOpenUTC:       "2026-03-01T14:15:00Z",
			GateCloseUTC:      "2026-03-01T14:45:00Z",
		},
		CheckIn: entity.CheckIn{
			CheckInStatusSwedish: "Öppen",
			CheckInDeskFrom:      "12",
			CheckInDeskTo:        "16",
		},
	}}

	snapshot := BuildSnapshot(subscriber, "Göteborg Landvetter", nil, departures, time.Now().UTC())

	require.Len(t, snapshot.Departures, 1)
	departure := snapshot.Departures[0]
	assert.Equal(t, "Göteborg Landvetter", departure.Origin)
	assert.Equal(t, "Oslo", departure.Destination)
	assert.Equal(t, "Gå till gaten", departure.GateAction)
	assert.Equal(t, "Öppen", departure.CheckInStatus)
	assert.Equal(t, "12", departure.CheckInFrom)
	assert.Empty(t, snapshot.BaggageClaims, "no baggage section for departures-only")
}

func TestBaggageEventsFilterAndSort(t *testing.T) {
	subscriber := &entity.Subscriber{
		Airport:    "ARN",
		FlightType: entity.FlightTypeArrivals,
		HoursBack:  2,
		HoursAhead: 24,
	}

	arrivals := []entity.Flight{
		sampleArrival("SK404", "2026-03-01T14:00:00Z", "", "7"),
		sampleArrival("SK402", "2026-03-01T13:00:00Z", "", ""), // no claim unit
		sampleArrival("SK400", "2026-03-01T11:30:00Z", "2026-03-01T11:35:00Z", "3"),
	}

	snapshot := BuildSnapshot(subscriber, "Stockholm Arlanda", arrivals, nil, time.Now().UTC())

	require.Len(t, snapshot.BaggageClaims, 2)
	assert.Equal(t, "SK400", snapshot.BaggageClaims[0].FlightID)
	assert.Equal(t, "SK404", snapshot.BaggageClaims[1].FlightID)
	assert.Equal(t, "3", snapshot.BaggageClaims[0].BaggageClaim)
}

func TestSnapshotCapsDetailLists(t *testing.T) {
	subscriber := &entity.Subscriber{
		Airport:    "ARN",
		FlightType: entity.FlightTypeArrivals,
		HoursBack:  2,
		HoursAhead: 24,
	}

	arrivals := make([]entity.Flight, 0, 60)
	for i := 0; i < 60; i++ {
		arrivals = append(arrivals, sampleArrival("SK400", "2026-03-01T11:30:00Z", "", ""))
	}

	snapshot := BuildSnapshot(subscriber, "Stockholm Arlanda", arrivals, nil, time.Now().UTC())

	assert.Equal(t, 60, snapshot.ArrivalCount, "count reflects every flight")
	assert.Len(t, snapshot.Arrivals, maxFlightsPerDirection)
}
