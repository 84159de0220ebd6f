package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/venuepass/venuepass/internal/domain/entity"
)

// Venues roughly one kilometer apart around the fixture's city center.
const (
	centerLat = 52.5200
	centerLon = 13.4050
)

type verificationFixture struct {
	svc       *VerificationService
	venues    *fakeVenueRepo
	events    *fakeEventRepo
	locations *fakeLocationRepo
	ledger    *LocationService
	today     time.Time
}

func newVerificationFixture(t *testing.T) *verificationFixture {
	t.Helper()
	venues := newFakeVenueRepo()
	events := newFakeEventRepo()
	locations := newFakeLocationRepo()
	ledger := NewLocationService(locations, venues, testLogger())
	now := func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	ledger.now = now
	svc := NewVerificationService(ledger, venues, events, testLogger())
	svc.now = now
	return &verificationFixture{
		svc: svc, venues: venues, events: events, locations: locations, ledger: ledger,
		today: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
}

func (f *verificationFixture) seedGeoVenue(t *testing.T, name string, lat, lon, rangeMeters float64) *entity.Venue {
	t.Helper()
	v := &entity.Venue{Name: name, Latitude: lat, Longitude: lon, RangeMeters: rangeMeters}
	if err := f.venues.Create(context.Background(), v); err != nil {
		t.Fatalf("seed venue: %v", err)
	}
	return v
}

func (f *verificationFixture) seedDayEvent(t *testing.T, name, venueID string, day time.Time) *entity.Event {
	t.Helper()
	e := &entity.Event{Name: name, Date: day, VenueID: venueID, Visible: true}
	if err := f.events.Create(context.Background(), e); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return e
}

func (f *verificationFixture) assignToday(t *testing.T, userID, venueID string) {
	t.Helper()
	if _, err := f.ledger.Assign(context.Background(), userID, venueID, f.today, ""); err != nil {
		t.Fatalf("assign: %v", err)
	}
}

func TestVerifyAtAssignedVenue(t *testing.T) {
	f := newVerificationFixture(t)
	v := f.seedGeoVenue(t, "Main Hall", centerLat, centerLon, 50)
	f.assignToday(t, "u1", v.ID)

	res := f.svc.Verify(context.Background(), "u1", centerLat, centerLon)
	if res.Status != StatusVerified {
		t.Fatalf("status = %q, want %q (%s)", res.Status, StatusVerified, res.Message)
	}
	if !res.Success {
		t.Error("Success = false, want true")
	}
}

func TestVerifyJustOutsideRange(t *testing.T) {
	f := newVerificationFixture(t)
	v := f.seedGeoVenue(t, "Main Hall", centerLat, centerLon, 50)
	f.assignToday(t, "u1", v.ID)

	// About 111 meters north of the centroid, outside the 50m fence.
	res := f.svc.Verify(context.Background(), "u1", centerLat+0.001, centerLon)
	if res.Status != StatusOutOfBounds {
		t.Fatalf("status = %q, want %q (%s)", res.Status, StatusOutOfBounds, res.Message)
	}
	if res.Success {
		t.Error("Success = true, want false")
	}
}

func TestVerifyRelocatedToAnotherEventVenue(t *testing.T) {
	f := newVerificationFixture(t)
	assigned := f.seedGeoVenue(t, "Main Hall", centerLat, centerLon, 50)
	other := f.seedGeoVenue(t, "Annex", centerLat+0.01, centerLon, 50)
	f.seedDayEvent(t, "Workshop", other.ID, f.today)
	f.assignToday(t, "u1", assigned.ID)

	res := f.svc.Verify(context.Background(), "u1", other.Latitude, other.Longitude)
	if res.Status != StatusRelocated {
		t.Fatalf("status = %q, want %q (%s)", res.Status, StatusRelocated, res.Message)
	}
	if res.NearestVenueID != other.ID {
		t.Errorf("nearest venue = %q, want %q", res.NearestVenueID, other.ID)
	}
}

func TestVerifyOutOfBoundsNamesNearestEventVenue(t *testing.T) {
	f := newVerificationFixture(t)
	assigned := f.seedGeoVenue(t, "Main Hall", centerLat, centerLon, 50)
	near := f.seedGeoVenue(t, "Annex", centerLat+0.01, centerLon, 50)
	far := f.seedGeoVenue(t, "Stadium", centerLat+0.05, centerLon, 50)
	f.seedDayEvent(t, "Workshop", near.ID, f.today)
	f.seedDayEvent(t, "Finals", far.ID, f.today)
	f.assignToday(t, "u1", assigned.ID)

	// Between the venues, in range of none.
	res := f.svc.Verify(context.Background(), "u1", centerLat+0.005, centerLon)
	if res.Status != StatusOutOfBounds {
		t.Fatalf("status = %q, want %q (%s)", res.Status, StatusOutOfBounds, res.Message)
	}
	if res.NearestVenueID != near.ID {
		t.Errorf("nearest venue = %q, want %q", res.NearestVenueID, near.ID)
	}
	if res.DistanceMeters <= 0 {
		t.Errorf("distance = %v, want > 0", res.DistanceMeters)
	}
}

func TestVerifyRelocationIgnoresVenuesWithoutEventsToday(t *testing.T) {
	f := newVerificationFixture(t)
	assigned := f.seedGeoVenue(t, "Main Hall", centerLat, centerLon, 50)
	idle := f.seedGeoVenue(t, "Annex", centerLat+0.01, centerLon, 50)
	tomorrow := f.today.Add(24 * time.Hour)
	f.seedDayEvent(t, "Workshop", idle.ID, tomorrow)
	f.assignToday(t, "u1", assigned.ID)

	res := f.svc.Verify(context.Background(), "u1", idle.Latitude, idle.Longitude)
	if res.Status != StatusOutOfBounds {
		t.Fatalf("status = %q, want %q (%s)", res.Status, StatusOutOfBounds, res.Message)
	}
	if res.NearestVenueID != "" {
		t.Errorf("nearest venue = %q, want none", res.NearestVenueID)
	}
}

func TestVerifyUnassignedNearEventVenue(t *testing.T) {
	f := newVerificationFixture(t)
	v := f.seedGeoVenue(t, "Main Hall", centerLat, centerLon, 50)
	f.seedDayEvent(t, "Workshop", v.ID, f.today)

	res := f.svc.Verify(context.Background(), "u1", centerLat, centerLon)
	if res.Status != StatusUnregisteredNearby {
		t.Fatalf("status = %q, want %q (%s)", res.Status, StatusUnregisteredNearby, res.Message)
	}
	if res.NearestVenueID != v.ID {
		t.Errorf("nearest venue = %q, want %q", res.NearestVenueID, v.ID)
	}
}

func TestVerifyCountsEventsWithTimeOfDayDates(t *testing.T) {
	f := newVerificationFixture(t)
	assigned := f.seedGeoVenue(t, "Main Hall", centerLat, centerLon, 50)
	other := f.seedGeoVenue(t, "Annex", centerLat+0.01, centerLon, 50)
	// Stored dates are not necessarily midnight; a morning timestamp still
	// places the event on today's calendar day.
	f.seedDayEvent(t, "Workshop", other.ID, f.today.Add(9*time.Hour))
	f.assignToday(t, "u1", assigned.ID)

	res := f.svc.Verify(context.Background(), "u1", centerLat+0.01, centerLon)
	if res.Status != StatusRelocated {
		t.Fatalf("status = %q, want %q (%s)", res.Status, StatusRelocated, res.Message)
	}
	if res.NearestVenueID != other.ID {
		t.Errorf("nearest venue = %q, want %q", res.NearestVenueID, other.ID)
	}
}

func TestVerifyUnassignedNoEventAtNearest(t *testing.T) {
	f := newVerificationFixture(t)
	near := f.seedGeoVenue(t, "Main Hall", centerLat, centerLon, 50)
	far := f.seedGeoVenue(t, "Stadium", centerLat+0.05, centerLon, 50)
	f.seedDayEvent(t, "Finals", far.ID, f.today)

	res := f.svc.Verify(context.Background(), "u1", centerLat, centerLon)
	if res.Status != StatusNoEventAtNearest {
		t.Fatalf("status = %q, want %q (%s)", res.Status, StatusNoEventAtNearest, res.Message)
	}
	if res.NearestVenueID != near.ID {
		t.Errorf("nearest venue = %q, want %q", res.NearestVenueID, near.ID)
	}
}

func TestVerifyUnassignedNearestHasNoRadiusCap(t *testing.T) {
	f := newVerificationFixture(t)
	// The only venue is hundreds of kilometers away; it is still the nearest.
	v := f.seedGeoVenue(t, "Remote Hall", centerLat+3, centerLon, 50)
	f.seedDayEvent(t, "Workshop", v.ID, f.today)

	res := f.svc.Verify(context.Background(), "u1", centerLat, centerLon)
	if res.Status != StatusUnregisteredNearby {
		t.Fatalf("status = %q, want %q (%s)", res.Status, StatusUnregisteredNearby, res.Message)
	}
	if res.DistanceMeters < 100_000 {
		t.Errorf("distance = %v, want hundreds of kilometers", res.DistanceMeters)
	}
}

func TestVerifyUnassignedNoVenues(t *testing.T) {
	f := newVerificationFixture(t)
	res := f.svc.Verify(context.Background(), "u1", centerLat, centerLon)
	if res.Status != StatusNoNearbyEvents {
		t.Fatalf("status = %q, want %q (%s)", res.Status, StatusNoNearbyEvents, res.Message)
	}
}

func TestVerifyStoreFailureReturnsErrorStatus(t *testing.T) {
	f := newVerificationFixture(t)
	f.venues.listErr = errors.New("connection refused")

	res := f.svc.Verify(context.Background(), "u1", centerLat, centerLon)
	if res.Status != StatusError {
		t.Fatalf("status = %q, want %q", res.Status, StatusError)
	}
	if res.Success {
		t.Error("Success = true, want false")
	}
}

func TestVerifyLogsSampleEvenOnFailure(t *testing.T) {
	f := newVerificationFixture(t)
	f.venues.listErr = errors.New("connection refused")

	f.svc.Verify(context.Background(), "u1", centerLat, centerLon)
	if len(f.locations.logs) != 1 {
		t.Fatalf("%d samples logged, want 1", len(f.locations.logs))
	}
	l := f.locations.logs[0]
	if l.UserID != "u1" || l.Latitude != centerLat || l.Longitude != centerLon {
		t.Errorf("logged sample = %+v", l)
	}
}

func TestVerifyLogFailureDoesNotChangeOutcome(t *testing.T) {
	f := newVerificationFixture(t)
	v := f.seedGeoVenue(t, "Main Hall", centerLat, centerLon, 50)
	f.assignToday(t, "u1", v.ID)
	f.locations.logErr = errors.New("disk full")

	res := f.svc.Verify(context.Background(), "u1", centerLat, centerLon)
	if res.Status != StatusVerified {
		t.Fatalf("status = %q, want %q", res.Status, StatusVerified)
	}
}
