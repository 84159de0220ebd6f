package application

import (
	"context"
	"testing"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/internal/domain/entity"
)

type hostFixture struct {
	svc    *HostService
	hosts  *fakeHostRepo
	users  *fakeUserRepo
	venues *fakeVenueRepo
}

func newHostFixture(t *testing.T) *hostFixture {
	t.Helper()
	hosts := newFakeHostRepo()
	users := newFakeUserRepo()
	venues := newFakeVenueRepo()
	return &hostFixture{svc: NewHostService(hosts, users, venues, testLogger()), hosts: hosts, users: users, venues: venues}
}

func (f *hostFixture) seedHost(t *testing.T, name string, members ...string) *entity.Host {
	t.Helper()
	v := seedVenue(t, f.venues, name+" HQ")
	h := &entity.Host{Name: name, VenueID: v.ID, Members: members}
	if err := f.hosts.Create(context.Background(), h); err != nil {
		t.Fatalf("seed host: %v", err)
	}
	return h
}

func (f *hostFixture) seedUser(t *testing.T, id, hostID string, role entity.Role) *entity.User {
	t.Helper()
	u := &entity.User{ID: id, Fullname: "Member " + id, Email: id + "@example.com", HostID: hostID, Role: role}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestAddMember(t *testing.T) {
	f := newHostFixture(t)
	h := f.seedHost(t, "Acme Events")
	f.seedUser(t, "u1", "", entity.RoleUser)

	res, err := f.svc.AddMember(context.Background(), h.ID, "u1", entity.RoleOrganiser)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if !res.Host.HasMember("u1") {
		t.Error("user missing from host members")
	}
	if res.User.HostID != h.ID {
		t.Errorf("user host = %q, want %q", res.User.HostID, h.ID)
	}
	if res.User.Role != entity.RoleOrganiser {
		t.Errorf("user role = %q, want organiser", res.User.Role)
	}

	stored, _ := f.users.GetByID(context.Background(), "u1")
	if stored.HostID != h.ID {
		t.Errorf("persisted host = %q, want %q", stored.HostID, h.ID)
	}
}

func TestAddMemberRejectsNonMemberRole(t *testing.T) {
	f := newHostFixture(t)
	h := f.seedHost(t, "Acme Events")
	f.seedUser(t, "u1", "", entity.RoleUser)

	for _, role := range []entity.Role{entity.RoleUser, entity.RoleAdmin, entity.Role("janitor")} {
		if _, err := f.svc.AddMember(context.Background(), h.ID, "u1", role); !apperr.Is(err, apperr.InvalidRole) {
			t.Errorf("role %q: err = %v, want InvalidRole", role, err)
		}
	}
}

func TestAddMemberOfAnotherHostIsRejected(t *testing.T) {
	f := newHostFixture(t)
	other := f.seedHost(t, "Other Org", "u1")
	h := f.seedHost(t, "Acme Events")
	f.seedUser(t, "u1", other.ID, entity.RoleOrganiser)

	_, err := f.svc.AddMember(context.Background(), h.ID, "u1", entity.RoleJury)
	if !apperr.Is(err, apperr.AlreadyMember) {
		t.Fatalf("err = %v, want AlreadyMember", err)
	}
	stored, _ := f.users.GetByID(context.Background(), "u1")
	if stored.HostID != other.ID {
		t.Errorf("user moved to %q, want still %q", stored.HostID, other.ID)
	}
}

func TestAddMemberSameHostIsNoOp(t *testing.T) {
	f := newHostFixture(t)
	h := f.seedHost(t, "Acme Events", "u1")
	f.seedUser(t, "u1", h.ID, entity.RoleOrganiser)

	res, err := f.svc.AddMember(context.Background(), h.ID, "u1", entity.RoleJury)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if res.User.Role != entity.RoleOrganiser {
		t.Errorf("no-op changed role to %q", res.User.Role)
	}
}

func TestRemoveMember(t *testing.T) {
	f := newHostFixture(t)
	h := f.seedHost(t, "Acme Events", "u1", "u2")
	f.seedUser(t, "u1", h.ID, entity.RoleOrganiser)

	res, err := f.svc.RemoveMember(context.Background(), h.ID, "u1")
	if err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if res.Host.HasMember("u1") {
		t.Error("user still in host members")
	}
	if res.User.HostID != "" {
		t.Errorf("user host = %q, want empty", res.User.HostID)
	}
	if res.User.Role != entity.RoleUser {
		t.Errorf("user role = %q, want user", res.User.Role)
	}
}

func TestRemoveLastMemberIsRejected(t *testing.T) {
	f := newHostFixture(t)
	h := f.seedHost(t, "Acme Events", "u1")
	f.seedUser(t, "u1", h.ID, entity.RoleHost)

	_, err := f.svc.RemoveMember(context.Background(), h.ID, "u1")
	if !apperr.Is(err, apperr.LastMember) {
		t.Fatalf("err = %v, want LastMember", err)
	}
	stored, _ := f.hosts.GetByID(context.Background(), h.ID)
	if !stored.HasMember("u1") {
		t.Error("member removed despite rejection")
	}
}

func TestRemoveUnknownUserIsNotFound(t *testing.T) {
	f := newHostFixture(t)
	h := f.seedHost(t, "Acme Events", "u1")
	f.seedUser(t, "u1", h.ID, entity.RoleHost)

	// An unknown user fails on the lookup even when the host could not
	// spare a member anyway.
	_, err := f.svc.RemoveMember(context.Background(), h.ID, "ghost")
	if !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestRemoveNonMemberIsRejected(t *testing.T) {
	f := newHostFixture(t)
	h := f.seedHost(t, "Acme Events", "u1", "u2")
	f.seedUser(t, "u3", "", entity.RoleUser)

	_, err := f.svc.RemoveMember(context.Background(), h.ID, "u3")
	if !apperr.Is(err, apperr.NotMember) {
		t.Fatalf("err = %v, want NotMember", err)
	}
}

func TestForceAddMemberMovesBetweenHosts(t *testing.T) {
	f := newHostFixture(t)
	old := f.seedHost(t, "Other Org", "u1", "u2")
	h := f.seedHost(t, "Acme Events")
	f.seedUser(t, "u1", old.ID, entity.RoleOrganiser)

	res, err := f.svc.ForceAddMember(context.Background(), h.ID, "u1", entity.RoleJury)
	if err != nil {
		t.Fatalf("ForceAddMember: %v", err)
	}
	if !res.Host.HasMember("u1") {
		t.Error("user missing from new host")
	}
	if res.User.Role != entity.RoleJury {
		t.Errorf("user role = %q, want jury", res.User.Role)
	}

	oldStored, _ := f.hosts.GetByID(context.Background(), old.ID)
	if oldStored.HasMember("u1") {
		t.Error("user still listed on old host")
	}
}

func TestUpdateMemberRoleAndSubrole(t *testing.T) {
	f := newHostFixture(t)
	h := f.seedHost(t, "Acme Events", "u1")
	f.seedUser(t, "u1", h.ID, entity.RoleOrganiser)
	ctx := context.Background()

	u, err := f.svc.UpdateMember(ctx, "u1", entity.RoleJury, entity.SubrolePoster)
	if err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	if u.Role != entity.RoleJury || u.Subrole != entity.SubrolePoster {
		t.Errorf("role/subrole = %q/%q, want jury/poster", u.Role, u.Subrole)
	}

	if _, err := f.svc.UpdateMember(ctx, "u1", entity.RoleAdmin, ""); !apperr.Is(err, apperr.InvalidRole) {
		t.Errorf("err = %v, want InvalidRole", err)
	}
	if _, err := f.svc.UpdateMember(ctx, "u1", "", entity.Subrole("owner")); !apperr.Is(err, apperr.ValidationError) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestCreateOrUpdateHostValidation(t *testing.T) {
	f := newHostFixture(t)
	v := seedVenue(t, f.venues, "HQ")
	ctx := context.Background()

	if _, err := f.svc.CreateOrUpdateHost(ctx, &entity.Host{VenueID: v.ID}); !apperr.Is(err, apperr.ValidationError) {
		t.Errorf("missing name: err = %v, want ValidationError", err)
	}
	if _, err := f.svc.CreateOrUpdateHost(ctx, &entity.Host{Name: "Acme"}); !apperr.Is(err, apperr.ValidationError) {
		t.Errorf("missing venue: err = %v, want ValidationError", err)
	}
	if _, err := f.svc.CreateOrUpdateHost(ctx, &entity.Host{Name: "Acme", VenueID: "venue-999"}); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("unknown venue: err = %v, want NotFound", err)
	}

	h, err := f.svc.CreateOrUpdateHost(ctx, &entity.Host{Name: "Acme", VenueID: v.ID})
	if err != nil {
		t.Fatalf("create host: %v", err)
	}
	if h.ID == "" {
		t.Error("created host has no id")
	}
}
