package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/internal/domain/entity"
	repo "github.com/venuepass/venuepass/internal/domain/repository"
)

// MemberResult carries the host and user after a membership change.
type MemberResult struct {
	Host *entity.Host `json:"host"`
	User *entity.User `json:"user"`
}

// HostService enforces single-host membership: a user belongs to at most one
// organizing host at a time.
type HostService struct {
	Hosts  repo.HostRepository
	Users  repo.UserRepository
	Venues repo.VenueRepository
	Logger *logrus.Logger
}

func NewHostService(hosts repo.HostRepository, users repo.UserRepository, venues repo.VenueRepository, logger *logrus.Logger) *HostService {
	return &HostService{Hosts: hosts, Users: users, Venues: venues, Logger: logger}
}

// AddMember attaches a user to a host with one of the member roles. A user
// already belonging to a different host is rejected; reassignment goes
// through ForceAddMember.
func (s *HostService) AddMember(ctx context.Context, hostID, userID string, role entity.Role) (*MemberResult, error) {
	if !entity.ValidMemberRole(role) {
		return nil, apperr.New(apperr.InvalidRole, "invalid role %q: must be one of host, organiser, jury", role)
	}
	host, err := s.Hosts.GetByID(ctx, hostID)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.HostID != "" {
		if user.HostID != hostID {
			return nil, apperr.New(apperr.AlreadyMember, "user is already a member of another host, ask a supervisor for help")
		}
		return &MemberResult{Host: host, User: user}, nil
	}

	if !host.HasMember(userID) {
		host.Members = append(host.Members, userID)
	}
	user.HostID = hostID
	user.Role = role

	if err := s.Hosts.Update(ctx, host); err != nil {
		return nil, err
	}
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"host_id": hostID, "user_id": userID, "role": role}).Info("member added to host")
	return &MemberResult{Host: host, User: user}, nil
}

// RemoveMember detaches a user from a host and resets their role. A host may
// not be emptied through this path.
func (s *HostService) RemoveMember(ctx context.Context, hostID, userID string) (*MemberResult, error) {
	host, err := s.Hosts.GetByID(ctx, hostID)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(host.Members) <= 1 {
		return nil, apperr.New(apperr.LastMember, "a host must keep at least one member")
	}
	if !host.HasMember(userID) && user.HostID != hostID {
		return nil, apperr.New(apperr.NotMember, "user is not a member of this host")
	}

	members := host.Members[:0]
	for _, m := range host.Members {
		if m != userID {
			members = append(members, m)
		}
	}
	host.Members = members
	user.HostID = ""
	user.Role = entity.RoleUser

	if err := s.Hosts.Update(ctx, host); err != nil {
		return nil, err
	}
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"host_id": hostID, "user_id": userID}).Info("member removed from host")
	return &MemberResult{Host: host, User: user}, nil
}

// ForceAddMember reassigns a user to a host, detaching them from their
// current host first. Administrative path without the single-host
// restriction.
func (s *HostService) ForceAddMember(ctx context.Context, hostID, userID string, role entity.Role) (*MemberResult, error) {
	if !entity.ValidMemberRole(role) {
		return nil, apperr.New(apperr.InvalidRole, "invalid role %q: must be one of host, organiser, jury", role)
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	newHost, err := s.Hosts.GetByID(ctx, hostID)
	if err != nil {
		return nil, err
	}

	if user.HostID != "" && user.HostID != hostID {
		oldHost, err := s.Hosts.GetByID(ctx, user.HostID)
		if err != nil && !apperr.Is(err, apperr.NotFound) {
			return nil, err
		}
		if oldHost != nil {
			members := oldHost.Members[:0]
			for _, m := range oldHost.Members {
				if m != userID {
					members = append(members, m)
				}
			}
			oldHost.Members = members
			if err := s.Hosts.Update(ctx, oldHost); err != nil {
				return nil, err
			}
		}
	}

	if !newHost.HasMember(userID) {
		newHost.Members = append(newHost.Members, userID)
	}
	user.HostID = hostID
	user.Role = role

	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.Hosts.Update(ctx, newHost); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"host_id": hostID, "user_id": userID, "role": role}).Info("member force-added to host")
	return &MemberResult{Host: newHost, User: user}, nil
}

// UpdateMember changes a member's role and/or subrole in place.
func (s *HostService) UpdateMember(ctx context.Context, userID string, role entity.Role, subrole entity.Subrole) (*entity.User, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role != "" {
		if !entity.ValidMemberRole(role) {
			return nil, apperr.New(apperr.InvalidRole, "invalid role %q: must be one of host, organiser, jury", role)
		}
		user.Role = role
	}
	if subrole != "" {
		if !entity.ValidSubrole(subrole) {
			return nil, apperr.New(apperr.ValidationError, "invalid subrole %q", subrole)
		}
		user.Subrole = subrole
	}
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateOrUpdateHost is the admin CRUD entry for hosts; the home venue must
// resolve.
func (s *HostService) CreateOrUpdateHost(ctx context.Context, h *entity.Host) (*entity.Host, error) {
	if h.Name == "" {
		return nil, apperr.New(apperr.ValidationError, "host name is required")
	}
	if h.VenueID == "" {
		return nil, apperr.New(apperr.ValidationError, "home venue is required")
	}
	if _, err := s.Venues.GetByID(ctx, h.VenueID); err != nil {
		return nil, err
	}
	if h.ID == "" {
		if err := s.Hosts.Create(ctx, h); err != nil {
			return nil, err
		}
		return h, nil
	}
	if err := s.Hosts.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}
