package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActor(role Role) Actor {
	return Actor{ID: uuid.New(), Role: role}
}

func boolPtr(b bool) *bool { return &b }

func TestCommunityInput_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, CommunityInput{Name: "Road Freight North"}.Validate())
	})

	t.Run("MissingName", func(t *testing.T) {
		err := CommunityInput{Name: "   "}.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("TooLong", func(t *testing.T) {
		err := CommunityInput{
			Name:        strings.Repeat("n", MaxCommunityNameLength+1),
			Description: strings.Repeat("d", MaxCommunityDescriptionLength+1),
		}.Validate()
		var de *Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, []string{"name", "description"}, de.Fields)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		err := CommunityInput{Name: "x", AllowedRoles: []Role{"shipper"}}.Validate()
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestNewCommunity_Defaults(t *testing.T) {
	creator := newActor(RoleCompany)
	now := time.Now()
	c := NewCommunity(creator, CommunityInput{Name: " Ports "}, now)

	assert.Equal(t, "Ports", c.Name)
	assert.True(t, c.IsPublic)
	assert.Equal(t, DefaultAllowedRoles, c.AllowedRoles)
	assert.True(t, c.IsAdmin(creator.ID))
	assert.Equal(t, creator.ID, c.CreatedBy)
	assert.NoError(t, c.Validate())
}

func TestCommunity_CanView(t *testing.T) {
	creator := newActor(RoleCompany)
	c := NewCommunity(creator, CommunityInput{
		Name:         "Private",
		IsPublic:     boolPtr(false),
		AllowedRoles: []Role{RoleTransporter},
	}, time.Now())

	assert.True(t, c.CanView(creator))
	assert.True(t, c.CanView(newActor(RoleTransporter)))
	// non-member, role not allowed, private
	assert.False(t, c.CanView(newActor(RoleFreightForwarder)))
}

func TestCommunity_Join(t *testing.T) {
	creator := newActor(RoleCompany)
	c := NewCommunity(creator, CommunityInput{Name: "Hub", AllowedRoles: []Role{RoleTransporter}}, time.Now())

	t.Run("AlreadyMember", func(t *testing.T) {
		err := c.Join(creator, time.Now())
		assert.True(t, errors.Is(err, ErrConflict))
	})

	t.Run("RoleNotAllowed", func(t *testing.T) {
		err := c.Join(newActor(RoleFreightForwarder), time.Now())
		assert.True(t, errors.Is(err, ErrForbidden))
	})

	t.Run("Success", func(t *testing.T) {
		u := newActor(RoleTransporter)
		require.NoError(t, c.Join(u, time.Now()))
		m := c.Member(u.ID)
		require.NotNil(t, m)
		assert.Equal(t, MemberRoleMember, m.Role)
		assert.NoError(t, c.Validate())
	})

	t.Run("PendingRequest", func(t *testing.T) {
		u := newActor(RoleTransporter)
		_, err := c.RequestJoin(u, JoinRequestInput{Name: "U", Role: RoleTransporter, Reason: "r"}, time.Now())
		require.NoError(t, err)
		err = c.Join(u, time.Now())
		assert.True(t, errors.Is(err, ErrConflict))
	})
}

func TestCommunity_RequestJoin(t *testing.T) {
	c := NewCommunity(newActor(RoleCompany), CommunityInput{Name: "Hub"}, time.Now())
	u := newActor(RoleTransporter)

	t.Run("MissingFields", func(t *testing.T) {
		_, err := c.RequestJoin(u, JoinRequestInput{}, time.Now())
		var de *Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, KindValidation, de.Kind)
		assert.Equal(t, []string{"name", "role", "reason"}, de.Fields)
	})

	t.Run("Success", func(t *testing.T) {
		jr, err := c.RequestJoin(u, JoinRequestInput{Name: "U", Role: RoleTransporter, Reason: "fleet"}, time.Now())
		require.NoError(t, err)
		assert.Equal(t, JoinRequestStatusPending, jr.Status)
		assert.Equal(t, c.ID, jr.CommunityID)
	})

	t.Run("DuplicatePending", func(t *testing.T) {
		_, err := c.RequestJoin(u, JoinRequestInput{Name: "U", Role: RoleTransporter, Reason: "again"}, time.Now())
		assert.True(t, errors.Is(err, ErrConflict))
		assert.Len(t, c.PendingRequests(), 1)
	})
}

// Scenario B: request to join a private community, approval, re-request.
func TestCommunity_ApproveFlow(t *testing.T) {
	admin := newActor(RoleCompany)
	c := NewCommunity(admin, CommunityInput{
		Name:         "X",
		IsPublic:     boolPtr(false),
		AllowedRoles: []Role{RoleTransporter},
	}, time.Now())
	u := newActor(RoleTransporter)

	jr, err := c.RequestJoin(u, JoinRequestInput{Name: "U", Role: RoleTransporter, Reason: "fleet"}, time.Now())
	require.NoError(t, err)

	processed, err := c.ProcessJoinRequest(admin, jr.ID, JoinActionApprove, time.Now())
	require.NoError(t, err)
	assert.Equal(t, JoinRequestStatusApproved, processed.Status)
	require.NotNil(t, processed.ReviewedBy)
	assert.Equal(t, admin.ID, *processed.ReviewedBy)
	assert.NotNil(t, processed.ReviewedAt)
	assert.True(t, c.IsMember(u.ID))
	assert.NoError(t, c.Validate())

	_, err = c.RequestJoin(u, JoinRequestInput{Name: "U", Role: RoleTransporter, Reason: "again"}, time.Now())
	assert.True(t, errors.Is(err, ErrConflict))

	// second approve of the same request
	_, err = c.ProcessJoinRequest(admin, jr.ID, JoinActionApprove, time.Now())
	assert.True(t, errors.Is(err, ErrConflict))
	count := 0
	for _, m := range c.Members {
		if m.UserID == u.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCommunity_ProcessJoinRequest_Errors(t *testing.T) {
	admin := newActor(RoleCompany)
	c := NewCommunity(admin, CommunityInput{Name: "Hub"}, time.Now())
	u := newActor(RoleTransporter)
	jr, err := c.RequestJoin(u, JoinRequestInput{Name: "U", Role: RoleTransporter, Reason: "r"}, time.Now())
	require.NoError(t, err)

	t.Run("BadAction", func(t *testing.T) {
		_, err := c.ProcessJoinRequest(admin, jr.ID, "maybe", time.Now())
		assert.True(t, errors.Is(err, ErrBadRequest))
	})

	t.Run("NotAdmin", func(t *testing.T) {
		_, err := c.ProcessJoinRequest(u, jr.ID, JoinActionApprove, time.Now())
		assert.True(t, errors.Is(err, ErrForbidden))
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		_, err := c.ProcessJoinRequest(admin, uuid.New(), JoinActionApprove, time.Now())
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("Reject", func(t *testing.T) {
		out, err := c.ProcessJoinRequest(admin, jr.ID, JoinActionReject, time.Now())
		require.NoError(t, err)
		assert.Equal(t, JoinRequestStatusRejected, out.Status)
		assert.False(t, c.IsMember(u.ID))
	})
}

// Approving when the requester is somehow already on the roster must not duplicate them.
func TestCommunity_ApproveIdempotentMemberAdd(t *testing.T) {
	admin := newActor(RoleCompany)
	c := NewCommunity(admin, CommunityInput{Name: "Hub"}, time.Now())
	u := newActor(RoleTransporter)
	jr, err := c.RequestJoin(u, JoinRequestInput{Name: "U", Role: RoleTransporter, Reason: "r"}, time.Now())
	require.NoError(t, err)
	c.Members = append(c.Members, Member{UserID: u.ID, Role: MemberRoleMember, JoinedAt: time.Now()})

	_, err = c.ProcessJoinRequest(admin, jr.ID, JoinActionApprove, time.Now())
	require.NoError(t, err)
	assert.Len(t, c.Members, 2)
}

func TestCommunity_Leave(t *testing.T) {
	admin := newActor(RoleCompany)
	c := NewCommunity(admin, CommunityInput{Name: "Y"}, time.Now())

	t.Run("AdminCannotLeave", func(t *testing.T) {
		err := c.Leave(admin, time.Now())
		assert.True(t, errors.Is(err, ErrConflict))
		assert.Len(t, c.Members, 1)
	})

	t.Run("NotMember", func(t *testing.T) {
		err := c.Leave(newActor(RoleTransporter), time.Now())
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("Success", func(t *testing.T) {
		u := newActor(RoleTransporter)
		require.NoError(t, c.Join(u, time.Now()))
		require.NoError(t, c.Leave(u, time.Now()))
		assert.False(t, c.IsMember(u.ID))
	})
}

func TestCommunity_Validate(t *testing.T) {
	admin := newActor(RoleCompany)

	t.Run("CreatorDemoted", func(t *testing.T) {
		c := NewCommunity(admin, CommunityInput{Name: "Z"}, time.Now())
		c.Members[0].Role = MemberRoleMember
		assert.True(t, errors.Is(c.Validate(), ErrConflict))
	})

	t.Run("TwoPending", func(t *testing.T) {
		c := NewCommunity(admin, CommunityInput{Name: "Z"}, time.Now())
		u := uuid.New()
		c.JoinRequests = []JoinRequest{
			{ID: uuid.New(), UserID: u, Status: JoinRequestStatusPending},
			{ID: uuid.New(), UserID: u, Status: JoinRequestStatusPending},
		}
		assert.Error(t, c.Validate())
	})

	t.Run("MemberWithPending", func(t *testing.T) {
		c := NewCommunity(admin, CommunityInput{Name: "Z"}, time.Now())
		c.JoinRequests = []JoinRequest{{ID: uuid.New(), UserID: admin.ID, Status: JoinRequestStatusPending}}
		assert.Error(t, c.Validate())
	})
}
