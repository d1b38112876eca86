package domain

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxCommunityNameLength        = 100
	MaxCommunityDescriptionLength = 500
)

type MemberRole string

const (
	MemberRoleMember    MemberRole = "member"
	MemberRoleModerator MemberRole = "moderator"
	MemberRoleAdmin     MemberRole = "admin"
)

type JoinRequestStatus string

const (
	JoinRequestStatusPending  JoinRequestStatus = "pending"
	JoinRequestStatusApproved JoinRequestStatus = "approved"
	JoinRequestStatusRejected JoinRequestStatus = "rejected"
)

type JoinAction string

const (
	JoinActionApprove JoinAction = "approve"
	JoinActionReject  JoinAction = "reject"
)

// DefaultAllowedRoles applies when a community is created without an explicit list.
var DefaultAllowedRoles = []Role{RoleCompany, RoleTransporter, RoleFreightForwarder}

type Member struct {
	UserID   uuid.UUID  `json:"user"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joinedAt"`
}

type JoinRequest struct {
	ID          uuid.UUID         `json:"id"`
	CommunityID uuid.UUID         `json:"community"`
	UserID      uuid.UUID         `json:"user"`
	Name        string            `json:"name"`
	Role        Role              `json:"role"`
	Reason      string            `json:"reason"`
	Status      JoinRequestStatus `json:"status"`
	RequestedAt time.Time         `json:"requestedAt"`
	ReviewedBy  *uuid.UUID        `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time        `json:"reviewedAt,omitempty"`
}

// Community is an aggregate root. Members and JoinRequests are owned by it
// and only change through its methods.
type Community struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	CreatedBy    uuid.UUID     `json:"createdBy"`
	IsPublic     bool          `json:"isPublic"`
	AllowedRoles []Role        `json:"allowedRoles"`
	Rules        []string      `json:"rules,omitempty"`
	Avatar       string        `json:"avatar,omitempty"`
	Banner       string        `json:"banner,omitempty"`
	Members      []Member      `json:"members"`
	JoinRequests []JoinRequest `json:"joinRequests,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type CommunityInput struct {
	Name         string
	Description  string
	IsPublic     *bool
	AllowedRoles []Role
	Rules        []string
	Avatar       string
	Banner       string
}

func (in CommunityInput) Validate() error {
	var fe fieldErrors
	name := strings.TrimSpace(in.Name)
	fe.check(name != "" && utf8.RuneCountInString(name) <= MaxCommunityNameLength, "name")
	fe.check(utf8.RuneCountInString(in.Description) <= MaxCommunityDescriptionLength, "description")
	for _, r := range in.AllowedRoles {
		if !r.Valid() {
			fe = append(fe, "allowedRoles")
			break
		}
	}
	return fe.err()
}

// NewCommunity enrolls the creator as the first admin member.
func NewCommunity(creator Actor, in CommunityInput, now time.Time) *Community {
	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	allowed := in.AllowedRoles
	if len(allowed) == 0 {
		allowed = slices.Clone(DefaultAllowedRoles)
	}
	return &Community{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		CreatedBy:    creator.ID,
		IsPublic:     isPublic,
		AllowedRoles: allowed,
		Rules:        in.Rules,
		Avatar:       in.Avatar,
		Banner:       in.Banner,
		Members:      []Member{{UserID: creator.ID, Role: MemberRoleAdmin, JoinedAt: now}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (c *Community) Member(userID uuid.UUID) *Member {
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			return &c.Members[i]
		}
	}
	return nil
}

func (c *Community) IsMember(userID uuid.UUID) bool {
	return c.Member(userID) != nil
}

func (c *Community) IsAdmin(userID uuid.UUID) bool {
	m := c.Member(userID)
	return m != nil && m.Role == MemberRoleAdmin
}

func (c *Community) AllowsRole(role Role) bool {
	return slices.Contains(c.AllowedRoles, role)
}

// CanView is the visibility rule shared by list and getOne.
func (c *Community) CanView(actor Actor) bool {
	return c.IsPublic || c.IsMember(actor.ID) || c.AllowsRole(actor.Role)
}

func (c *Community) Admins() []uuid.UUID {
	var ids []uuid.UUID
	for _, m := range c.Members {
		if m.Role == MemberRoleAdmin {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

func (c *Community) PendingRequest(userID uuid.UUID) *JoinRequest {
	for i := range c.JoinRequests {
		jr := &c.JoinRequests[i]
		if jr.UserID == userID && jr.Status == JoinRequestStatusPending {
			return jr
		}
	}
	return nil
}

func (c *Community) JoinRequest(id uuid.UUID) *JoinRequest {
	for i := range c.JoinRequests {
		if c.JoinRequests[i].ID == id {
			return &c.JoinRequests[i]
		}
	}
	return nil
}

func (c *Community) addMember(userID uuid.UUID, now time.Time) {
	if c.IsMember(userID) {
		return
	}
	c.Members = append(c.Members, Member{UserID: userID, Role: MemberRoleMember, JoinedAt: now})
}

func (c *Community) Join(actor Actor, now time.Time) error {
	if c.IsMember(actor.ID) {
		return Conflict("already a member of this community")
	}
	if !c.AllowsRole(actor.Role) {
		return Forbidden("your role is not allowed to join this community")
	}
	if c.PendingRequest(actor.ID) != nil {
		return Conflict("a join request is already pending")
	}
	c.addMember(actor.ID, now)
	c.UpdatedAt = now
	return nil
}

type JoinRequestInput struct {
	Name   string
	Role   Role
	Reason string
}

func (in JoinRequestInput) Validate() error {
	var fe fieldErrors
	fe.check(strings.TrimSpace(in.Name) != "", "name")
	fe.check(in.Role.Valid(), "role")
	fe.check(strings.TrimSpace(in.Reason) != "", "reason")
	return fe.err()
}

func (c *Community) RequestJoin(actor Actor, in JoinRequestInput, now time.Time) (*JoinRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if c.IsMember(actor.ID) {
		return nil, Conflict("already a member of this community")
	}
	if c.PendingRequest(actor.ID) != nil {
		return nil, Conflict("a join request is already pending")
	}
	c.JoinRequests = append(c.JoinRequests, JoinRequest{
		ID:          uuid.New(),
		CommunityID: c.ID,
		UserID:      actor.ID,
		Name:        strings.TrimSpace(in.Name),
		Role:        in.Role,
		Reason:      strings.TrimSpace(in.Reason),
		Status:      JoinRequestStatusPending,
		RequestedAt: now,
	})
	c.UpdatedAt = now
	jr := c.JoinRequests[len(c.JoinRequests)-1]
	return &jr, nil
}

// ProcessJoinRequest resolves a pending request. Approving adds the
// requester as a member unless already present.
func (c *Community) ProcessJoinRequest(actor Actor, requestID uuid.UUID, action JoinAction, now time.Time) (*JoinRequest, error) {
	if action != JoinActionApprove && action != JoinActionReject {
		return nil, BadRequest("action must be approve or reject")
	}
	if !c.IsAdmin(actor.ID) {
		return nil, Forbidden("only community admins can process join requests")
	}
	jr := c.JoinRequest(requestID)
	if jr == nil {
		return nil, NotFound("join request not found")
	}
	if jr.Status != JoinRequestStatusPending {
		return nil, Conflict("join request already processed")
	}
	if action == JoinActionApprove {
		jr.Status = JoinRequestStatusApproved
		c.addMember(jr.UserID, now)
	} else {
		jr.Status = JoinRequestStatusRejected
	}
	reviewer, at := actor.ID, now
	jr.ReviewedBy = &reviewer
	jr.ReviewedAt = &at
	c.UpdatedAt = now
	out := *jr
	return &out, nil
}

func (c *Community) Leave(actor Actor, now time.Time) error {
	m := c.Member(actor.ID)
	if m == nil {
		return NotFound("not a member of this community")
	}
	if m.Role == MemberRoleAdmin {
		return Conflict("admins cannot leave the community")
	}
	c.Members = slices.DeleteFunc(c.Members, func(m Member) bool { return m.UserID == actor.ID })
	c.UpdatedAt = now
	return nil
}

// Validate checks the aggregate invariants. Repositories call it before
// committing any mutation.
func (c *Community) Validate() error {
	if !c.IsAdmin(c.CreatedBy) {
		return Conflict("community creator must remain an admin member")
	}
	seen := make(map[uuid.UUID]bool, len(c.Members))
	for _, m := range c.Members {
		if seen[m.UserID] {
			return Conflict("duplicate community member")
		}
		seen[m.UserID] = true
	}
	pending := make(map[uuid.UUID]bool)
	for _, jr := range c.JoinRequests {
		if jr.Status != JoinRequestStatusPending {
			continue
		}
		if pending[jr.UserID] {
			return Conflict("more than one pending join request for a user")
		}
		if seen[jr.UserID] {
			return Conflict("member holds a pending join request")
		}
		pending[jr.UserID] = true
	}
	return nil
}

// Clone returns a deep copy of the aggregate.
func (c *Community) Clone() *Community {
	out := *c
	out.AllowedRoles = slices.Clone(c.AllowedRoles)
	out.Rules = slices.Clone(c.Rules)
	out.Members = slices.Clone(c.Members)
	out.JoinRequests = make([]JoinRequest, len(c.JoinRequests))
	for i, jr := range c.JoinRequests {
		if jr.ReviewedBy != nil {
			by := *jr.ReviewedBy
			jr.ReviewedBy = &by
		}
		if jr.ReviewedAt != nil {
			at := *jr.ReviewedAt
			jr.ReviewedAt = &at
		}
		out.JoinRequests[i] = jr
	}
	return &out
}

// PendingRequests returns pending join requests, oldest first.
func (c *Community) PendingRequests() []JoinRequest {
	var out []JoinRequest
	for _, jr := range c.JoinRequests {
		if jr.Status == JoinRequestStatusPending {
			out = append(out, jr)
		}
	}
	return out
}
