package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	gstPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// User is the account record owned by the identity provider; this service
// only stores the role-specific profile and delivery handles.
type User struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"companyName,omitempty"`
	GSTNumber string    `json:"gstNumber,omitempty"`
	License   string    `json:"licenseNumber,omitempty"`
	PushToken string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is the public projection embedded in quote listings.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Role        Role      `json:"role"`
	Name        string    `json:"name,omitempty"`
	CompanyName string    `json:"companyName,omitempty"`
	Email       string    `json:"email,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Role: u.Role, Name: u.Name, CompanyName: u.Company, Email: u.Email}
}

// ProfileInput is a tagged variant: exactly one of Company, Carrier or Admin
// is set, selected by Kind. Kind must equal the caller's role.
type ProfileInput struct {
	Kind    Role
	Company *CompanyProfile
	Carrier *CarrierProfile
	Admin   *AdminProfile
}

type CompanyProfile struct {
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	GSTNumber   string `json:"gstNumber"`
}

type CarrierProfile struct {
	CompanyName   string `json:"companyName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"licenseNumber"`
}

type AdminProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

// Validate checks the variant matches its discriminant and the variant's
// own required fields.
func (p ProfileInput) Validate(role Role) error {
	if p.Kind != role {
		return NewValidationError("kind")
	}
	var fe fieldErrors
	switch {
	case p.Kind == RoleCompany:
		if p.Company == nil {
			return NewValidationError("company")
		}
		c := p.Company
		fe.check(strings.TrimSpace(c.CompanyName) != "", "companyName")
		fe.check(validEmail(c.Email), "email")
		fe.check(phonePattern.MatchString(c.Phone), "phone")
		fe.check(c.GSTNumber == "" || gstPattern.MatchString(c.GSTNumber), "gstNumber")
	case p.Kind.IsProvider():
		if p.Carrier == nil {
			return NewValidationError("carrier")
		}
		c := p.Carrier
		fe.check(strings.TrimSpace(c.CompanyName) != "", "companyName")
		fe.check(validEmail(c.Email), "email")
		fe.check(phonePattern.MatchString(c.Phone), "phone")
		fe.check(strings.TrimSpace(c.LicenseNumber) != "", "licenseNumber")
	case p.Kind == RoleAdmin:
		if p.Admin == nil {
			return NewValidationError("admin")
		}
		fe.check(strings.TrimSpace(p.Admin.Name) != "", "name")
		fe.check(validEmail(p.Admin.Email), "email")
	default:
		return NewValidationError("kind")
	}
	return fe.err()
}

// Apply copies the validated variant onto the user record.
func (p ProfileInput) Apply(u *User) {
	switch {
	case p.Company != nil:
		u.Company = p.Company.CompanyName
		u.Name = p.Company.CompanyName
		u.Email = p.Company.Email
		u.Phone = p.Company.Phone
		u.GSTNumber = p.Company.GSTNumber
	case p.Carrier != nil:
		u.Company = p.Carrier.CompanyName
		u.Name = p.Carrier.CompanyName
		u.Email = p.Carrier.Email
		u.Phone = p.Carrier.Phone
		u.License = p.Carrier.LicenseNumber
	case p.Admin != nil:
		u.Name = p.Admin.Name
		u.Email = p.Admin.Email
	}
}
