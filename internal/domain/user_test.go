package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileInput_Validate(t *testing.T) {
	company := ProfileInput{Kind: RoleCompany, Company: &CompanyProfile{
		CompanyName: "Acme Logistics",
		Email:       "ops@acme.in",
		Phone:       "9876543210",
		GSTNumber:   "27AAPFU0939F1ZV",
	}}

	t.Run("Company", func(t *testing.T) {
		assert.NoError(t, company.Validate(RoleCompany))
	})

	t.Run("KindMustMatchRole", func(t *testing.T) {
		err := company.Validate(RoleTransporter)
		var de *Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, []string{"kind"}, de.Fields)
	})

	t.Run("BadGST", func(t *testing.T) {
		p := company
		c := *company.Company
		c.GSTNumber = "NOTAGST"
		p.Company = &c
		err := p.Validate(RoleCompany)
		var de *Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, []string{"gstNumber"}, de.Fields)
	})

	t.Run("CarrierNeedsLicense", func(t *testing.T) {
		p := ProfileInput{Kind: RoleTransporter, Carrier: &CarrierProfile{
			CompanyName: "Fast Trucks",
			Email:       "fleet@fast.in",
			Phone:       "9123456780",
		}}
		err := p.Validate(RoleTransporter)
		var de *Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, []string{"licenseNumber"}, de.Fields)
	})

	t.Run("MissingVariant", func(t *testing.T) {
		err := ProfileInput{Kind: RoleAdmin}.Validate(RoleAdmin)
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestProfileInput_Apply(t *testing.T) {
	u := &User{Role: RoleFreightForwarder}
	p := ProfileInput{Kind: RoleFreightForwarder, Carrier: &CarrierProfile{
		CompanyName:   "Blue Ocean",
		Email:         "desk@blue.in",
		Phone:         "9000000001",
		LicenseNumber: "FF-1",
	}}
	p.Apply(u)

	s := u.Summary()
	assert.Equal(t, "Blue Ocean", s.CompanyName)
	assert.Equal(t, "desk@blue.in", s.Email)
	assert.Equal(t, "FF-1", u.License)
}
