package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type QuoteRequestStatus string

const (
	QuoteRequestStatusOpen   QuoteRequestStatus = "open"
	QuoteRequestStatusClosed QuoteRequestStatus = "closed"
)

type GoodsCategory string

const (
	GoodsElectronics   GoodsCategory = "Electronics"
	GoodsClothing      GoodsCategory = "Clothing"
	GoodsFood          GoodsCategory = "Food"
	GoodsMachinery     GoodsCategory = "Machinery"
	GoodsChemicals     GoodsCategory = "Chemicals"
	GoodsConstruction  GoodsCategory = "Construction Materials"
	GoodsAutomotive    GoodsCategory = "Automotive"
	GoodsPharma        GoodsCategory = "Pharmaceuticals"
	GoodsFurniture     GoodsCategory = "Furniture"
	GoodsCategoryOther GoodsCategory = "Other"
)

var goodsCategories = map[GoodsCategory]bool{
	GoodsElectronics: true, GoodsClothing: true, GoodsFood: true, GoodsMachinery: true,
	GoodsChemicals: true, GoodsConstruction: true, GoodsAutomotive: true, GoodsPharma: true,
	GoodsFurniture: true, GoodsCategoryOther: true,
}

func (c GoodsCategory) Valid() bool { return goodsCategories[c] }

type GoodsType string

var goodsTypes = map[GoodsType]bool{
	"Perishable": true, "Non-Perishable": true, "Fragile": true, "Hazardous": true,
	"Temperature Controlled": true, "Oversized": true, "General": true,
}

func (t GoodsType) Valid() bool { return goodsTypes[t] }

type PackagingType string

var packagingTypes = map[PackagingType]bool{
	"Cartons": true, "Pallets": true, "Crates": true, "Drums": true,
	"Bags": true, "Loose": true, "Container": true,
}

func (p PackagingType) Valid() bool { return packagingTypes[p] }

type ShipmentType string

const (
	ShipmentRoad       ShipmentType = "Road"
	ShipmentRail       ShipmentType = "Rail"
	ShipmentAir        ShipmentType = "Air"
	ShipmentSea        ShipmentType = "Sea"
	ShipmentMultimodal ShipmentType = "Multimodal"
)

func (s ShipmentType) Valid() bool {
	switch s {
	case ShipmentRoad, ShipmentRail, ShipmentAir, ShipmentSea, ShipmentMultimodal:
		return true
	}
	return false
}

type DimensionUnit string

const (
	UnitCM   DimensionUnit = "cm"
	UnitInch DimensionUnit = "inch"
	UnitM    DimensionUnit = "m"
)

type Dimensions struct {
	Length float64       `json:"length"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Unit   DimensionUnit `json:"unit"`
}

// Volume is length x width x height in the dimension's own unit.
func (d Dimensions) Volume() float64 {
	return d.Length * d.Width * d.Height
}

type Contact struct {
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
}

type QuoteRequest struct {
	ID               uuid.UUID          `json:"id"`
	CompanyID        uuid.UUID          `json:"company"`
	PickupLocation   string             `json:"pickupLocation"`
	DeliveryLocation string             `json:"deliveryLocation"`
	GoodsCategory    GoodsCategory      `json:"goodsCategory"`
	GoodsType        GoodsType          `json:"goodsType"`
	PackagingType    PackagingType      `json:"packagingType"`
	TotalQuantity    int                `json:"totalQuantity"`
	IsStackable      bool               `json:"isStackable"`
	Dimensions       Dimensions         `json:"productDimensions"`
	Volume           float64            `json:"volume"`
	VolumetricWeight float64            `json:"volumetricWeight"`
	PickupDate       time.Time          `json:"pickupDate"`
	ShipmentType     ShipmentType       `json:"shipmentType"`
	Contact          Contact            `json:"contact"`
	Notes            string             `json:"notes,omitempty"`
	Status           QuoteRequestStatus `json:"status"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// QuoteRequestInput carries the caller-supplied fields of a new request.
type QuoteRequestInput struct {
	PickupLocation   string
	DeliveryLocation string
	GoodsCategory    GoodsCategory
	GoodsType        GoodsType
	PackagingType    PackagingType
	TotalQuantity    int
	IsStackable      *bool
	Dimensions       Dimensions
	VolumetricWeight float64
	PickupDate       time.Time
	ShipmentType     ShipmentType
	Contact          Contact
	Notes            string
}

// Validate reports every failing field at once.
func (in *QuoteRequestInput) Validate() error {
	if in.Dimensions.Unit == "" {
		in.Dimensions.Unit = UnitCM
	}
	var fe fieldErrors
	fe.check(strings.TrimSpace(in.PickupLocation) != "", "pickupLocation")
	fe.check(strings.TrimSpace(in.DeliveryLocation) != "", "deliveryLocation")
	fe.check(in.GoodsCategory.Valid(), "goodsCategory")
	fe.check(in.GoodsType.Valid(), "goodsType")
	fe.check(in.PackagingType.Valid(), "packagingType")
	fe.check(in.TotalQuantity >= 1, "totalQuantity")
	fe.check(in.IsStackable != nil, "isStackable")
	fe.check(in.Dimensions.Length > 0, "productDimensions.length")
	fe.check(in.Dimensions.Width > 0, "productDimensions.width")
	fe.check(in.Dimensions.Height > 0, "productDimensions.height")
	switch in.Dimensions.Unit {
	case UnitCM, UnitInch, UnitM:
	default:
		fe = append(fe, "productDimensions.unit")
	}
	fe.check(in.VolumetricWeight > 0, "volumetricWeight")
	fe.check(!in.PickupDate.IsZero(), "pickupDate")
	fe.check(in.ShipmentType.Valid(), "shipmentType")
	fe.check(strings.TrimSpace(in.Contact.MobileNumber) != "", "contact.mobileNumber")
	fe.check(validEmail(in.Contact.Email), "contact.email")
	return fe.err()
}

// NewQuoteRequest builds an open request owned by companyID from validated input.
func NewQuoteRequest(companyID uuid.UUID, in QuoteRequestInput, now time.Time) *QuoteRequest {
	return &QuoteRequest{
		ID:               uuid.New(),
		CompanyID:        companyID,
		PickupLocation:   strings.TrimSpace(in.PickupLocation),
		DeliveryLocation: strings.TrimSpace(in.DeliveryLocation),
		GoodsCategory:    in.GoodsCategory,
		GoodsType:        in.GoodsType,
		PackagingType:    in.PackagingType,
		TotalQuantity:    in.TotalQuantity,
		IsStackable:      *in.IsStackable,
		Dimensions:       in.Dimensions,
		Volume:           in.Dimensions.Volume(),
		VolumetricWeight: in.VolumetricWeight,
		PickupDate:       in.PickupDate,
		ShipmentType:     in.ShipmentType,
		Contact:          in.Contact,
		Notes:            in.Notes,
		Status:           QuoteRequestStatusOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (q *QuoteRequest) IsOpen() bool {
	return q.Status == QuoteRequestStatusOpen
}

// QuoteRequestFilter narrows listOpen. Empty fields match everything.
// Locations match as case-insensitive substrings.
type QuoteRequestFilter struct {
	GoodsCategory    GoodsCategory
	ShipmentType     ShipmentType
	PickupLocation   string
	DeliveryLocation string
}

func (f QuoteRequestFilter) Matches(q *QuoteRequest) bool {
	if f.GoodsCategory != "" && q.GoodsCategory != f.GoodsCategory {
		return false
	}
	if f.ShipmentType != "" && q.ShipmentType != f.ShipmentType {
		return false
	}
	if f.PickupLocation != "" && !containsFold(q.PickupLocation, f.PickupLocation) {
		return false
	}
	if f.DeliveryLocation != "" && !containsFold(q.DeliveryLocation, f.DeliveryLocation) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// QuoteRequestView is a request with its owner summary and, for the owner,
// its responses.
type QuoteRequestView struct {
	QuoteRequest
	Company   *UserSummary        `json:"companyInfo,omitempty"`
	Responses []QuoteResponseView `json:"responses,omitempty"`
}
