package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"freighthub-backend/internal/domain"
)

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return domain.BadRequest("malformed request body")
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.BadRequest("request body too large")
		}
		return nil, domain.BadRequest("unreadable request body")
	}
	if len(data) == 0 {
		return nil, domain.BadRequest("request body is required")
	}
	return data, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, domain.BadRequest("invalid " + name)
	}
	return id, nil
}

// parseDate accepts RFC 3339 timestamps and plain calendar dates. Anything
// else yields the zero time so validation reports the field.
func parseDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func queryInt(r *http.Request, name string) (int32, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, domain.BadRequest("invalid " + name)
	}
	return int32(n), nil
}

type quoteRequestBody struct {
	PickupLocation    string            `json:"pickupLocation"`
	DeliveryLocation  string            `json:"deliveryLocation"`
	GoodsCategory     string            `json:"goodsCategory"`
	GoodsType         string            `json:"goodsType"`
	PackagingType     string            `json:"packagingType"`
	TotalQuantity     int               `json:"totalQuantity"`
	IsStackable       *bool             `json:"isStackable"`
	ProductDimensions domain.Dimensions `json:"productDimensions"`
	VolumetricWeight  float64           `json:"volumetricWeight"`
	PickupDate        string            `json:"pickupDate"`
	ShipmentType      string            `json:"shipmentType"`
	Contact           domain.Contact    `json:"contact"`
	Notes             string            `json:"notes"`
}

func (b quoteRequestBody) toInput() domain.QuoteRequestInput {
	return domain.QuoteRequestInput{
		PickupLocation:   b.PickupLocation,
		DeliveryLocation: b.DeliveryLocation,
		GoodsCategory:    domain.GoodsCategory(b.GoodsCategory),
		GoodsType:        domain.GoodsType(b.GoodsType),
		PackagingType:    domain.PackagingType(b.PackagingType),
		TotalQuantity:    b.TotalQuantity,
		IsStackable:      b.IsStackable,
		Dimensions:       b.ProductDimensions,
		VolumetricWeight: b.VolumetricWeight,
		PickupDate:       parseDate(b.PickupDate),
		ShipmentType:     domain.ShipmentType(b.ShipmentType),
		Contact:          b.Contact,
		Notes:            b.Notes,
	}
}

func quoteRequestFilter(r *http.Request) domain.QuoteRequestFilter {
	q := r.URL.Query()
	return domain.QuoteRequestFilter{
		GoodsCategory:    domain.GoodsCategory(q.Get("goodsCategory")),
		ShipmentType:     domain.ShipmentType(q.Get("shipmentType")),
		PickupLocation:   q.Get("pickupLocation"),
		DeliveryLocation: q.Get("deliveryLocation"),
	}
}

type quoteResponseBody struct {
	QuoteAmount           float64 `json:"quoteAmount"`
	Currency              string  `json:"currency"`
	Validity              string  `json:"validity"`
	TermsAndConditions    string  `json:"termsAndConditions"`
	Notes                 string  `json:"notes"`
	EstimatedDeliveryDays *int    `json:"estimatedDeliveryDays"`
}

func (b quoteResponseBody) toInput() domain.QuoteResponseInput {
	return domain.QuoteResponseInput{
		QuoteAmount:           b.QuoteAmount,
		Currency:              domain.Currency(b.Currency),
		Validity:              parseDate(b.Validity),
		TermsAndConditions:    b.TermsAndConditions,
		Notes:                 b.Notes,
		EstimatedDeliveryDays: b.EstimatedDeliveryDays,
	}
}

type communityBody struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	IsPublic     *bool         `json:"isPublic"`
	AllowedRoles []domain.Role `json:"allowedRoles"`
	Rules        []string      `json:"rules"`
	Avatar       string        `json:"avatar"`
	Banner       string        `json:"banner"`
}

func (b communityBody) toInput() domain.CommunityInput {
	return domain.CommunityInput{
		Name:         b.Name,
		Description:  b.Description,
		IsPublic:     b.IsPublic,
		AllowedRoles: b.AllowedRoles,
		Rules:        b.Rules,
		Avatar:       b.Avatar,
		Banner:       b.Banner,
	}
}

type joinRequestBody struct {
	Name   string      `json:"name"`
	Role   domain.Role `json:"role"`
	Reason string      `json:"reason"`
}

type processJoinRequestBody struct {
	Action domain.JoinAction `json:"action"`
}

type pushTokenBody struct {
	Token string `json:"token"`
}

// decodeProfile reads a profile body whose "kind" field selects which
// variant the remaining fields are decoded into.
func decodeProfile(w http.ResponseWriter, r *http.Request) (domain.ProfileInput, error) {
	data, err := readBody(w, r)
	if err != nil {
		return domain.ProfileInput{}, err
	}
	var head struct {
		Kind domain.Role `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return domain.ProfileInput{}, domain.BadRequest("malformed request body")
	}

	in := domain.ProfileInput{Kind: head.Kind}
	switch {
	case head.Kind == domain.RoleCompany:
		in.Company = &domain.CompanyProfile{}
		err = json.Unmarshal(data, in.Company)
	case head.Kind.IsProvider():
		in.Carrier = &domain.CarrierProfile{}
		err = json.Unmarshal(data, in.Carrier)
	case head.Kind == domain.RoleAdmin:
		in.Admin = &domain.AdminProfile{}
		err = json.Unmarshal(data, in.Admin)
	default:
		return domain.ProfileInput{}, domain.NewValidationError("kind")
	}
	if err != nil {
		return domain.ProfileInput{}, domain.BadRequest("malformed request body")
	}
	return in, nil
}

// communityFor hides join requests from everyone except community admins.
func communityFor(actor domain.Actor, c *domain.Community) *domain.Community {
	if c == nil || c.IsAdmin(actor.ID) {
		return c
	}
	view := *c
	view.JoinRequests = nil
	return &view
}
