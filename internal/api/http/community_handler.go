package http

import (
	"net/http"

	"freighthub-backend/internal/domain"
)

func (h *Handler) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body communityBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Communities.Create(r.Context(), a, body.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, payload{"community": c})
}

func (h *Handler) ListCommunities(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.svc.Communities.List(r.Context(), a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]*domain.Community, 0, len(list))
	for i := range list {
		views = append(views, communityFor(a, &list[i]))
	}
	okList(w, len(views), payload{"communities": views})
}

func (h *Handler) GetCommunity(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Communities.Get(r.Context(), a, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, payload{"community": communityFor(a, c)})
}

func (h *Handler) JoinCommunity(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Communities.Join(r.Context(), a, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okMessage(w, http.StatusOK, "Successfully joined the community", payload{"community": communityFor(a, c)})
}

func (h *Handler) LeaveCommunity(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Communities.Leave(r.Context(), a, id); err != nil {
		writeError(w, r, err)
		return
	}
	okMessage(w, http.StatusOK, "Successfully left the community", nil)
}

func (h *Handler) RequestJoin(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body joinRequestBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	jr, err := h.svc.Communities.RequestJoin(r.Context(), a, id, domain.JoinRequestInput{
		Name:   body.Name,
		Role:   body.Role,
		Reason: body.Reason,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	okMessage(w, http.StatusCreated, "Join request submitted successfully", payload{"joinRequest": jr})
}

func (h *Handler) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.svc.Communities.ListJoinRequests(r.Context(), a, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okList(w, len(list), payload{"joinRequests": list})
}

func (h *Handler) ProcessJoinRequest(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	requestID, err := pathID(r, "requestId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body processJoinRequestBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	jr, err := h.svc.Communities.ProcessJoinRequest(r.Context(), a, id, requestID, body.Action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	message := "Join request rejected"
	if jr.Status == domain.JoinRequestStatusApproved {
		message = "Join request approved"
	}
	okMessage(w, http.StatusOK, message, payload{"joinRequest": jr})
}
