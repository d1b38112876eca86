package http

import (
	"net/http"
)

func (h *Handler) CreateQuoteRequest(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body quoteRequestBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	req, err := h.svc.QuoteRequests.Create(r.Context(), a, body.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, payload{"quoteRequest": req})
}

func (h *Handler) ListOpenQuoteRequests(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.svc.QuoteRequests.ListOpen(r.Context(), a, quoteRequestFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	okList(w, len(list), payload{"quoteRequests": list})
}

func (h *Handler) ListMyQuoteRequests(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.svc.QuoteRequests.ListMine(r.Context(), a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okList(w, len(list), payload{"quoteRequests": list})
}

func (h *Handler) GetQuoteRequest(w http.ResponseWriter, r *http.Request) {
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
	view, err := h.svc.QuoteRequests.Get(r.Context(), a, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, payload{"quoteRequest": view})
}

func (h *Handler) CreateQuoteResponse(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body quoteResponseBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.svc.QuoteResponses.Create(r.Context(), a, requestID, body.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, payload{"quoteResponse": resp})
}

func (h *Handler) ListQuoteResponses(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.svc.QuoteResponses.ListForRequest(r.Context(), a, requestID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okList(w, len(list), payload{"quoteResponses": list})
}

func (h *Handler) ListMyQuoteResponses(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.svc.QuoteResponses.ListMine(r.Context(), a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okList(w, len(list), payload{"quoteResponses": list})
}

func (h *Handler) AcceptQuoteResponse(w http.ResponseWriter, r *http.Request) {
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
	result, err := h.svc.QuoteResponses.Accept(r.Context(), a, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okMessage(w, http.StatusOK, "Quote response accepted successfully", payload{
		"quoteResponse": result.Accepted,
		"quoteRequest":  result.Request,
	})
}
