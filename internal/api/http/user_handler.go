package http

import (
	"net/http"
)

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.GetProfile(r.Context(), a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, payload{"user": u})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := decodeProfile(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.UpdateProfile(r.Context(), a, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, payload{"user": u})
}

func (h *Handler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body pushTokenBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Users.RegisterPushToken(r.Context(), a, body.Token); err != nil {
		writeError(w, r, err)
		return
	}
	okMessage(w, http.StatusOK, "Push token registered", nil)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := queryInt(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "pageSize")
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, total, err := h.svc.Notifications.List(r.Context(), a, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okList(w, len(list), payload{"notifications": list, "total": total})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.Notifications.MarkAsRead(r.Context(), a, id); err != nil {
		writeError(w, r, err)
		return
	}
	okMessage(w, http.StatusOK, "Notification marked as read", nil)
}
