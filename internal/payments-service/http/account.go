package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/cache"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/dto"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/repo"
	"github.com/radieske/ovo-banking-gateway/internal/shared/auth"
	"github.com/radieske/ovo-banking-gateway/internal/shared/money"
	"github.com/radieske/ovo-banking-gateway/internal/shared/validate"
	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

func limit(r *http.Request, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func (s *Server) wallet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil && sess == nil {
		s.internalError(w, "load session", err)
		return
	}
	snap := sess.Snapshot()
	if snap.Notifications == nil {
		snap.Notifications = []events.Notification{}
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{
		UserID:        snap.UserID,
		BalanceKobo:   snap.BalanceKobo,
		Balance:       money.FormatNaira(money.FromKobo(snap.BalanceKobo)),
		Stale:         snap.Stale,
		Notifications: snap.Notifications,
		UpdatedAt:     snap.UpdatedAt,
	})
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	unread := r.URL.Query().Get("unread") == "true"
	ns, err := s.Store.ListNotifications(r.Context(), auth.UserID(r.Context()), limit(r, 50, 200), unread)
	if err != nil {
		s.internalError(w, "list notifications", err)
		return
	}
	if ns == nil {
		ns = []repo.Notification{}
	}
	writeJSON(w, http.StatusOK, ns)
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	req := dto.MarkReadRequest{IDs: []string{chi.URLParam(r, "id")}}
	if err := validate.Struct(req); err != nil {
		badRequest(w, err)
		return
	}
	n, err := s.Store.MarkNotificationsRead(r.Context(), auth.UserID(r.Context()), req.IDs)
	if err != nil {
		s.internalError(w, "mark notification read", err)
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Notification not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": n})
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.Store.MarkNotificationsRead(r.Context(), auth.UserID(r.Context()), nil)
	if err != nil {
		s.internalError(w, "mark notifications read", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": n})
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := s.Prefs.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.internalError(w, "load preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) putPreferences(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid JSON body"})
		return
	}
	uid := auth.UserID(r.Context())
	if err := s.Prefs.Set(r.Context(), uid, values); errors.Is(err, cache.ErrInvalidPreference) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	} else if err != nil {
		s.internalError(w, "save preferences", err)
		return
	}
	s.getPreferences(w, r)
}
