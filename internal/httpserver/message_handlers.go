package httpserver

import (
	"encoding/json"
	"net/http"

	"fitsocial/internal/service"
)

func handleMessageUnreadCount(unread *service.UnreadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		// REST callers arrive after arbitrary gaps, so the cache is always
		// reconciled against the store first.
		total, err := unread.Recompute(r.Context(), currentUser.ID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"unread": total})
	}
}

type markReadRequest struct {
	FromID int64 `json:"from_id"`
}

func handleMarkMessagesRead(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req markReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FromID == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from_id is required"})
			return
		}
		if err := msgSvc.MarkRead(r.Context(), currentUser.ID, req.FromID); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
