package httpserver

import (
	"encoding/json"
	"net/http"

	"fitsocial/internal/service"
)

// domainEventRequest is the body posted by the CRUD layer when a social
// action happens. The acting user is always the authenticated caller.
type domainEventRequest struct {
	OwnerID int64 `json:"owner_id"`
	RefID   int64 `json:"ref_id"`
}

func decodeDomainEvent(w http.ResponseWriter, r *http.Request) (actorID int64, req domainEventRequest, ok bool) {
	currentUser := CurrentUser(r)
	if currentUser == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return 0, req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return 0, req, false
	}
	if req.OwnerID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "owner_id is required"})
		return 0, req, false
	}
	return currentUser.ID, req, true
}

func handleLikeEvent(notifier *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, req, ok := decodeDomainEvent(w, r)
		if !ok {
			return
		}
		if err := notifier.PostLiked(r.Context(), actorID, req.OwnerID, req.RefID); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	}
}

func handleCommentEvent(notifier *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, req, ok := decodeDomainEvent(w, r)
		if !ok {
			return
		}
		if err := notifier.CommentAdded(r.Context(), actorID, req.OwnerID, req.RefID); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	}
}

func handleShareEvent(notifier *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, req, ok := decodeDomainEvent(w, r)
		if !ok {
			return
		}
		if err := notifier.PostShared(r.Context(), actorID, req.OwnerID, req.RefID); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	}
}

// handleFollowEvent notifies the followed user and re-evaluates their
// follower achievements (Social, Influencer).
func handleFollowEvent(notifier *service.NotificationService, achievements *service.AchievementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, req, ok := decodeDomainEvent(w, r)
		if !ok {
			return
		}
		if err := notifier.UserFollowed(r.Context(), actorID, req.OwnerID); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		achievements.Trigger(req.OwnerID)
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	}
}

func handleRoutineSavedEvent(notifier *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, req, ok := decodeDomainEvent(w, r)
		if !ok {
			return
		}
		if err := notifier.RoutineSaved(r.Context(), actorID, req.OwnerID, req.RefID); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	}
}

// handleContentCreatedEvent covers post-created and routine-created. The
// achievement evaluation is fire-and-forget: the trigger enqueues and the
// request returns immediately.
func handleContentCreatedEvent(achievements *service.AchievementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		achievements.Trigger(currentUser.ID)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
	}
}
