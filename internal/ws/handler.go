package ws

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"fitsocial/internal/domain"
	"fitsocial/internal/security"
	"fitsocial/internal/service"
)

const errorWriteTimeout = 5 * time.Second

type wsAuthError struct {
	status int
	msg    string
}

func (e wsAuthError) Error() string {
	return e.msg
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractTokenFromWSRequest(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		if token != "" {
			return token, nil
		}
	}

	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			token := parts[1]
			if token != "" {
				return token, nil
			}
		}
	}

	return "", wsAuthError{status: http.StatusUnauthorized, msg: "missing bearer token"}
}

// MakeHandler returns the HTTP handler for the /ws endpoint.
// Authenticates via Bearer token (Authorization header or Sec-WebSocket-Protocol),
// then dispatches inbound events:
//   - enter_channel  -> register the connection under the caller's channel
//   - send_message   -> route a direct message (persist, push to both parties)
//   - mark_read      -> flip a sender's messages to read, push unread_count
//
// Outbound events pushed through the hub: new_message, new_notification,
// unread_count, error.
func MakeHandler(
	hub *Hub,
	tokens *security.TokenService,
	users domain.UserRepository,
	msgSvc *service.MessageService,
	unread *service.UnreadService,
	allowedOrigins []string,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
		Subprotocols: []string{
			"bearer",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		tokenStr, err := extractTokenFromWSRequest(r)
		if err != nil {
			if authErr, ok := err.(wsAuthError); ok {
				http.Error(w, authErr.msg, authErr.status)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		userID, err := tokens.ParseUserID(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, err := users.GetByID(ctx, userID)
		if err != nil || user == nil || !user.IsActive {
			http.Error(w, "user not found or inactive", http.StatusUnauthorized)
			return
		}

		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(raw)
		defer conn.Close()

		registered := false
		defer func() {
			if registered {
				hub.Unregister(conn)
			}
		}()

		for {
			var payload map[string]any
			if err := conn.ReadEvent(&payload); err != nil {
				break
			}
			eventType, _ := payload["type"].(string)
			switch eventType {

			case "enter_channel":
				idf, _ := payload["user_id"].(float64)
				if int64(idf) != user.ID {
					sendError(conn, "enter_channel user does not match token")
					continue
				}
				hub.Register(user.ID, conn)
				registered = true
				// The in-memory counter is a cache; after a connection gap
				// it is rebuilt from the store before being trusted.
				total, err := unread.Recompute(ctx, user.ID)
				if err != nil {
					log.Printf("ws: recompute unread for %d: %v", user.ID, err)
					continue
				}
				hub.Push(user.ID, service.NewUnreadCountEvent(total))

			case "send_message":
				if !registered {
					sendError(conn, "enter_channel required before sending")
					continue
				}
				recipientf, _ := payload["recipient_id"].(float64)
				content, _ := payload["content"].(string)
				attachmentKind, _ := payload["attachment_kind"].(string)
				attachmentURL, _ := payload["attachment_url"].(string)
				attachmentName, _ := payload["attachment_name"].(string)
				clientTag, _ := payload["client_tag"].(string)

				_, err := msgSvc.Send(ctx, service.SendInput{
					SenderID:       user.ID,
					RecipientID:    int64(recipientf),
					Content:        content,
					AttachmentKind: attachmentKind,
					AttachmentURL:  attachmentURL,
					AttachmentName: attachmentName,
					ClientTag:      clientTag,
				})
				if err != nil {
					log.Printf("ws: send message from %d: %v", user.ID, err)
					sendError(conn, sendFailureMessage(err))
					continue
				}

			case "mark_read":
				if !registered {
					sendError(conn, "enter_channel required before sending")
					continue
				}
				senderf, _ := payload["sender_id"].(float64)
				if senderf == 0 {
					continue
				}
				if err := msgSvc.MarkRead(ctx, user.ID, int64(senderf)); err != nil {
					log.Printf("ws: mark_read for %d: %v", user.ID, err)
					sendError(conn, "failed to mark messages as read")
					continue
				}

			default:
				log.Printf("ws: unknown event type %q from user %d", eventType, user.ID)
			}
		}
	}
}

func sendFailureMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidPayload) {
		return err.Error()
	}
	return "failed to send message"
}

func sendError(conn *Conn, msg string) {
	_ = conn.WriteEvent(map[string]any{
		"type":    "error",
		"message": msg,
	}, errorWriteTimeout)
}
