package web

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/flowdeck/flowdeck/pkg/session"
)

// maxEventWait caps how long one long-poll request may hold the connection.
const maxEventWait = 30 * time.Second

// GetEvents reads the session's event feed from a cursor. after is the last
// sequence the client has seen; wait holds the request open for up to that
// many seconds when no newer events exist yet, then answers empty. The
// returned last_seq is the cursor for the next poll.
func (h *APIHandlers) GetEvents(c fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return badRequest(c, "Session ID is required")
	}

	sess, err := h.manager.GetSession(sessionID)
	if err != nil {
		return handleSessionError(c, err)
	}

	var after uint64

	if afterStr := c.Query("after"); afterStr != "" {
		after, err = strconv.ParseUint(afterStr, 10, 64)
		if err != nil {
			return badRequest(c, "Invalid after parameter: "+err.Error())
		}
	}

	var wait time.Duration

	if waitStr := c.Query("wait"); waitStr != "" {
		seconds, err := strconv.Atoi(waitStr)
		if err != nil || seconds < 0 {
			return badRequest(c, "Invalid wait parameter")
		}

		wait = time.Duration(seconds) * time.Second
		if wait > maxEventWait {
			wait = maxEventWait
		}
	}

	feed := sess.Feed()

	var entries []session.FeedEntry
	if wait > 0 {
		entries = feed.Wait(c.Context(), after, wait)
	} else {
		entries = feed.After(after)
	}

	lastSeq := after
	if len(entries) > 0 {
		lastSeq = entries[len(entries)-1].Seq
	}

	return c.JSON(EventsResponse{
		Events:  entries,
		LastSeq: lastSeq,
	})
}
