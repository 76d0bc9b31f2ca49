package domain

import "time"

// MessageAuthor is the short member representation nested in messages.
type MessageAuthor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ChatMessage is a single message in the global group chat. Messages are
// immutable once received; the server assigns id, author and created_at.
type ChatMessage struct {
	ID        int64          `json:"id"`
	Author    *MessageAuthor `json:"author"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"created_at"`
}

// IsOwn reports whether the message was written by the given member.
// Used for presentation only, never for merge decisions.
func (m ChatMessage) IsOwn(member *Member) bool {
	return member != nil && m.Author != nil && m.Author.ID == member.ID
}

// MessageQuery holds the optional pagination parameters of the message
// list endpoint. Zero values are omitted from the request.
type MessageQuery struct {
	Limit  int
	Offset int
}
