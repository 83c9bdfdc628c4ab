package domain

import "time"

// Comment is a single entry in a ticket's conversation thread.
type Comment struct {
	ID        int64
	TicketID  int64
	Author    Member
	Content   string
	CreatedAt time.Time
}
