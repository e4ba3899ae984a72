package domain

// TicketStatus enumerates lifecycle states for tickets. The set is open: values
// other than the constants below are stored as given.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "OPEN"
	TicketStatusAssigned TicketStatus = "ASSIGNED"
	TicketStatusClosed   TicketStatus = "CLOSED"
)

// Ticket is a support request raised by a user and worked by an executive.
// RaisedBy and AssignedTo reference users owned by the user service and are not
// checked on write.
type Ticket struct {
	ID         int64
	Issue      string
	RaisedBy   int64
	RaisedOn   Date
	AssignedTo *int64
	AssignedOn *Date
	ClosedOn   *Date
	Status     TicketStatus
}
