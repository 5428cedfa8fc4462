package request

type ReserveRequest struct {
	EventID     string `json:"event_id" validate:"required,uuid4"`
	TicketCount int    `json:"ticket_count" validate:"required,min=1"`
}

type BookingDateRangeRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}
