package request

type OrderItem struct {
	EventID  int64 `json:"event_id" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gte=1"`
}

type CreateOrder struct {
	Items        []OrderItem `json:"items" validate:"required,min=1,dive"`
	AttendeeName string      `json:"attendee_name" validate:"required"`
	ReturnURL    string      `json:"return_url" validate:"required,url"`
}

type VerifyPayment struct {
	OrderID string `json:"order_id" validate:"required,uuid4"`
}

type CheckInTicket struct {
	TicketCode string `json:"ticket_code" validate:"required"`
}

// GatewayNotification is the asynchronous webhook payload. Its status and
// amount fields are never trusted directly; the order id is only a trigger
// for a fresh gateway status query.
type GatewayNotification struct {
	OrderID       string  `json:"order_id" validate:"required,uuid4"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transaction_id"`
}

type PoisonedQueue struct {
	TopicTarget string      `json:"topic_target" validate:"required"`
	ErrorMsg    string      `json:"error_msg" validate:"required"`
	Payload     interface{} `json:"payload" validate:"required"`
}
