package usecases

import (
	"context"

	"ticketing-service/internal/module/booking/models/entity"
	"ticketing-service/internal/module/booking/models/request"
	"ticketing-service/internal/module/booking/models/response"
)

// VerifyTicket implements Usecases. Read-only lookup for the door scanner
// preview screen.
func (u *usecases) VerifyTicket(ctx context.Context, code string) (response.TicketDetail, error) {
	ticket, err := u.repo.FindTicketByCode(ctx, code)
	if err != nil {
		return response.TicketDetail{}, err
	}
	return toTicketDetails([]entity.Ticket{ticket})[0], nil
}

// CheckInTicket implements Usecases.
func (u *usecases) CheckInTicket(ctx context.Context, payload *request.CheckInTicket, staffID int64) (response.TicketDetail, error) {
	ticket, err := u.repo.CheckInTicket(ctx, payload.TicketCode, staffID)
	if err != nil {
		return response.TicketDetail{}, err
	}
	return toTicketDetails([]entity.Ticket{ticket})[0], nil
}
