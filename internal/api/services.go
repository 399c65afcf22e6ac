package api

import "github.com/pagepace/pagepace-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Session  *service.SessionService
	Book     *service.BookService
	Stats    *service.StatsService
	Reminder *service.ReminderService
}
