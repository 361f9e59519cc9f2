package worker

import (
	"github.com/climatecare/repairdesk/internal/events"
	"github.com/climatecare/repairdesk/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartStatsInvalidator drops the statistics cache whenever a request
// mutation event fires.
func StartStatsInvalidator(statsService *service.StatsService, dispatcher events.Dispatcher) {
	if statsService == nil {
		return
	}
	statsService.RegisterInvalidation(dispatcher)
}
