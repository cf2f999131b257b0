package application

import "expvar"

// Counters exposed on /debug/vars.
var metrics = expvar.NewMap("messagely")

const (
	metricRegistrations = "registrations"
	metricLogins        = "logins"
	metricLoginFailures = "login_failures"
	metricMessagesSent  = "messages_sent"
	metricMessagesRead  = "messages_read"
	metricDenials       = "authorization_denials"
)
