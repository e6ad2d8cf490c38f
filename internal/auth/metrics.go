package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sonar_auth_logins_started_total",
		Help: "Authorization redirects issued by /api/auth/login",
	})

	callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonar_auth_callbacks_total",
		Help: "Callback outcomes by result",
	}, []string{"result"})

	refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonar_auth_refreshes_total",
		Help: "Refresh-token exchanges by result",
	}, []string{"result"})

	guardRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sonar_auth_guard_rejections_total",
		Help: "Requests rejected by the auth guard for lack of a token",
	})
)
