// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package services provides suture.Service wrappers for the server's
long-running components.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and returns ctx.Err() once its context is canceled, so the supervisor can
tell a requested shutdown from a crash.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server and converts ListenAndServe to Serve
  - Drains in-flight requests within the shutdown timeout

Ratings Probe (RatingsProbeService):
  - Pings the ratings store on an interval
  - Logs healthy/unhealthy transitions together with the breaker state

Uptime (UptimeService):
  - Refreshes the app_uptime_seconds gauge

# Usage

	tree.AddDataService(services.NewRatingsProbeService(store, cfg.Ratings.ProbeInterval, logger))
	tree.AddDataService(services.NewUptimeService(start, 15*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
*/
package services
