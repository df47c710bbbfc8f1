// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package supervisor runs the server's long-lived services under suture v4.

# Overview

Services are grouped into two layers so a failing background probe never
restarts the HTTP server:

	RootSupervisor ("animerec")
	├── DataSupervisor ("data-layer")
	│   ├── RatingsProbeService
	│   └── UptimeService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with backoff once FailureThreshold failures
accumulate (decaying at FailureDecay per second). Cancelling the context
passed to Serve stops every service; services that miss ShutdownTimeout
are listed by UnstoppedServiceReport.

Supervisor events are logged through sutureslog, which takes a
*slog.Logger; logging.NewSlogLogger bridges it onto zerolog.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewRatingsProbeService(store, 30*time.Second, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

	// Blocks until ctx is canceled and the tree has stopped.
	if err := tree.Run(ctx); err != nil {
	    logger.Error().Err(err).Msg("Supervisor tree error")
	}
*/
package supervisor
