/*
Package httpserver runs the note service: the API routes contributed by
handlers, operational endpoints, and a separate Prometheus metrics listener.

Every request passes through request-id, real-ip, panic recovery, access
logging and CORS middleware.

# Operational endpoints

  - GET /livez - always 200 while the process serves requests
  - GET /readyz - 200 when ready, 503 while draining
  - GET /drain - mark the server not ready
  - GET /undrain - mark the server ready again
  - /debug/* - pprof, when EnablePprof is set

# Lifecycle

	srv, err := httpserver.New(cfg, handler)
	srv.RunInBackground()
	<-sigCh
	srv.Drain()
	srv.Shutdown()
*/
package httpserver
