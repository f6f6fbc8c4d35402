/*
The middleware package defines what a middleware is and a set of basic middlewares
for standing up notification routes.

The available middlewares are:
- AuthenticateTarget
- CORS
- CurrentTarget
- ForceHTTPS
- Idempotent
- InjectIPAddress
- InjectResponder
- InjectSession
- LogRequest
- RateLimit
- RequestID

Due to the amount of configuration required, middleware does not provide a default middleware chain.
Instead, the following can be copy-pasted:

	vs := middleware.NewVisitors()
	adpts := []middleware.Adapter{
		middleware.RateLimit(vs),
		middleware.ForceHTTPS(env),
		middleware.RequestID(an.RequestIDKey),
		middleware.InjectIPAddress(),
		middleware.LogRequest(log),
		middleware.InjectSession(sessionStore, an.SessionKey),
		middleware.CurrentTarget(responder, targetStore, an.SessionKey, an.CurrentTargetKey),
	}
*/
package middleware
