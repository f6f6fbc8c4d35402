/*
Package auth owns the credentials a host application authenticates API clients with.

# JWT

API clients present an HMAC-signed JWT naming the target they act as,
either in an "Authorization: Bearer" header or a "jwt" query param
older clients still send.
[Service] signs and checks those tokens, and implements [Verifier]
so middlewares can resolve the target a request acts as
without caring how the credentials arrived.

# Google

During OAuth sign-in the host application exchanges the token Google hands back
for the account's userinfo.
The application maps that userinfo onto its own target record
before registering the target in the session.
*/
package auth
