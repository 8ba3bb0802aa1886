/*
Package identitysdk provides the wire types and a client for the passage
identity service.

# Client vs Session

Client covers the unauthenticated endpoints: registration, login, password
reset and health. Session wraps a session token and covers the endpoints
that require one.

	client := identitysdk.NewClient("http://localhost:8080")

	_, err := client.Register(ctx, identitysdk.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter22",
	})

	session, err := client.Authenticate(ctx, "ada@example.com", "hunter22")
	users, err := session.ListUsers(ctx, 1, 10)

# Errors

Every failed call returns an *APIError carrying the HTTP status, an error
code and a description. The predefined values (ErrNotFound, ErrForbidden,
ErrInvalidToken, ...) match with errors.Is:

	if errors.Is(err, identitysdk.ErrForbidden) {
		// the token belongs to a different account
	}

The server writes the same values with APIError.WriteError, so both sides
agree on status codes and bodies.
*/
package identitysdk
