// Package parking provides a client for a municipal parking-permit API.
//
// The client logs in with an identifier and password, keeps the bearer token
// for the lifetime of the process and exposes the account, zone, reservation
// and favorite-plate operations as typed Go calls.
//
// # Architecture
//
//   - Auth: session state, login and the authenticated request pipeline
//   - Client: the public operations built on Auth
//   - Decoder: strict JSON decoding into typed models, never coercing
//     malformed fields to zero values
//
// # Usage
//
//	client, err := parking.New(parking.Config{
//		Username: "12345",
//		Password: "secret",
//		BaseURL:  "https://permits.example.com/api",
//	}, parking.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	account, err := client.GetAccount(ctx)
//
// # Sessions
//
// Login happens lazily on the first authenticated call. Concurrent callers on
// an unauthenticated client share one login request. When the API answers
// 401 or 403 the session is dropped, the client logs in again and the request
// is retried once; a second rejection is returned as an error.
//
// # Error Handling
//
// Every failure is one of four error types, each matching its sentinel:
//
//   - ErrConnection: transport error, timeout or unexpected HTTP status
//   - ErrAuth: credentials rejected or session unrecoverable
//   - ErrRateLimited: HTTP 429; RateLimitError.RetryAfter holds the hint
//   - ErrParse: response shape or field type violation
//
//	var rl *parking.RateLimitError
//	if errors.As(err, &rl) && rl.RetryAfter != nil {
//		time.Sleep(time.Duration(*rl.RetryAfter) * time.Second)
//	}
//
// An AuthError raised for a malformed login response chains the ParseError
// naming the offending field, so classify by the outermost type.
//
// The client never retries rate-limited calls on its own.
package parking
