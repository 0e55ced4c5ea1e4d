// Package apiclient provides a thin JSON-over-HTTP client with a single
// normalized error shape.
//
// Every failure a request can hit, whether an error response from the
// backend, a request that never received a response, or a request that
// could not be built at all, is converted into [*Error] before it reaches
// the caller:
//
//   - Backend responded with a non-2xx status: Category and Message are taken
//     from the response body's "error" and "message" fields, falling back to
//     "API Error" / "An error occurred"; StatusCode is the HTTP status.
//   - No response received (network failure, timeout): Category is
//     "Network Error" with a fixed user-facing message and the sentinel
//     status [StatusNoResponse].
//   - Request could not be constructed or encoded: Category is
//     "Request Error" with status 500.
//
// # Usage
//
//	client, err := apiclient.New("http://localhost:3000/api")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var out struct{ Status string `json:"status"` }
//	if err := client.Get(ctx, "health", &out); err != nil {
//	    var ae *apiclient.Error
//	    if errors.As(err, &ae) {
//	        fmt.Println(ae.Category, ae.StatusCode)
//	    }
//	}
//
// Requests carry credentials automatically: responses that set cookies are
// stored in the client's jar and replayed on subsequent requests. The jar
// can be replaced with [WithCookieJar] for tests or persistence.
package apiclient
