// Package client is a Go client for the xstream HTTP API. It mirrors the
// four stream operations (XAdd, XRange, XLen, XRead) and reports any non-2xx
// response as an *HTTPError carrying the status code. Requests are never
// retried; retry policy belongs to the caller.
//
// Example:
//
//	c, _ := client.New("http://localhost:8080")
//	id, _ := c.XAdd(ctx, "race", map[string]any{"rider": "Castilla", "speed": 30.2})
//	entries, _ := c.XRange(ctx, "race", 10)
//	res, _ := c.XRead(ctx, []string{"race"}, []string{id.String()}, 10)
package client
