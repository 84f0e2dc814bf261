// Package client provides the `xstream` command-line client.
//
// The CLI talks to the xstream HTTP API to append to and read from streams
// from a terminal. It is primarily intended for developers and operators.
//
// Installation
//
//	go install github.com/rzbill/xstream/cmd/xstream@latest
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. The standalone binary reads --server, then
// XSTREAM_HTTP, and defaults to http://127.0.0.1:8080.
//
// Usage
//
//	xstream xadd race rider=Castilla speed=30.2 position=1
//	xstream xadd race --json '{"rider":"Norem","speed":29.1}' --ms 1700000000000
//
//	xstream xrange race --count 10
//	xstream xrange race --start 1700000000000 --end + --filter 'fields.speed > 30.0'
//
//	xstream xlen race
//
//	# entries after an ID on several streams; $ means "only newer than now"
//	xstream xread race 0-0 laps $ --count 5
//
//	xstream streams
//
// Notes
//
//   - field=value arguments that look like JSON numbers are sent as numbers;
//     use --json to force exact types.
//   - xread is non-blocking: it returns whatever is available right away.
package client
