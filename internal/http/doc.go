// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /events, GET /events/{id}, DELETE /events/{id}: booking lifecycle
//     exchanging the `eventDTO` payload defined in event_handler.go. Creation
//     answers 201 on success, 400 on validation failure, 409 when a room is
//     already claimed over the requested interval (the body names the
//     contended rooms) and 503 when storage cannot serve the request.
//   - GET /events?userId=...: events the user organizes or attends, ordered
//     by start time. Optional narrowing via `date=YYYY-MM-DD`, via
//     `startDate=...&endDate=...` (inclusive calendar range) or via
//     `upcoming=true`.
//   - POST /rooms/{id}/availability: probes one room over an interval. Body:
//     {"start_time","end_time"}; response echoes the probe plus "available".
//   - GET /rooms/available?startTime=...&endTime=...[&companyId=...]: the
//     rooms free over the interval.
//   - GET /rooms, POST /rooms, GET /rooms/{id}, DELETE /rooms/{id}: room
//     catalog administration.
//   - GET /users, POST /users, GET /users/{id}: user account administration.
//
// All timestamps are RFC 3339. Request/response DTOs live alongside their
// respective handlers so tests and documentation share the same ground truth.
package http
