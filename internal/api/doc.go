// Package api implements the HTTP handlers, request/response models and
// error mapping for the generation service. Handlers translate transport
// concerns to and from the generation coordinator; internal errors are mapped
// to status codes and safe messages so vendor details never leak to clients.
package api
