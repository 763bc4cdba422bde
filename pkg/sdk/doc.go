// Package ragd is a small HTTP client for the ragd API.
//
// The client covers the full surface: chat, document CRUD, paragraph
// segmentation, retrieval fanout, and the context inspection endpoint.
// Failures map to sentinel errors checkable with errors.Is.
package ragd
