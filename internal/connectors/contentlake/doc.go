// Package contentlake is the HTTP client for the hosted content platform.
//
// It exposes the two endpoints a sync needs: the dataset export, a
// newline-delimited JSON stream of every document, and the listen endpoint,
// a server-sent event stream of document mutations. Requests carry the
// dataset token as a bearer token and are throttled client side.
package contentlake
