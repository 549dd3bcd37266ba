// Package prerender generates static HTML for a fixed set of routes.
//
// Each page is rendered with the string adapter and handed to a Store as
// route/index.html. FileStore writes to a local directory; S3Store uploads
// to a bucket. Pages that answer with a redirect become meta-refresh stubs.
package prerender
