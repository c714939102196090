// Package fetch is the shared HTTP client for every external source.
//
// A Fetcher applies the same discipline to each request: a fixed per-request
// timeout, an identifying User-Agent, a per-host rate limit and a bounded
// number of attempts with linear backoff. Exhausted retries are reported as
// *domain.SourceError naming the source.
package fetch
