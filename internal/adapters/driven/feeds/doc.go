// Package feeds adapts external news sources into domain.CandidateItem.
//
// Three source kinds are supported:
//
//   - rss: any RSS or Atom feed, parsed with gofeed
//   - search: an aggregator search feed whose titles carry "headline - outlet"
//   - cryptocompare: the CryptoCompare news JSON API
//
// Every adapter validates external payloads at the boundary: free text is
// sanitised and truncated, entries without a title or link are dropped and
// the output is capped. Network discipline comes from the shared fetch.Fetcher.
package feeds
