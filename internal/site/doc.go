// Package site renders the generated pages: one page per post, the index,
// per-tag listings and the RSS feed.
//
// Post pages are skipped when the staleness oracle reports them fresh.
// Aggregate pages depend on every post and are always rewritten.
package site
