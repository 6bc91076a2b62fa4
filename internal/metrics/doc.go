// Package metrics provides build metrics for blogbuilder.
//
// Components receive a Recorder and default to NoopRecorder, so metrics
// collection needs no nil checks at call sites. When a metrics textfile is
// configured the build swaps in a PrometheusRecorder and writes its registry
// with WriteTextfile after the build; blogbuilder is a one-shot process, so a
// node_exporter textfile collector takes the place of a scrape endpoint.
package metrics
