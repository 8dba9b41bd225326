/*
Package observability instruments the core conversions.

It wraps a ports.Converter with OpenTelemetry spans and Prometheus metrics,
and provides lifecycle hooks that count editor commits and loads. Nothing
here changes conversion results.
*/
package observability
