// Package server hosts the Fiber HTTP surface over the model cache: listing
// cached artifacts, ensuring a model by logical name, and exposing Prometheus
// metrics. The Catalog glues the [[Model]] manifest from config into the
// remote coordinates Ensure needs. Keep exports narrow and accept explicit
// dependencies so cmd-level wiring stays in main.
package server
