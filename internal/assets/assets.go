// Package assets holds files embedded into the uxperf binary.
package assets

import "embed"

// Agenda is the sample agenda written by `uxperf init`.
//
//go:embed agenda.yaml
var Agenda []byte

// Functions holds jq helpers for analysing results.json.
//
//go:embed functions/*.jq
var Functions embed.FS
