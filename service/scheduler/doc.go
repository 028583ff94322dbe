// Package scheduler provides the dispatch selection policies used by the
// kernel. A policy inspects the ready queue in order and picks one task; it
// never mutates queue or task state.
package scheduler
