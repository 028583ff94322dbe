// Package progress keeps aggregated kernel lifecycle counters: how many tasks
// were created, admitted, dispatched, terminated and destroyed, and how many
// currently sit in each queue.
package progress
