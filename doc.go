// Package ossim is an operating system kernel simulator.
//
// It models the lifecycle of schedulable tasks (admission, FCFS and SJF
// dispatch, blocking and suspension) together with a simplified paging
// subsystem: every task receives a memory region split into cell units that
// are tracked by a least-recently-used flux cache.
//
// Service wires the kernel, allocator, event service and logger from a
// Config; Runtime drives the kernel with a background dispatcher.
package ossim
