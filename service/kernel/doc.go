// Package kernel implements the task scheduling engine.
//
// The kernel owns the task table and three ID queues:
//
//	new      tasks submitted but not yet admitted
//	ready    tasks eligible for dispatch, in arrival order
//	blocked  tasks waiting on an event (Blocked) or parked (Suspended)
//
// A live task sits in at most one queue. Dispatch picks a ready task with a
// scheduler.Policy, runs it through Processing to Terminated and removes it
// from the table. Every task receives a memory region from the allocator when
// it is created.
//
// All operations serialize on a single mutex, so the kernel can be driven
// from a background dispatcher and concurrent callers at the same time.
package kernel
