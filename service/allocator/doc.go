// Package allocator partitions the simulated memory magnitude of every task
// into fixed-size cell units and drives the flux cache with one access per
// unit. It is the only service allowed to mutate memory regions and the
// shared page cache.
package allocator
