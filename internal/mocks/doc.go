// Package mocks provides in-memory stores and call-recording fakes of the ports
// used by the use cases and the scheduler, for tests only.
package mocks
