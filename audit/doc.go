// Package audit delivers gate decision events to a caller-supplied sink.
// Nothing is persisted here: the dispatcher buffers events in memory and
// hands them off asynchronously; what happens to them is the sink's concern.
package audit
