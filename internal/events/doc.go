// Package events provides the in-process pub/sub hub that carries realtime
// download updates from workers to API subscribers.
package events
