// Package discovery implements the monitor transport over mDNS/DNS-SD.
//
// Every service instance found while browsing one service type is a
// device. A device is connected while at least one of its addresses is
// announced:
//
//   - The first announcement of an instance is a DiscoveryAdded event.
//   - A goodbye that withdraws the last address is a Connected=false change.
//   - A later announcement with addresses is a Connected=true change.
//
// Addresses from several interfaces are aggregated per instance name.
// Instances are never forgotten while browsing runs, so a handle stays
// valid across goodbyes.
//
// The display name comes from the TXT record keys DN, fn or name, in
// that order, and falls back to the instance name.
package discovery
