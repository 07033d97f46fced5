// Package roster extracts professional-profile records from directory sites.
// It pulls structured data, embedded application state, internal API payloads
// and rendered markup out of listing and profile pages, and normalizes the
// heterogeneous results into one canonical Record shape.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, http/).
package roster
