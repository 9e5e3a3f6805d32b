// Package domain holds the entities every other lakesync package shares:
// the raw Document delivered by the content lake, the materialized Node,
// the ListenerEvent of the live feed and the SourceConfig naming the
// dataset. Errors returned across layers are defined here as sentinels.
//
// Domain sits at the centre of the hexagon and imports nothing but the
// standard library. Nothing in internal/ may be imported from here.
package domain
