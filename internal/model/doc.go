// Package model holds the world the activity machine runs against:
// locations with membership and usage statistics, the registry of location
// types and week patterns, and the columnar per-person state.
//
// Person state lives in a props.Properties table so that a population of
// millions costs a handful of primitive slices rather than millions of
// heap objects.
package model
