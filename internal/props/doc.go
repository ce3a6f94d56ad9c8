// Package props implements the columnar property store.
//
// Each attribute of an entity class (persons, locations) is held in one
// fixed-size Array backed by a single primitive slice. An Array can be read
// and written as any of the five kinds regardless of its backing kind;
// conversions follow fixed-width storage rules:
//
//   - integer narrowing wraps (two's complement truncation)
//   - float to integer rounds half up, then wraps; NaN becomes 0 and
//     infinities saturate to the int64 range before wrapping
//   - numeric to bool is "non-zero"; bool to numeric is 1 or 0
//
// Conversions never fail. Indexing outside [0, Len) panics: it is a
// programming error, not a runtime condition.
package props
