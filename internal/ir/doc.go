// Package ir provides the canonical value representation used for
// content-addressed matching of recorded API calls.
//
// This package contains serialization and hashing only. The public dump and
// mock packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Object keys are ordered naturally ("2" sorts before "10") at every level
//   - Sequences keep their order
//   - Integral numbers serialize identically whatever their Go type, so a live
//     int and a float64 decoded from a dump file produce the same bytes
//   - Strings are NFC normalized before serialization
package ir
