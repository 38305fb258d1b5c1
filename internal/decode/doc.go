// Package decode binds step arguments, held as cty values, to the Go input
// structs declared by runners, and converts between cty values and plain Go
// values.
//
// Input structs declare their arguments with `cty` tags:
//
//	type Input struct {
//		MinTotal  int64  `cty:"min_total"`
//		Title     string `cty:"title,optional"`
//	}
//
// A field tagged `,optional` keeps whatever value it had before decoding,
// which lets runners express defaults by pre-filling the struct returned
// from their NewInput function. Fields without a tag are never touched.
package decode
