// The only reason this package exists is that build options are shared by
// configuration and by the pipeline, and symbol compiler must not depend on
// configuration loading.
package common

//go:generate go tool go-enum --marshal --names

// Where combined spritesheet goes.
// ENUM(file, asset)
type OutputMode int

// Which root dimension attributes are carried over to emitted symbol.
// ENUM(viewbox, all)
type Dimensions int

// What to do when source document cannot be compiled.
// ENUM(abort, skip)
type ErrorPolicy int

// WithSize reports whether width and height should be kept on symbol.
func (d Dimensions) WithSize() bool {
	return d == DimensionsAll
}
