// Package shaders embeds the WGSL sources of the render pipelines.
package shaders

import (
	_ "embed"
)

//go:embed lines.wgsl
var LinesWGSL string

//go:embed text.wgsl
var TextWGSL string
