package assets

type Options struct {
	// Name of the esbuild metafile written into the output directory
	MetafileName string
	// Whether to minify output
	Minify bool
	// Compiler for .scss and .sass imports, nil rejects them
	Sass *SassCompiler
}

// DefaultOptions returns a sensible default configuration
func DefaultOptions() Options {
	return Options{
		MetafileName: "meta.json",
		Minify:       false,
	}
}
