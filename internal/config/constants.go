package config

// Version is the current Forge version.
// Set at build time via -ldflags or by writing to this file.
var Version = "0.3.1"

const SourceFileExt = ".fg"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".fg", ".forge"}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode indicates if the program is running in test mode.
var IsTestMode = false
