// assets/embed.go
//
// Built-in fleet layouts shipped inside the binary. They are the last source
// the layout catalog consults, so the server can always start a game.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed layouts/*.txt
var embedded embed.FS

// Layouts returns the embedded layouts rooted at the layouts directory,
// so names are bare file names like "example.txt".
func Layouts() fs.FS {
	sub, err := fs.Sub(embedded, "layouts")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}
