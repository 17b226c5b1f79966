package intake

import (
	"embed"
	"io/fs"
)

// RuntimeScript is the browser runtime that attaches the address widget.
const RuntimeScript = "intake-places.js"

//go:embed assets/runtime/*.js
var embeddedRuntimeAssets embed.FS

// RuntimeAssetsFS exposes the browser runtime so the server can mount it
// without a build step.
//
//	mux.Handle("/runtime/",
//	  http.StripPrefix("/runtime/",
//	    http.FileServerFS(intake.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedRuntimeAssets, "assets/runtime")
	if err != nil {
		return embeddedRuntimeAssets
	}
	return sub
}
