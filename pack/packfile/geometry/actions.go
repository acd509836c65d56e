package geometry

import (
	"log"
	"net/http"

	"github.com/pkg/errors"

	"github.com/JohnAlanCalma/forge-server-utils/pack/packfile"
	"github.com/JohnAlanCalma/forge-server-utils/webutils"
)

func (mesh *Mesh) HttpAction(rsrc *packfile.EntryRsrc, w http.ResponseWriter, r *http.Request, action string) {
	switch action {
	case "obj":
		webutils.WriteFileHeaders(w, rsrc.Name()+".obj")
		if err := mesh.ExportObj(w); err != nil {
			log.Printf("Error when exporting mesh as obj: %v", err)
		}
	case "gltf":
		webutils.WriteFileHeaders(w, rsrc.Name()+".glb")
		doc, err := mesh.ExportGLTFDefault(rsrc.Name())
		if err != nil {
			log.Printf("Error when exporting mesh as gltf: %v", err)
			return
		}
		if err := ExportGLTFBinary(w, doc); err != nil {
			log.Printf("Failed to encode gltf: %v", err)
		}
	default:
		webutils.WriteError(w, errors.Errorf("Unknown action %q", action))
	}
}
