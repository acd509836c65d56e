package web

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/JohnAlanCalma/forge-server-utils/pack"
	file_packfile "github.com/JohnAlanCalma/forge-server-utils/pack/packfile"
	"github.com/JohnAlanCalma/forge-server-utils/pack/packfile/geometry"
	"github.com/JohnAlanCalma/forge-server-utils/vfs"
	"github.com/JohnAlanCalma/forge-server-utils/webutils"
)

func HandlerAjaxPack(w http.ResponseWriter, r *http.Request) {
	if files, err := ServerDirectory.List(); err != nil {
		webutils.WriteError(w, err)
	} else {
		sort.Strings(files)
		webutils.WriteJson(w, files)
	}
}

func HandlerAjaxPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, err := pack.GetInstanceHandler(ServerDirectory, file)
	if err != nil {
		log.Printf("Error getting file from pack: %v", err)
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, data)
	}
}

func HandlerAjaxPackFileParam(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	param := mux.Vars(r)["param"]
	data, err := pack.GetInstanceHandler(ServerDirectory, file)
	if err != nil {
		log.Printf("Error getting file from pack: %v", err)
		webutils.WriteError(w, err)
		return
	}

	switch pf := data.(type) {
	case *file_packfile.Reader:
		id, err := strconv.Atoi(param)
		if err != nil {
			webutils.WriteError(w, fmt.Errorf("param '%s' is not integer", param))
		} else if err := pf.WebHandlerForEntryById(w, file_packfile.EntryId(id)); err != nil {
			webutils.WriteError(w, fmt.Errorf("pack file web handler return error: %v", err))
		}
	default:
		webutils.WriteError(w, fmt.Errorf("File %s not contain subdata", file))
	}
}

// HandlerAjaxMeshes returns the decoded mesh list of a pack file.
// Undecodable entries stay as json nulls so that positions keep lining up
// with entry indices.
func HandlerAjaxMeshes(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, err := pack.GetInstanceHandler(ServerDirectory, file)
	if err != nil {
		log.Printf("Error getting file from pack: %v", err)
		webutils.WriteError(w, err)
		return
	}

	switch pf := data.(type) {
	case *file_packfile.Reader:
		webutils.WriteJson(w, geometry.DecodeAll(pf))
	default:
		webutils.WriteError(w, fmt.Errorf("File %s not contain meshes", file))
	}
}

func HandlerDumpPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	f, err := vfs.DirectoryGetFile(ServerDirectory, file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	if reader, err := vfs.OpenFileAndGetReader(f, true); err == nil {
		defer f.Close()
		webutils.WriteFile(w, reader, file)
	} else {
		webutils.WriteError(w, fmt.Errorf("Error getting file reader: %v", err))
	}
}

func HandlerDumpPackParamFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	param := mux.Vars(r)["param"]
	data, err := pack.GetInstanceHandler(ServerDirectory, file)
	if err != nil {
		log.Printf("Error getting file from pack: %v", err)
		webutils.WriteError(w, err)
		return
	}

	switch pf := data.(type) {
	case *file_packfile.Reader:
		id, err := strconv.Atoi(param)
		if err != nil {
			webutils.WriteError(w, fmt.Errorf("param '%s' is not integer", param))
		} else {
			pf.WebHandlerDumpEntryData(w, file_packfile.EntryId(id))
		}
	default:
		webutils.WriteError(w, fmt.Errorf("File %s not contain subdata", file))
	}
}

func HandlerActionPackFileParam(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	param := mux.Vars(r)["param"]
	action := mux.Vars(r)["action"]
	data, err := pack.GetInstanceHandler(ServerDirectory, file)
	if err != nil {
		log.Printf("Error getting file from pack: %v", err)
		webutils.WriteError(w, err)
		return
	}

	switch pf := data.(type) {
	case *file_packfile.Reader:
		id, err := strconv.Atoi(param)
		if err != nil {
			webutils.WriteError(w, fmt.Errorf("param '%s' is not integer", param))
		} else if err := pf.WebHandlerCallResourceHttpAction(w, r, file_packfile.EntryId(id), action); err != nil {
			webutils.WriteError(w, fmt.Errorf("Pack file handler error on %s-%d instance: %v", file, id, err))
		}
	default:
		webutils.WriteError(w, fmt.Errorf("File %s not contain subdata", file))
	}
}
