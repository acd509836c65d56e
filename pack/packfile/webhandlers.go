package packfile

import (
	"bytes"
	"fmt"
	"net/http"
	"reflect"

	"github.com/JohnAlanCalma/forge-server-utils/webutils"
)

func (pf *Reader) WebHandlerForEntryById(w http.ResponseWriter, id EntryId) error {
	if int(id) >= pf.EntryCount() || id < 0 {
		return fmt.Errorf("Entry %d not exists in %s", id, pf.Name())
	}

	instance, err := pf.GetInstanceFromEntry(id)
	if err != nil {
		return fmt.Errorf("File %s-%d[%s] parsing error: %v", pf.Name(), id, pf.Entries[id].Type.Type, err)
	}

	type Result struct {
		Entry *Entry
		Data  interface{}
	}

	result := &Result{Entry: &pf.Entries[id]}
	if instance != nil {
		val, err := instance.Marshal(&EntryRsrc{Reader: pf, Entry: &pf.Entries[id]})
		if err != nil {
			return fmt.Errorf("Error marshaling entry %d from %s: %v", id, pf.Name(), err)
		}
		result.Data = val
	}
	webutils.WriteJson(w, result)
	return nil
}

func (pf *Reader) WebHandlerDumpEntryData(w http.ResponseWriter, id EntryId) {
	if int(id) >= pf.EntryCount() || id < 0 {
		webutils.WriteError(w, fmt.Errorf("Entry %d not exists in %s", id, pf.Name()))
		return
	}
	webutils.WriteFile(w, bytes.NewReader(pf.EntryData(id)), fmt.Sprintf("%s-%d.bin", pf.Name(), id))
}

func (pf *Reader) WebHandlerCallResourceHttpAction(w http.ResponseWriter, r *http.Request, id EntryId, action string) error {
	instance, err := pf.GetInstanceFromEntry(id)
	if err != nil {
		return fmt.Errorf("Entry %d instance getting error: %v", id, err)
	}
	if instance == nil {
		return fmt.Errorf("Entry %d of %s has no decoded instance", id, pf.Name())
	}

	rt := reflect.TypeOf(instance)
	method, has := rt.MethodByName("HttpAction")
	if !has {
		return fmt.Errorf("Error: %s has not func HttpAction", rt.Name())
	}
	method.Func.Call([]reflect.Value{
		reflect.ValueOf(instance),
		reflect.ValueOf(&EntryRsrc{Reader: pf, Entry: &pf.Entries[id]}),
		reflect.ValueOf(w),
		reflect.ValueOf(r),
		reflect.ValueOf(action),
	}[:])
	return nil
}
