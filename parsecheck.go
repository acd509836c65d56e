package main

import (
	"log"
	"sort"
	"strings"

	"github.com/JohnAlanCalma/forge-server-utils/pack"
	file_packfile "github.com/JohnAlanCalma/forge-server-utils/pack/packfile"
	"github.com/JohnAlanCalma/forge-server-utils/pack/packfile/geometry"
	"github.com/JohnAlanCalma/forge-server-utils/vfs"
)

func parseCheck(rootfs vfs.Directory) {
	packList, err := rootfs.List()
	if err != nil {
		log.Fatal(err)
	}

	sort.Strings(packList)

	for _, fname := range packList {
		if !strings.HasSuffix(strings.ToUpper(fname), ".PF") {
			continue
		}

		data, err := pack.GetInstanceHandler(rootfs, fname)
		if err != nil {
			log.Printf("%q: %v", fname, err)
			continue
		}
		pf, ok := data.(*file_packfile.Reader)
		if !ok {
			continue
		}

		decoded := 0
		skipped := 0
		for _, m := range geometry.DecodeAll(pf) {
			if m != nil {
				decoded++
			} else {
				skipped++
			}
		}
		log.Printf("%q: %d entries, %d meshes decoded, %d skipped",
			fname, pf.EntryCount(), decoded, skipped)
	}
}
