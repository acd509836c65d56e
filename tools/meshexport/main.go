package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/JohnAlanCalma/forge-server-utils/config"
	"github.com/JohnAlanCalma/forge-server-utils/pack/packfile"
	"github.com/JohnAlanCalma/forge-server-utils/pack/packfile/geometry"
)

type fileSource struct {
	name string
	size int64
}

func (s *fileSource) Name() string { return s.name }
func (s *fileSource) Size() int64  { return s.size }

func main() {
	var in, out, format string
	var indexWidth int
	flag.StringVar(&in, "in", "", "Path to pack file")
	flag.StringVar(&out, "out", ".", "Output directory")
	flag.StringVar(&format, "format", "gltf", "Export format: gltf or obj")
	flag.IntVar(&indexWidth, "indexwidth", 32, "Triangle index width: 16 or 32")
	flag.Parse()

	if in == "" {
		flag.PrintDefaults()
		return
	}
	if err := config.SetIndexWidth(config.IndexWidth(indexWidth)); err != nil {
		log.Fatal(err)
	}

	b, err := os.ReadFile(in)
	if err != nil {
		log.Fatalf("Cannot read %q: %v", in, err)
	}

	pf, err := packfile.NewReader(b, &fileSource{name: filepath.Base(in), size: int64(len(b))})
	if err != nil {
		log.Fatalf("Cannot parse %q: %v", in, err)
	}

	if err := os.MkdirAll(out, 0777); err != nil {
		log.Fatal(err)
	}

	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	exported := 0
	for id, m := range geometry.DecodeAll(pf) {
		if m == nil {
			continue
		}
		name := fmt.Sprintf("%s-%.4d", base, id)

		var err error
		switch format {
		case "obj":
			err = exportFile(filepath.Join(out, name+".obj"), func(f *os.File) error {
				return m.ExportObj(f)
			})
		case "gltf":
			err = exportFile(filepath.Join(out, name+".glb"), func(f *os.File) error {
				doc, err := m.ExportGLTFDefault(name)
				if err != nil {
					return err
				}
				return geometry.ExportGLTFBinary(f, doc)
			})
		default:
			log.Fatalf("Unknown format %q", format)
		}
		if err != nil {
			log.Fatalf("Cannot export entry %d: %v", id, err)
		}
		exported++
	}

	log.Printf("Exported %d of %d entries from %q", exported, pf.EntryCount(), in)
}

func exportFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}
