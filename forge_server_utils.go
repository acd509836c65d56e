package main

import (
	"flag"
	"log"

	"github.com/JohnAlanCalma/forge-server-utils/config"
	"github.com/JohnAlanCalma/forge-server-utils/vfs"
	"github.com/JohnAlanCalma/forge-server-utils/web"

	_ "github.com/JohnAlanCalma/forge-server-utils/pack/packfile"
	_ "github.com/JohnAlanCalma/forge-server-utils/pack/packfile/geometry"
)

func main() {
	var addr, dir, cfg, encoding string
	var indexWidth int
	var check bool
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&dir, "dir", "", "Path to folder with pack files")
	flag.StringVar(&cfg, "cfg", "", "Path to yaml settings file")
	flag.StringVar(&encoding, "encoding", "", "Text encoding of pack strings (default Windows 1252)")
	flag.IntVar(&indexWidth, "indexwidth", 32, "Triangle index width: 16 or 32")
	flag.BoolVar(&check, "parsecheck", false, "Decode every mesh of every pack file and exit")
	flag.Parse()

	if err := config.SetIndexWidth(config.IndexWidth(indexWidth)); err != nil {
		log.Fatal(err)
	}
	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatal(err)
		}
	}
	if cfg != "" {
		s, err := config.LoadSettings(cfg)
		if err != nil {
			log.Fatal(err)
		}
		if s.ListenAddr != "" {
			addr = s.ListenAddr
		}
	}

	if dir == "" {
		flag.PrintDefaults()
		return
	}

	root := vfs.NewDirectoryDriver(dir)

	if check {
		parseCheck(root)
		return
	}

	if err := web.StartServer(addr, root, "web"); err != nil {
		log.Fatal(err)
	}
}
