// Package main is the entry point for the vox2osu API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/okawaffles/vox2osu/pkg/api"
	"github.com/okawaffles/vox2osu/pkg/config"
	"github.com/okawaffles/vox2osu/pkg/converter"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	resources := flag.String("resources", "", "YAML file overriding section headers and osu! settings")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "vox2osu-api", ReportTimestamp: true})

	res, err := config.Load(*resources)
	if err != nil {
		logger.Fatal("Failed to load resources", "err", err)
	}
	opts, err := converter.DefaultOptions()
	if err != nil {
		logger.Fatal("Failed to build options", "err", err)
	}
	opts.Resources = res
	opts.Logger = logger

	logger.Info("Starting API server", "port", *port)
	logger.Info(fmt.Sprintf("Swagger docs available at http://localhost:%d/swagger/index.html", *port))

	if err := api.StartServer(*port, opts); err != nil {
		logger.Fatal("Server error", "err", err)
	}
}
