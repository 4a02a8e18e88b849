package main

import (
	"flag"
	"log"
	"os"

	approuters "github.com/Mantuja-khan/ChatApplication/internal/app_routers"
	"github.com/Mantuja-khan/ChatApplication/internal/configuration"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	path := *configPath
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		path = env
	}

	container, err := configuration.BuildContainer(path)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	// Ensure cleanup on shutdown
	defer container.Close()

	// Setup routers
	approuters.StartServer(container)
}
