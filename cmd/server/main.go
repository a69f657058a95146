package main

import (
	"log"

	approuters "github.com/AmanShaikh33/HUDDLENEW/internal/app_routers"
	"github.com/AmanShaikh33/HUDDLENEW/internal/configuration"
)

func main() {
	container, err := configuration.BuildContainer()
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	// Ensure cleanup on shutdown
	defer container.Close()

	approuters.StartServer(container)
}
