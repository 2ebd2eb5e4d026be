// Command server starts the AgentLens scan API.
// Configuration comes from the environment; see internal/server.ConfigFromEnv.
package main

import (
	"log"

	"github.com/agentlens/agentlens/internal/server"
)

func main() {
	cfg := server.ConfigFromEnv()

	s, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Server setup error: %v", err)
	}
	defer s.Close()

	log.Printf("AgentLens API listening on %s", cfg.ListenAddr)
	if err := s.HTTPServer().ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
