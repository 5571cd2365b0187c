package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/mbeaudry/latecheck-service/internal/latecheck"
)

func main() {
	_ = godotenv.Load()

	s, err := latecheck.New()
	if err != nil {
		log.Fatalf("latecheck startup failed: %v", err)
	}
	s.Start()
}
