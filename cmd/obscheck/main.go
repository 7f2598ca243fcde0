package main

import (
	"log"

	"github.com/kentbulteni/analytics-service/internal/tools/common"
	tool "github.com/kentbulteni/analytics-service/internal/tools/obscheck"
)

func main() {
	if err := common.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
