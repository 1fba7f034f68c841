package main

import (
	"log"

	"github.com/ademateus/field-service-portal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
