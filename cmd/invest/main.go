// Package main - invest CLI
//
// 사용법:
//
//	go run ./cmd/invest serve
//	go run ./cmd/invest signals --user me --refresh
//	go run ./cmd/invest indicators 005930
package main

import (
	"os"

	"github.com/nkjh2020/investment-manager/cmd/invest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
