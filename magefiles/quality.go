//go:build mage
// +build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Lint runs golangci-lint
func (Quality) Lint() error {
	fmt.Println("Running linter...")
	return sh.RunV("golangci-lint", "run", "./...")
}

// Format formats the code with gofmt and tidies go.mod
func (Quality) Format() error {
	fmt.Println("Formatting code with gofmt...")
	if err := sh.Run("gofmt", "-l", "-w", "cmd", "internal", "pkg", "magefiles"); err != nil {
		return fmt.Errorf("gofmt failed: %w", err)
	}
	return sh.Run("go", "mod", "tidy")
}

// Vet runs go vet
func (Quality) Vet() error {
	fmt.Println("Running go vet...")
	return sh.Run("go", "vet", "./...")
}

// All runs all quality checks
func (Quality) All() {
	mg.SerialDeps(Quality.Format, Quality.Vet, Quality.Lint, Test.Unit)
}
