//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// All removes build artifacts and coverage files
func (Clean) All() error {
	mg.Deps(Clean.Coverage)
	fmt.Println("Cleaning build artifacts...")
	return os.RemoveAll("bin")
}

// Coverage removes coverage files
func (Clean) Coverage() error {
	fmt.Println("Cleaning coverage files...")
	for _, path := range []string{"coverage.out", "coverage.html"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Deps removes the module cache
func (Clean) Deps() error {
	fmt.Println("Cleaning module cache...")
	return sh.Run("go", "clean", "-modcache")
}
