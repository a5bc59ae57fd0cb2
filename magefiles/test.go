//go:build mage
// +build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var testPackages = []string{"./pkg/...", "./internal/...", "./cmd/..."}

func goTest(flags ...string) error {
	args := append([]string{"test"}, flags...)
	return sh.RunV("go", append(args, testPackages...)...)
}

// Unit runs unit tests
func (Test) Unit() error {
	fmt.Println("Running unit tests...")
	return goTest("-p", "4")
}

// Short runs unit tests with -short, skipping tests that spawn shells
func (Test) Short() error {
	fmt.Println("Running unit tests (short mode)...")
	return goTest("-short")
}

// Race runs unit tests with the race detector
func (Test) Race() error {
	fmt.Println("Running unit tests with the race detector...")
	return goTest("-race")
}

// Coverage runs tests with coverage
func (Test) Coverage() error {
	fmt.Println("Running tests with coverage...")
	return goTest("-coverprofile=coverage.out")
}

// CoverageHTML generates HTML coverage report
func (Test) CoverageHTML() error {
	mg.Deps(Test.Coverage)
	fmt.Println("Generating HTML coverage report...")
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}
