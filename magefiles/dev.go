//go:build mage
// +build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Run builds and runs the application with help
func (Dev) Run() error {
	mg.Deps(Build.Binary)
	return sh.RunV("./"+binaryPath, "--help")
}

// Hooks builds devtask and runs the hook pipeline over every file
func (Dev) Hooks() error {
	mg.Deps(Build.Binary)
	return sh.RunV("./"+binaryPath, "check", "--all-files")
}
