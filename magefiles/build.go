//go:build mage
// +build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/sh"
)

const (
	binaryPath  = "bin/devtask"
	mainPackage = "./cmd/devtask"
)

func buildVersion() string {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		return "dev"
	}
	return version
}

// ldflags stamps the version reported by devtask --version
func ldflags() string {
	return "-X main.version=" + buildVersion()
}

// Binary builds the main binary
func (Build) Binary() error {
	fmt.Println("Building devtask...")
	return sh.Run("go", "build", "-ldflags", ldflags(), "-o", binaryPath, mainPackage)
}

// Install installs the binary to $GOPATH/bin
func (Build) Install() error {
	fmt.Println("Installing devtask...")
	return sh.Run("go", "install", "-ldflags", ldflags(), mainPackage)
}

// Debug builds with debug flags
func (Build) Debug() error {
	fmt.Println("Building devtask with debug flags...")
	return sh.Run("go", "build", "-gcflags", "all=-N -l", "-o", binaryPath+"-debug", mainPackage)
}
