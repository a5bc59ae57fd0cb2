//go:build mage
// +build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/sh"
)

// Version displays the version a build would be stamped with
func Version() error {
	fmt.Printf("Version: %s\n", buildVersion())
	return nil
}

// Commit displays the current git commit
func Commit() error {
	commit, err := sh.Output("git", "rev-parse", "HEAD")
	if err != nil {
		return err
	}
	fmt.Printf("Commit: %s\n", commit)
	return nil
}
