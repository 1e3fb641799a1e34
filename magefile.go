//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the lexicall binary into ./bin
func Build() error {
	fmt.Println("Building lexicall...")
	if err := os.MkdirAll("bin", 0755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", filepath.Join("bin", "lexicall"), "./cmd/lexicall")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestRace runs all tests with the race detector
func TestRace() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install builds and installs lexicall into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/lexicall")
}

// Clean removes build artifacts
func Clean() error {
	return os.RemoveAll("bin")
}

// All vets, tests and builds
func All() {
	mg.SerialDeps(Vet, Test, Build)
}
