//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime. They keep mockgen pinned in
// go.mod so that `go generate ./...` works on a fresh checkout.
package chat_desk

import (
	_ "go.uber.org/mock/mockgen"
)
