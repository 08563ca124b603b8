// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultExecutableName is returned when os.Args[0] is unavailable.
const DefaultExecutableName = "x509-verify"

// GetExecutableName returns the executable name without extension, cross-platform compatible.
// The verifier uses it in usage strings, so a renamed or symlinked binary
// reports its own name:
//   - Linux/macOS: "x509-verify" from "/usr/local/bin/x509-verify"
//   - Windows: "x509-verify" from "C:\bin\x509-verify.exe"
//   - Fallback: [DefaultExecutableName] if os.Args[0] is unavailable
func GetExecutableName() string {
	if len(os.Args) == 0 {
		return DefaultExecutableName
	}
	return executableName(os.Args[0])
}

func executableName(arg0 string) string {
	if arg0 == "" {
		return DefaultExecutableName
	}
	name := filepath.Base(arg0)

	// A Windows path seen on Unix (or the reverse) is not split by filepath.Base.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".exe")
	if name == "" || name == "." {
		return DefaultExecutableName
	}
	return name
}
