// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutableName(t *testing.T) {
	tests := []struct {
		name     string
		arg0     string
		expected string
	}{
		{name: "Relative Path", arg0: "./x509-verify", expected: "x509-verify"},
		{name: "Just Filename", arg0: "x509-verify", expected: "x509-verify"},
		{name: "Unix Absolute Path", arg0: "/usr/local/bin/x509-verify", expected: "x509-verify"},
		{name: "Renamed Binary", arg0: "/opt/pki/bin/chain-check", expected: "chain-check"},
		{name: "Windows Path With Exe", arg0: `C:\Program Files\pki\x509-verify.exe`, expected: "x509-verify"},
		{name: "Windows Path Without Exe", arg0: `C:\tools\x509-verify`, expected: "x509-verify"},
		{name: "Empty", arg0: "", expected: DefaultExecutableName},
		{name: "Root", arg0: "/", expected: DefaultExecutableName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, executableName(tt.arg0))
		})
	}
}

func TestGetExecutableName(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = nil
	assert.Equal(t, DefaultExecutableName, GetExecutableName())

	os.Args = []string{"/usr/bin/x509-verify", "--help"}
	assert.Equal(t, "x509-verify", GetExecutableName())
}
