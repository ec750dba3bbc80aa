// SPDX-License-Identifier: MIT
package wakeword

import "testing"

func TestResolve(t *testing.T) {
	supported := []string{"alexa", "computer", "jarvis", "hey google"}

	tests := []struct {
		name   string
		word   string
		want   string
		wantOK bool
	}{
		{"Supported", "computer", "computer", true},
		{"Mixed case and spaces", "  Hey Google ", "hey google", true},
		{"Unsupported", "abracadabra", DefaultWord, false},
		{"Empty", "", DefaultWord, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.word, supported)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.word, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFired(t *testing.T) {
	if Fired(-1) {
		t.Error("Fired(-1) = true")
	}
	if !Fired(0) {
		t.Error("Fired(0) = false")
	}
}
