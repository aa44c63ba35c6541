// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package model

import (
	"strings"
	"testing"
)

func TestServerString(t *testing.T) {
	s := Server{User: "deploy", IP: "203.0.113.7", Port: "2222"}
	if got := s.String(); got != "deploy@203.0.113.7:2222" {
		t.Fatalf("String() = %q", got)
	}

	s.Port = ""
	if got := s.String(); got != "deploy@203.0.113.7:22" {
		t.Fatalf("String() with default port = %q", got)
	}
}

func TestServerValidate(t *testing.T) {
	tests := []struct {
		name    string
		server  Server
		wantErr string
	}{
		{"complete", Server{Name: "web", IP: "10.0.0.1", User: "root"}, ""},
		{"no id needed", Server{IP: "10.0.0.1", User: "root"}, ""},
		{"missing ip", Server{Name: "web", User: "root"}, "ip"},
		{"missing user", Server{Name: "web", IP: "10.0.0.1"}, "user"},
		{"missing both", Server{Name: "web"}, "ip, user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.server.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerDefaults(t *testing.T) {
	s := Server{}
	if s.ShellOrDefault() != "bash" {
		t.Fatalf("ShellOrDefault() = %q", s.ShellOrDefault())
	}
	if s.PortOrDefault() != "22" {
		t.Fatalf("PortOrDefault() = %q", s.PortOrDefault())
	}

	s = Server{Shell: "fish", Port: "2222"}
	if s.ShellOrDefault() != "fish" || s.PortOrDefault() != "2222" {
		t.Fatal("explicit values must win")
	}
}
