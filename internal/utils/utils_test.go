package utils

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Strymon OB.1", []string{"strymon", "ob", "1"}},
		{"fender jazz bass", []string{"fender", "jazz", "bass"}},
		{"  ", nil},
		{"£280!", []string{"280"}},
	}

	for _, tc := range tests {
		got := Tokenize(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDedupeStrings(t *testing.T) {
	in := []string{"Strymon OB1", "strymon ob1", "  strymon ob1  ", "", "used strymon"}
	want := []string{"Strymon OB1", "used strymon"}
	if got := DedupeStrings(in); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
