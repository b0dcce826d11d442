package index

import (
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain words",
			text: "decided to switch jobs",
			want: []string{"decided", "switch", "jobs"},
		},
		{
			name: "short runs dropped",
			text: "go is ok",
			want: nil,
		},
		{
			name: "lowercased",
			text: "Kubernetes CLUSTER Migration",
			want: []string{"kubernetes", "cluster", "migration"},
		},
		{
			name: "digits split runs",
			text: "abc1def k8s cluster2",
			want: []string{"abc", "def", "cluster"},
		},
		{
			name: "punctuation splits runs",
			text: "don't stop-me now",
			want: []string{"don", "stop", "now"},
		},
		{
			name: "duplicates preserved in order",
			text: "the cat and the cat",
			want: []string{"the", "cat", "and", "the", "cat"},
		},
		{
			name: "non-ascii breaks runs",
			text: "café résumé",
			want: []string{"caf", "sum"},
		},
		{
			name: "trailing run kept",
			text: "...still running",
			want: []string{"still", "running"},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "only separators",
			text: "-- 123 !?",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsASCIILetter(t *testing.T) {
	for _, b := range []byte{'a', 'z', 'A', 'Z', 'm'} {
		if !IsASCIILetter(b) {
			t.Errorf("IsASCIILetter(%q) = false", b)
		}
	}
	for _, b := range []byte{'0', '9', ' ', '-', '_', 0xC3, 0} {
		if IsASCIILetter(b) {
			t.Errorf("IsASCIILetter(%#x) = true", b)
		}
	}
}
