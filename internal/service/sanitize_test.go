package service

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello there", "hello there"},
		{"whitespace trimmed", "  padded  ", "padded"},
		{"tags stripped", "<b>bold</b> claim", "bold claim"},
		{"script content dropped", "<script>alert(1)</script>safe", "safe"},
		{"anchor stripped to text", `<a href="https://evil.example">click</a>`, "click"},
		{"empty stays empty", "", ""},
		{"only markup becomes empty", "<img src=x onerror=alert(1)>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.in); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
