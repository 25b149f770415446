package security

import (
	"strings"
	"testing"
)

// A minimal JPEG header is enough for checks that only look at the prefix.
var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestScan_CleanImage(t *testing.T) {
	verdict := Scan(jpegHeader, "wedding-photo.jpg")

	if !verdict.IsSafe {
		t.Fatalf("Expected clean image to pass, got threats: %v", verdict.Threats)
	}
	if verdict.Confidence != 100 {
		t.Fatalf("Expected confidence 100, got %d", verdict.Confidence)
	}
}

func TestScan_ExecutableDisguisedAsImage(t *testing.T) {
	// PE header behind an image extension
	data := append([]byte{0x4D, 0x5A}, make([]byte, 64)...)

	verdict := Scan(data, "photo.png")

	if verdict.IsSafe {
		t.Fatal("Expected executable content to be rejected")
	}
	if !hasThreat(verdict, "Executable file detected") {
		t.Fatalf("Expected executable threat, got %v", verdict.Threats)
	}
	if verdict.Confidence != 50 {
		t.Fatalf("Expected confidence 50, got %d", verdict.Confidence)
	}
}

func TestScan_ScriptContentInImage(t *testing.T) {
	data := []byte(`GIF89a <script>alert("xss")</script>`)

	verdict := Scan(data, "animation.gif")

	if verdict.IsSafe {
		t.Fatal("Expected embedded script to be rejected")
	}
	if !hasThreat(verdict, "Potential script content in image") {
		t.Fatalf("Expected script threat, got %v", verdict.Threats)
	}
}

func TestScan_SuspiciousExtension(t *testing.T) {
	verdict := Scan([]byte("echo hello"), "installer.exe")

	if verdict.IsSafe {
		t.Fatal("Expected .exe to be rejected")
	}
	if !hasThreat(verdict, "Suspicious file extension") {
		t.Fatalf("Expected extension threat, got %v", verdict.Threats)
	}
}

func TestScan_TinyZip(t *testing.T) {
	verdict := Scan([]byte("PK\x03\x04"), "bomb.zip")

	if !hasThreat(verdict, "Potential zip bomb") {
		t.Fatalf("Expected zip bomb threat, got %v", verdict.Threats)
	}
}

func TestScan_PathTraversalInFilename(t *testing.T) {
	verdict := Scan(jpegHeader, "../../etc/passwd.jpg")

	if verdict.IsSafe {
		t.Fatal("Expected traversal filename to be rejected")
	}
	if !hasThreat(verdict, "Path traversal attempt in filename") {
		t.Fatalf("Expected traversal threat, got %v", verdict.Threats)
	}
}

func TestScan_NullByteInFilename(t *testing.T) {
	verdict := Scan(jpegHeader, "photo.jpg\x00.exe")

	if !hasThreat(verdict, "Null byte in filename") {
		t.Fatalf("Expected null byte threat, got %v", verdict.Threats)
	}
}

func TestScan_ChecksAreAdditive(t *testing.T) {
	// Executable magic, traversal and null byte together
	data := append([]byte{0x7F, 0x45, 0x4C, 0x46}, make([]byte, 32)...)

	verdict := Scan(data, "../tool\x00.sh")

	if len(verdict.Threats) < 3 {
		t.Fatalf("Expected at least 3 threats, got %v", verdict.Threats)
	}
	if verdict.Confidence < 0 {
		t.Fatalf("Confidence must never go below zero, got %d", verdict.Confidence)
	}
}

func TestScan_Idempotent(t *testing.T) {
	data := append([]byte{0x4D, 0x5A}, make([]byte, 16)...)

	first := Scan(data, "photo.png")
	second := Scan(data, "photo.png")

	if first.IsSafe != second.IsSafe || first.Confidence != second.Confidence {
		t.Fatal("Expected scan verdicts to be identical across runs")
	}
	if len(first.Threats) != len(second.Threats) {
		t.Fatalf("Expected identical threats, got %v and %v", first.Threats, second.Threats)
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "photo.jpg", "photo.jpg"},
		{"strips directories", "/var/tmp/photo.jpg", "photo.jpg"},
		{"strips windows path", `C:\Users\guest\photo.jpg`, "photo.jpg"},
		{"strips parent refs", "..photo.jpg", "photo.jpg"},
		{"strips unsafe chars", `we<dd>ing:"day".png`, "weddingday.png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Sanitize(tc.in)
			if got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitize_Properties(t *testing.T) {
	inputs := []string{
		"photo.jpg",
		"../../../etc/passwd",
		strings.Repeat("a", 400) + ".jpg",
		"name\x00.png",
		`..\..\boot.ini`,
		"",
		".jpg",
	}

	for _, in := range inputs {
		got := Sanitize(in)

		if got == "" {
			t.Fatalf("Sanitize(%q) returned empty name", in)
		}
		if len(got) > 255 {
			t.Fatalf("Sanitize(%q) exceeds 255 bytes: %d", in, len(got))
		}
		for _, bad := range []string{"..", "/", `\`, "\x00"} {
			if strings.Contains(got, bad) {
				t.Fatalf("Sanitize(%q) = %q still contains %q", in, got, bad)
			}
		}
	}
}

func TestSanitize_PreservesExtensionWhenTruncating(t *testing.T) {
	got := Sanitize(strings.Repeat("x", 300) + ".jpeg")

	if len(got) > 255 {
		t.Fatalf("Expected at most 255 bytes, got %d", len(got))
	}
	if !strings.HasSuffix(got, ".jpeg") {
		t.Fatalf("Expected extension to survive truncation, got %q", got)
	}
}

func hasThreat(v Verdict, threat string) bool {
	for _, t := range v.Threats {
		if t == threat {
			return true
		}
	}
	return false
}
