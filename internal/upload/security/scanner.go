package security

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Verdict is the outcome of scanning one upload. A file is safe only when no
// check found anything; Confidence is informational and never used as a
// pass/fail threshold on its own.
type Verdict struct {
	IsSafe     bool     `json:"is_safe"`
	Threats    []string `json:"threats"`
	Confidence int      `json:"confidence"`
}

// Executable magic numbers matched at offset 0.
var executableSignatures = [][]byte{
	{0x4D, 0x5A},             // PE / MZ
	{0x7F, 0x45, 0x4C, 0x46}, // ELF
	{0xCA, 0xFE, 0xBA, 0xBE}, // Java class
	{0xFE, 0xED, 0xFA, 0xCE}, // Mach-O 32-bit
	{0xFE, 0xED, 0xFA, 0xCF}, // Mach-O 64-bit
	{0xCE, 0xFA, 0xED, 0xFE}, // Mach-O 32-bit, reversed
	{0xCF, 0xFA, 0xED, 0xFE}, // Mach-O 64-bit, reversed
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".bmp":  true,
}

var suspiciousExtensions = map[string]bool{
	".exe": true,
	".bat": true,
	".cmd": true,
	".com": true,
	".scr": true,
	".msi": true,
	".dll": true,
	".php": true,
	".asp": true,
	".jsp": true,
	".js":  true,
	".vbs": true,
	".ps1": true,
	".sh":  true,
}

var traversalPatterns = []string{
	"../",
	"..\\",
	"~/",
	"/etc/",
	"/proc/",
	"/sys/",
	"c:\\",
}

// Scan runs every check against the file. Checks are independent and
// additive: each one only subtracts from the confidence score and appends a
// threat. An internal panic yields a fail-closed verdict.
func Scan(data []byte, filename string) (verdict Verdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = Verdict{
				IsSafe:     false,
				Threats:    []string{"Security scan failed"},
				Confidence: 0,
			}
		}
	}()

	confidence := 100
	threats := []string{}
	lowerName := strings.ToLower(filename)
	ext := strings.ToLower(filepath.Ext(lowerName))

	for _, sig := range executableSignatures {
		if bytes.HasPrefix(data, sig) {
			threats = append(threats, "Executable file detected")
			confidence -= 50
			break
		}
	}

	if imageExtensions[ext] {
		head := data
		if len(head) > 1024 {
			head = head[:1024]
		}
		text := strings.ToLower(string(head))
		if strings.Contains(text, "<script") || strings.Contains(text, "javascript:") {
			threats = append(threats, "Potential script content in image")
			confidence -= 40
		}
	}

	if suspiciousExtensions[ext] {
		threats = append(threats, "Suspicious file extension")
		confidence -= 30
	}

	if strings.HasSuffix(lowerName, ".zip") && len(data) < 1024 {
		threats = append(threats, "Potential zip bomb")
		confidence -= 25
	}

	if strings.ContainsRune(filename, 0) {
		threats = append(threats, "Null byte in filename")
		confidence -= 20
	}

	for _, pattern := range traversalPatterns {
		if strings.Contains(lowerName, pattern) {
			threats = append(threats, "Path traversal attempt in filename")
			confidence -= 15
		}
	}

	if blacklisted := checkHashBlacklist(data); blacklisted {
		threats = append(threats, "File hash is blacklisted")
		confidence = 0
	}

	if confidence < 0 {
		confidence = 0
	}

	return Verdict{
		IsSafe:     len(threats) == 0,
		Threats:    threats,
		Confidence: confidence,
	}
}

// checkHashBlacklist is a lookup hook for a malware-hash service. No backing
// service is wired, so it always reports the file as not blacklisted; it must
// not be counted as a real control.
func checkHashBlacklist(data []byte) bool {
	return false
}

// Sanitize returns a filename stripped of path separators, parent references,
// NUL bytes and characters unsafe on common filesystems, truncated to 255
// bytes with the extension preserved. It is advisory cleanup, not a security
// gate.
func Sanitize(filename string) string {
	name := strings.ReplaceAll(filename, "\x00", "")

	// Drop any directory component, whichever separator style was used.
	if idx := strings.LastIndexAny(name, "/\\"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "..", "")

	name = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '|', '?', '*':
			return -1
		}
		return r
	}, name)

	ext := filepath.Ext(name)
	if len(ext) > 32 {
		ext = ""
	}
	base := strings.TrimSuffix(name, ext)

	if len(base)+len(ext) > 255 {
		base = base[:255-len(ext)]
	}

	if base == "" && ext == "" {
		return fmt.Sprintf("upload-%d", time.Now().UnixMilli())
	}
	if base == "" {
		// Nothing but an extension survived; keep it on a generated name.
		return fmt.Sprintf("upload-%d%s", time.Now().UnixMilli(), ext)
	}
	return base + ext
}
