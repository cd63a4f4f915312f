package heuristics

import "bytes"

// Lightweight magic-number table. Order matters: longer, more specific
// signatures are checked before short ones so "MZ" cannot shadow anything.
var magicSignatures = []struct {
	kind  string
	magic []byte
}{
	{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}},
	{"elf", []byte{0x7f, 'E', 'L', 'F'}},
	{"pdf", []byte("%PDF")},
	{"zip", []byte{'P', 'K', 0x03, 0x04}},
	{"gif", []byte("GIF8")},
	{"jpg", []byte{0xff, 0xd8, 0xff}},
	{"script", []byte("#!")},
	{"pe", []byte("MZ")},
}

// classText is the expectation for plain-text extensions. No magic signature
// ever resolves to it, so any recognized header under a text extension is a
// mismatch. That is what catches an executable renamed to .txt.
const classText = "text"

// extExpectations maps a claimed extension to the semantic class its header
// should carry. Extensions missing from this table imply nothing and are
// never flagged. OOXML formats are ZIP containers on disk.
var extExpectations = map[string]string{
	".exe":  "pe",
	".dll":  "pe",
	".scr":  "pe",
	".sys":  "pe",
	".so":   "elf",
	".sh":   "script",
	".pdf":  "pdf",
	".zip":  "zip",
	".jar":  "zip",
	".docx": "zip",
	".xlsx": "zip",
	".pptx": "zip",
	".png":  "png",
	".jpg":  "jpg",
	".jpeg": "jpg",
	".gif":  "gif",
	".txt":  classText,
	".log":  classText,
	".md":   classText,
	".csv":  classText,
}

// HeaderLen is how many leading bytes the engine must capture for magic
// detection. Longest signature is 8 bytes; 16 leaves headroom.
const HeaderLen = 16

func detectMagicType(header []byte) (string, bool) {
	if len(header) == 0 {
		return "", false
	}
	for _, sig := range magicSignatures {
		if bytes.HasPrefix(header, sig.magic) {
			return sig.kind, true
		}
	}
	return "", false
}

func expectedTypeForExtension(ext string) (string, bool) {
	kind, ok := extExpectations[ext]
	return kind, ok
}
