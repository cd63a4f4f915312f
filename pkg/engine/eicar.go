package engine

import "bytes"

// EicarString is the industry-standard harmless antivirus test string.
// Detecting it proves the pipeline works without handling real malware.
const EicarString = `X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`

// EicarSHA256 is the digest of a file containing exactly the test string.
// The hash path catches the canonical eicar.com file even when the substring
// check is bounded away from the match.
const EicarSHA256 = "275a021bbfb6489e54d471899f7db9d1663fc695ec2fe2a2c4538aabf651fd0f"

// EicarReason is the fixed user-facing explanation. The wording must make
// clear this is a deliberate test, not a threat.
const EicarReason = "EICAR test string detected (harmless test signature)."

// isEicar reports whether the file is the EICAR test signature: either the
// full-content hash equals the canonical digest, or the leading sample
// literally contains the test string. EICAR takes precedence over signature
// lookup regardless of the file's extension.
func isEicar(hashHex string, sample []byte) bool {
	if hashHex == EicarSHA256 {
		return true
	}
	return bytes.Contains(sample, []byte(EicarString))
}
