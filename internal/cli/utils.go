package cli

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/BlackVectorOps/filesentry/pkg/models"
)

// BoolFromString parses the lenient boolean literals the command contract
// accepts. Unrecognized values fall back to the default rather than failing:
// front-ends pass these through from user settings.
func BoolFromString(val string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// NormalizeStorage collapses the backend flag onto the two supported names.
// Anything that is not exactly sqlite means the flat-file backend.
func NormalizeStorage(val string) string {
	if strings.ToLower(strings.TrimSpace(val)) == models.BackendSQLite {
		return models.BackendSQLite
	}
	return models.BackendJSON
}

// SetupLogging configures logrus for CLI use: stderr only, because stdout
// carries exactly one JSON document per invocation.
func SetupLogging(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: false, FullTimestamp: true})

	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.WarnLevel
	}
	log.SetLevel(parsed)
}

// SuggestCommand offers a near-miss correction for an unknown subcommand.
func SuggestCommand(cmd string) string {
	commands := []string{"scan-file", "scan-dir", "update-signatures", "history", "version"}
	bestMatch := ""
	minDist := 100
	cmdLower := strings.ToLower(cmd)
	for _, c := range commands {
		dist := levenshtein(cmdLower, c)
		if dist < minDist {
			minDist = dist
			bestMatch = c
		}
	}
	if minDist <= 3 {
		return bestMatch
	}
	return ""
}

func levenshtein(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	n, m := len(r1), len(r2)
	if n > m {
		r1, r2 = r2, r1
		n, m = m, n
	}
	current := make([]int, n+1)
	for i := 0; i <= n; i++ {
		current[i] = i
	}
	for j := 1; j <= m; j++ {
		previous := current[0]
		current[0] = j
		targetChar := r2[j-1]
		for i := 1; i <= n; i++ {
			temp := current[i]
			cost := 0
			if r1[i-1] != targetChar {
				cost = 1
			}
			current[i] = min(current[i-1]+1, current[i]+1, previous+cost)
			previous = temp
		}
	}
	return current[n]
}
