// internal/words/words.go
//
// Word bank for round candidates.
//
// Responsibilities:
//   - Load the vocabulary from a configured file or fall back to the
//     embedded default list.
//   - Serve small random candidate sets, excluding words a session has
//     already used.
//
// Exhaustion policy: when every word has been used, Pick falls back to
// allowing repeats instead of failing. A party game should keep dealing
// words; a session that outlives the vocabulary sees old words again.
//
// Environment:
//   WORDS_FILE=/path/to/words.txt   (one word per line, '#' comments)

package words

import (
	"bufio"
	_ "embed"
	"errors"
	"math/rand"
	"os"
	"strings"
)

//go:embed default_words.txt
var embeddedWords string

// DefaultCandidates is how many words a drawer gets to choose from.
const DefaultCandidates = 3

// Bank is an immutable vocabulary serving random candidate sets. It is safe
// for concurrent use.
type Bank struct {
	words []string
}

// New loads the bank from path, or from the embedded default list when
// path is empty. Returns an error when the resulting vocabulary is empty.
func New(path string) (*Bank, error) {
	var list []string
	var err error
	if path != "" {
		list, err = readWordFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		list = normalizeLines(embeddedWords)
	}
	if len(list) == 0 {
		return nil, errors.New("words: vocabulary is empty")
	}
	return &Bank{words: list}, nil
}

// Len reports the vocabulary size.
func (b *Bank) Len() int { return len(b.words) }

// Pick returns up to n random words not present in excluding. When fewer
// than n unused words remain, already-used words fill the gap (see the
// exhaustion policy above). The bank itself is never mutated.
func (b *Bank) Pick(n int, excluding []string) []string {
	used := make(map[string]struct{}, len(excluding))
	for _, w := range excluding {
		used[strings.ToLower(w)] = struct{}{}
	}

	fresh := make([]string, 0, len(b.words))
	stale := make([]string, 0, len(used))
	for _, w := range b.words {
		if _, ok := used[w]; ok {
			stale = append(stale, w)
		} else {
			fresh = append(fresh, w)
		}
	}
	rand.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })
	if len(fresh) < n {
		rand.Shuffle(len(stale), func(i, j int) { stale[i], stale[j] = stale[j], stale[i] })
		fresh = append(fresh, stale...)
	}
	if len(fresh) > n {
		fresh = fresh[:n]
	}
	return fresh
}

// readWordFile loads one word per line, lowercased and trimmed, skipping
// blanks and '#' comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w := normalizeLine(sc.Text()); w != "" {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

func normalizeLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if w := normalizeLine(line); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func normalizeLine(line string) string {
	w := strings.TrimSpace(strings.ToLower(line))
	if w == "" || strings.HasPrefix(w, "#") {
		return ""
	}
	return w
}
