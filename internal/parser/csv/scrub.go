package csv

import (
	"bytes"
	"io"
	"sort"

	"golang.org/x/text/transform"
)

// replacer is a transform.Transformer that rewrites every occurrence of pat
// to repl. Matching only ever looks at input bytes, so text produced by a
// replacement is never matched again.
type replacer struct {
	transform.NopResetter
	pat, repl []byte
}

func (t *replacer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		rest := src[nSrc:]
		i := bytes.Index(rest, t.pat)
		if i < 0 {
			// A tail that could still grow into a match waits for more input.
			keep := 0
			if !atEOF {
				keep = partialSuffix(rest, t.pat)
			}
			n := len(rest) - keep
			if m := copy(dst[nDst:], rest[:n]); m < n {
				return nDst + m, nSrc + m, transform.ErrShortDst
			}
			nDst += n
			nSrc += n
			if keep > 0 {
				return nDst, nSrc, transform.ErrShortSrc
			}
			return nDst, nSrc, nil
		}

		if len(dst)-nDst < i+len(t.repl) {
			m := copy(dst[nDst:], rest[:i])
			return nDst + m, nSrc + m, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], rest[:i])
		nDst += copy(dst[nDst:], t.repl)
		nSrc += i + len(t.pat)
	}
	return nDst, nSrc, nil
}

// partialSuffix returns the length of the longest proper prefix of pat that
// b ends with.
func partialSuffix(b, pat []byte) int {
	for k := min(len(b), len(pat)-1); k > 0; k-- {
		if bytes.HasSuffix(b, pat[:k]) {
			return k
		}
	}
	return 0
}

// scrub wraps r with one replacer per replacement. Replacements are applied
// in a stable order (longest pattern first) so overlapping rules behave the
// same on every run.
func scrub(r io.Reader, replace map[string]string) io.Reader {
	pats := make([]string, 0, len(replace))
	for pat, repl := range replace {
		if pat != "" && pat != repl {
			pats = append(pats, pat)
		}
	}
	if len(pats) == 0 {
		return r
	}
	sort.Slice(pats, func(i, j int) bool {
		if len(pats[i]) != len(pats[j]) {
			return len(pats[i]) > len(pats[j])
		}
		return pats[i] < pats[j]
	})

	ts := make([]transform.Transformer, len(pats))
	for i, pat := range pats {
		ts[i] = &replacer{pat: []byte(pat), repl: []byte(replace[pat])}
	}
	return transform.NewReader(r, transform.Chain(ts...))
}
