package chunker

import "unicode"

// Noise weighting: whitespace proportion dominates, repeated punctuation and
// embedded script/style text contribute the rest. The result is clamped to
// [0,1].
const (
	noiseWhitespaceWeight = 0.5
	noisePunctWeight      = 0.3
	noiseScriptWeight     = 0.2
)

// noiseRatio estimates the share of non-content characters in a chunk.
// raw is the chunk text before whitespace normalization; scriptBytes is the
// length of script/style text that was embedded in the chunk's source region.
func noiseRatio(raw string, scriptBytes int) float64 {
	if len(raw) == 0 && scriptBytes == 0 {
		return 0
	}

	total := 0
	whitespace := 0
	punctRun := 0

	var prev rune
	runLen := 0
	for _, r := range raw {
		total++
		if unicode.IsSpace(r) {
			whitespace++
		}
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			if r == prev {
				runLen++
				if runLen == 3 {
					punctRun += 3
				} else if runLen > 3 {
					punctRun++
				}
			} else {
				runLen = 1
			}
		} else {
			runLen = 0
		}
		prev = r
	}

	var wsShare, punctShare float64
	if total > 0 {
		wsShare = float64(whitespace) / float64(total)
		punctShare = float64(punctRun) / float64(total)
	}
	var scriptShare float64
	if scriptBytes > 0 {
		scriptShare = float64(scriptBytes) / float64(scriptBytes+total)
	}

	noise := noiseWhitespaceWeight*wsShare + noisePunctWeight*punctShare + noiseScriptWeight*scriptShare
	if noise < 0 {
		return 0
	}
	if noise > 1 {
		return 1
	}
	return noise
}
