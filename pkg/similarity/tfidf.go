package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var wordToken = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// ngrams returns the unigram and bigram term counts of a lower-cased text
func ngrams(text string) map[string]float64 {
	tokens := wordToken.FindAllString(strings.ToLower(text), -1)
	counts := make(map[string]float64, len(tokens)*2)
	for i, t := range tokens {
		counts[t]++
		if i > 0 {
			counts[tokens[i-1]+" "+t]++
		}
	}
	return counts
}

// TFIDFCosine fits a unigram+bigram TF-IDF model on the two texts with
// smoothed IDF (ln((1+n)/(1+df))+1) and returns the cosine similarity of
// their L2-normalized vectors. Empty or token-free texts score 0.0.
func TFIDFCosine(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0.0
	}
	ca, cb := ngrams(a), ngrams(b)
	if len(ca) == 0 || len(cb) == 0 {
		return 0.0
	}

	vocab := make([]string, 0, len(ca)+len(cb))
	for t := range ca {
		vocab = append(vocab, t)
	}
	for t := range cb {
		if _, ok := ca[t]; !ok {
			vocab = append(vocab, t)
		}
	}
	sort.Strings(vocab)

	const docs = 2.0
	var dot, normA, normB float64
	for _, t := range vocab {
		df := 0.0
		if ca[t] > 0 {
			df++
		}
		if cb[t] > 0 {
			df++
		}
		idf := math.Log((1+docs)/(1+df)) + 1
		wa, wb := ca[t]*idf, cb[t]*idf
		dot += wa * wb
		normA += wa * wa
		normB += wb * wb
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Min(cos, 1.0)
}
