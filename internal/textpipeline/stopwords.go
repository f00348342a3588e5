package textpipeline

// defaultStopWords is the built-in English stop-word set used when no corpus-
// specific list is supplied. The indexer carries no bundled corpus of
// English prose, so this mirrors the small fallback list original_source's
// text_processing.py falls back to when NLTK's stopword corpus is
// unavailable, extended with the handful of extra words
// query_processing.py's parser fallback adds.
var defaultStopWords = []string{
	"a", "an", "the",
	"in", "on", "at", "of", "to", "for", "with", "by", "about", "as",
	"into", "like", "through", "after", "over", "between", "out", "off",
	"and", "or", "not",
	"is", "are", "was", "were", "be", "been", "being",
	"it", "its", "this", "that", "these", "those",
}
