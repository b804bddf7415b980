// Package classify calls the LLM classification endpoint in three variants:
// batched full-taxonomy tagging from text, single-item tagging from images,
// and narrow composer-name extraction used by the enforcement pass. It also
// owns the defensive parsing of model responses into Results.
package classify
