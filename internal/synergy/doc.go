// Package synergy answers "what plays well with this card" questions over
// the indexed corpus. It bridges the knowledge store into a Genkit
// retriever, post-filters retrieved candidates so the target card never
// recommends itself, and synthesizes a deck-builder answer with a
// generative model.
package synergy
