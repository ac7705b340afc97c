package ingest

import (
	"github.com/amantheshaikh/untainted/pkg/untainted/resolve"
)

// Pipeline orchestrates the label flow:
// markup stripping → tokenization → taxonomy resolution
type Pipeline struct {
	tokenizer *Tokenizer
	resolver  *resolve.Resolver
}

// NewPipeline creates a pipeline with the given components
func NewPipeline(tokenizer *Tokenizer, resolver *resolve.Resolver) *Pipeline {
	return &Pipeline{
		tokenizer: tokenizer,
		resolver:  resolver,
	}
}

// Processed is an ingredient statement after resolution.
type Processed struct {
	Tokens      []string
	Ingredients []resolve.Ingredient
}

// Process runs one ingredient statement through the pipeline.
func (p *Pipeline) Process(text string) Processed {
	tokens := p.tokenizer.Tokenize(StripMarkup(text))
	return Processed{
		Tokens:      tokens,
		Ingredients: p.resolver.ResolveAll(tokens),
	}
}

// Resolver returns the resolver used by the pipeline.
func (p *Pipeline) Resolver() *resolve.Resolver {
	return p.resolver
}

// Tokenizer returns the tokenizer used by the pipeline.
func (p *Pipeline) Tokenizer() *Tokenizer {
	return p.tokenizer
}
