package registry

import (
	"github.com/flowdeck/flowdeck/pkg/cache"
	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/producers/fetch"
	"github.com/flowdeck/flowdeck/pkg/producers/prompt"
)

// RegisterDefaults registers the built-in producer factories and their
// context formatters.
func (r *Registry) RegisterDefaults(store cache.Cache, llm prompt.Config) {
	// Fetch node: scrapes a URL into text content.
	r.RegisterProducer(fetch.NewFetchProducerFactory(store))
	r.RegisterFormatter(models.KindFetch, fetch.FormatRecord)

	// Prompt node: runs a chat completion over the prompt plus upstream
	// context assembled through FormatRecord.
	r.RegisterProducer(prompt.NewPromptProducerFactory(llm, r.FormatRecord))
	r.RegisterFormatter(models.KindPrompt, prompt.FormatRecord)
}
