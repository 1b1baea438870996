package scraper

import (
	"slices"

	"sjsage522/streamyardchat/helpers"
)

// StreamYard studio chat markup.
// The studio uses CSS-module class names, so match on the stable prefix.
const (
	DefaultContainerSelector = `div[class*="ChatMessages"]`
	DefaultMessageSelector   = `div[class*="ChatMessage_root"]`
	DefaultNicknameSelector  = `[class*="ChatMessage_name"]`
	DefaultTextSelector      = `[class*="ChatMessage_text"]`

	// ComposerSelector matches the chat input, which renders before the first message
	ComposerSelector = `textarea[placeholder*="message" i]`
)

// DefaultSelectors returns the built-in selector set
func DefaultSelectors() Selectors {
	return Selectors{
		Container: DefaultContainerSelector,
		Each:      DefaultMessageSelector,
		Nickname:  DefaultNicknameSelector,
		Text:      DefaultTextSelector,
	}
}

// Resolve returns each supplied selector, or the default for blank ones
func Resolve(container, each, nickname, text string) Selectors {
	return Selectors{
		Container: helpers.FirstNonEmpty(container, DefaultContainerSelector),
		Each:      helpers.FirstNonEmpty(each, DefaultMessageSelector),
		Nickname:  helpers.FirstNonEmpty(nickname, DefaultNicknameSelector),
		Text:      helpers.FirstNonEmpty(text, DefaultTextSelector),
	}
}

// ReadyCandidates lists, in priority order, selectors whose presence means
// the chat panel has rendered.
func ReadyCandidates(sel Selectors) []string {
	candidates := make([]string, 0, 3)
	for _, s := range []string{sel.Each, sel.Container, ComposerSelector} {
		if s == "" || slices.Contains(candidates, s) {
			continue
		}
		candidates = append(candidates, s)
	}
	return candidates
}
