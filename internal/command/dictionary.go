package command

import (
	"context"
	"fmt"

	"gen3utils/internal/dictionary"
	"gen3utils/internal/document"
)

// loadDictionary fetches the dictionary named by global.dictionary_url of
// a manifest file.
func loadDictionary(ctx context.Context, cli *CLI, manifestFile string) (*dictionary.Graph, error) {
	doc, err := document.LoadFile(manifestFile)
	if err != nil {
		return nil, err
	}

	url := doc.Lookup("global", "dictionary_url").StringOr("")
	if url == "" {
		return nil, fmt.Errorf("no dictionary URL in manifest %s", manifestFile)
	}

	cli.log().Info("loading dictionary", "url", url)

	return cli.Dictionary.Load(ctx, url)
}
