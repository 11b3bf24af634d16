package gitops

import (
	"gen3utils/internal/diagnostic"
	"gen3utils/internal/document"
)

var manifestMappingFields = []string{
	"resourceIndexType",
	"resourceIdField",
	"referenceIdFieldInResourceIndex",
	"referenceIdFieldInDataIndex",
}

// ValidateSyntax returns the first required field missing from cfg, or nil.
func ValidateSyntax(cfg document.Value) *diagnostic.Diagnostic {
	graphql := cfg.Get("graphql")
	if !graphql.Truthy() {
		return missing("graphql")
	}

	boardCounts := graphql.Get("boardCounts")
	if !boardCounts.Truthy() || !boardCounts.IsArray() {
		return missing("graphql.boardCounts")
	}

	for _, item := range boardCounts.Items() {
		if d := requireFields("graphql.boardCounts", item, "graphql", "name", "plural"); d != nil {
			return d
		}
	}

	if !graphql.Get("chartCounts").Truthy() {
		return missing("graphql.chartCounts")
	}

	if components := cfg.Get("components"); components.Truthy() {
		index := components.Get("index")
		if !index.Truthy() {
			return missing("components.index")
		}

		for _, item := range index.Get("homepageChartNodes").Items() {
			if d := requireFields("components.index.homepageChartNodes", item, "node", "name"); d != nil {
				return d
			}
		}
	}

	configs, d := explorerConfigs(cfg)
	if d != nil {
		return d
	}

	for _, exp := range configs {
		if d := explorerSyntax(exp); d != nil {
			return d
		}
	}

	for _, viewer := range cfg.Get("studyViewerConfig").Items() {
		if d := requireFields("studyViewerConfig", viewer, "dataType", "listItemConfig", "rowAccessor"); d != nil {
			return d
		}
	}

	return nil
}

// explorerConfigs returns explorerConfig (a list or a single object), or
// dataExplorerConfig followed by the optional fileExplorerConfig.
func explorerConfigs(cfg document.Value) ([]document.Value, *diagnostic.Diagnostic) {
	if exp := cfg.Get("explorerConfig"); exp.Truthy() {
		if exp.IsArray() {
			return exp.Items(), nil
		}

		return []document.Value{exp}, nil
	}

	data := cfg.Get("dataExplorerConfig")
	if !data.Truthy() {
		return nil, missing("(data)explorerConfig")
	}

	configs := []document.Value{data}
	if file := cfg.Get("fileExplorerConfig"); file.Truthy() {
		configs = append(configs, file)
	}

	return configs, nil
}

func explorerSyntax(exp document.Value) *diagnostic.Diagnostic {
	filters := exp.Get("filters")
	if !filters.Truthy() {
		return missing("explorerConfig.filters")
	}

	tabs := filters.Get("tabs")
	if !tabs.Truthy() {
		return missing("explorerConfig.filters.tabs")
	}

	for _, tab := range tabs.Items() {
		if d := requireFields("explorerConfig.filters.tabs", tab, "title", "fields"); d != nil {
			return d
		}
	}

	guppy := exp.Get("guppyConfig")
	if !guppy.Truthy() {
		return missing("explorerConfig.guppyConfig")
	}

	if !guppy.Get("dataType").Truthy() {
		return missing("explorerConfig.guppyConfig.dataType")
	}

	manifestMapping := guppy.Get("manifestMapping")
	if manifestMapping.Truthy() && hasManifestButton(exp) {
		if d := requireFields("explorerConfig.guppyConfig.manifestMapping", manifestMapping, manifestMappingFields...); d != nil {
			return d
		}
	}

	return nil
}

func hasManifestButton(exp document.Value) bool {
	for _, b := range exp.Get("buttons").Items() {
		if b.Get("enabled").Truthy() && b.Get("type").StringOr("") == "manifest" {
			return true
		}
	}

	return false
}

func requireFields(path string, item document.Value, fields ...string) *diagnostic.Diagnostic {
	for _, f := range fields {
		if !item.Get(f).Truthy() {
			return missing(path + "." + f)
		}
	}

	return nil
}

func missing(path string) *diagnostic.Diagnostic {
	d := diagnostic.FieldSyntax(path)
	return &d
}
