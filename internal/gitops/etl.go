package gitops

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"gen3utils/internal/diagnostic"
	"gen3utils/internal/document"
)

// ValidateAgainstETL checks every field the portal displays against the
// per-doc_type property names produced by the ETL mapping.
func ValidateAgainstETL(cfg document.Value, propMap map[string]sets.Set[string]) []diagnostic.Diagnostic {
	c := &etlChecker{propMap: propMap}

	configs, _ := explorerConfigs(cfg)
	for _, exp := range configs {
		c.explorer(exp)
	}

	for _, viewer := range cfg.Get("studyViewerConfig").Items() {
		c.studyViewer(viewer)
	}

	return c.diags
}

type etlChecker struct {
	propMap map[string]sets.Set[string]
	diags   []diagnostic.Diagnostic
}

// props returns the properties of docType, or nil when it is unknown or
// has none.
func (c *etlChecker) props(docType string) sets.Set[string] {
	p := c.propMap[docType]
	if p.Len() == 0 {
		return nil
	}

	return p
}

func (c *etlChecker) notFound(field, path, docType string) {
	c.diags = append(c.diags, diagnostic.Field("Field [%s] in %s not found in etlMapping", field, path).WithIndex(docType))
}

func (c *etlChecker) fields(path string, fields []string, props sets.Set[string], docType string) {
	for _, f := range fields {
		if !props.Has(f) {
			c.notFound(f, path, docType)
		}
	}
}

func (c *etlChecker) explorer(exp document.Value) {
	docType := exp.Lookup("guppyConfig", "dataType").StringOr("")

	props := c.props(docType)
	if props == nil {
		c.notFound(docType, "explorerConfig.guppyConfig.dataType", docType)
	}

	for _, tab := range exp.Lookup("filters", "tabs").Items() {
		c.fields("explorerConfig.filters.tabs.fields", tab.Get("fields").Strings(), props, docType)
	}

	if table := exp.Get("table"); table.Get("enabled").Truthy() {
		c.fields("explorerConfig.table.fields", table.Get("fields").Strings(), props, docType)
	}

	c.fields("explorerConfig.charts", exp.Get("charts").Keys(), props, docType)

	manifestMapping := exp.Lookup("guppyConfig", "manifestMapping")
	if !manifestMapping.Truthy() {
		manifestMapping = exp.Get("manifestMapping")
	}

	resourceType := manifestMapping.Get("resourceIndexType").StringOr("")
	if resourceType == "" {
		return
	}

	resourceProps := c.props(resourceType)
	if resourceProps == nil {
		c.notFound(resourceType, "manifestMapping.resourceIndexType", resourceType)
		return
	}

	if idField := manifestMapping.Get("resourceIdField").StringOr(""); !resourceProps.Has(idField) {
		c.notFound(idField, "manifestMapping.resourceIdField", resourceType)
	}
}

func (c *etlChecker) studyViewer(viewer document.Value) {
	docType := viewer.Get("dataType").StringOr("")

	props := c.props(docType)
	if props == nil {
		c.notFound(docType, "studyViewerConfig.dataType", docType)
	}

	for _, name := range []string{"listItemConfig", "singleItemConfig"} {
		item := viewer.Get(name)
		c.fields("studyViewerConfig.blockFields."+name, item.Get("blockFields").Strings(), props, docType)
		c.fields("studyViewerConfig.tableFields."+name, item.Get("tableFields").Strings(), props, docType)
	}

	// the row accessor must exist in every index, not only in dataType
	rowAccessor := viewer.Get("rowAccessor").StringOr("")
	for _, dtype := range sets.List(sets.KeySet(c.propMap)) {
		if !c.propMap[dtype].Has(rowAccessor) {
			c.diags = append(c.diags, diagnostic.Field("rowAccessor [%s] not found in index with type %s", rowAccessor, dtype).WithIndex(dtype))
		}
	}
}
