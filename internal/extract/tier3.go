package extract

import (
	"archive/zip"
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"path"
	"strings"

	"github.com/twinlift/twinlift/internal/model"
)

// maxEntryBytes caps how much of an archive entry is read for descriptor
// sniffing and document text extraction.
const maxEntryBytes = 4 << 20

// tier3 scans the archive directly: descriptor entries are traversed for
// shell/submodel identities, everything else is listed as a Document.
// It never fails on a structurally valid archive, even with zero assets.
type tier3 struct{}

func newTier3() *tier3 { return &tier3{} }

func (t *tier3) Name() string    { return "tier3" }
func (t *tier3) Available() bool { return true }

func (t *tier3) Parse(ctx context.Context, req ParseRequest) (*model.ExtractionResult, error) {
	reader, err := zip.OpenReader(req.Path)
	if err != nil {
		// Validation upstream already checked the magic bytes; a failure
		// here means the central directory is corrupt.
		return nil, model.NewError(model.ErrInvalidArchive, req.Path, err)
	}
	defer reader.Close()

	result := &model.ExtractionResult{}

	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.FileInfo().IsDir() || isPackagePlumbing(entry.Name) {
			continue
		}

		data, readable := readEntry(entry)

		if readable && isDescriptor(entry.Name, data) {
			t.parseDescriptor(entry.Name, data, result)
			continue
		}

		doc := model.Document{
			Filename: entry.Name,
			Size:     int64(entry.UncompressedSize64),
			Type:     typeForFilename(entry.Name),
		}
		if readable {
			doc.Text = TextForDocument(entry.Name, data)
		}
		result.Documents = append(result.Documents, doc)
	}

	return result, nil
}

// readEntry reads up to maxEntryBytes of an archive entry. A read failure
// on one entry never fails the scan.
func readEntry(entry *zip.File) ([]byte, bool) {
	rc, err := entry.Open()
	if err != nil {
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxEntryBytes))
	if err != nil {
		return nil, false
	}
	return data, true
}

// isPackagePlumbing reports whether an entry is OPC container plumbing
// rather than payload (relationship records and content-type manifests).
func isPackagePlumbing(name string) bool {
	lower := strings.ToLower(name)
	if path.Base(lower) == "[content_types].xml" {
		return true
	}
	return strings.Contains(lower, "_rels/") || strings.HasSuffix(lower, ".rels")
}

// isDescriptor reports whether an entry holds shell/submodel descriptors.
// Matches by extension/namespace convention first, then by content marker
// for generically named XML/JSON entries.
func isDescriptor(name string, data []byte) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".aas.xml") || strings.HasSuffix(lower, ".aas.json") {
		return true
	}
	if !strings.HasSuffix(lower, ".xml") && !strings.HasSuffix(lower, ".json") {
		return false
	}
	if strings.Contains(lower, "aasx/") {
		return true
	}
	content := string(data)
	return strings.Contains(content, "assetAdministrationShell") ||
		strings.Contains(content, "admin-shell.io")
}

func (t *tier3) parseDescriptor(name string, data []byte, result *model.ExtractionResult) {
	format := "xml"
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		format = "json"
	}

	var assets []model.Asset
	var submodels []model.Submodel
	if format == "json" {
		assets, submodels = parseJSONDescriptor(data)
	} else {
		assets, submodels = parseXMLDescriptor(data)
	}

	for i := range assets {
		assets[i].Provenance.Format = format
	}
	for i := range submodels {
		submodels[i].Provenance.Format = format
	}
	result.Assets = append(result.Assets, assets...)
	result.Submodels = append(result.Submodels, submodels...)
}

// parseJSONDescriptor walks a JSON environment document for shells and
// submodels. Unknown shapes yield zero entities, never an error.
func parseJSONDescriptor(data []byte) ([]model.Asset, []model.Submodel) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil
	}

	var assets []model.Asset
	for _, key := range []string{"assetAdministrationShells", "shells", "assets"} {
		items, ok := doc[key].([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			assets = append(assets, model.Asset{
				ID:          identityOf(m),
				ShortID:     stringField(m, "idShort"),
				Description: descriptionOf(m),
				Kind:        kindOf(m),
			})
		}
		break
	}

	var submodels []model.Submodel
	if items, ok := doc["submodels"].([]any); ok {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			sm := model.Submodel{
				ID:          identityOf(m),
				ShortID:     stringField(m, "idShort"),
				Description: descriptionOf(m),
				Kind:        kindOf(m),
			}
			if elems, ok := m["submodelElements"].([]any); ok {
				for _, e := range elems {
					em, ok := e.(map[string]any)
					if !ok {
						continue
					}
					sm.Elements = append(sm.Elements, model.SubmodelElement{
						Name:        stringField(em, "idShort"),
						Value:       stringField(em, "value"),
						Unit:        stringField(em, "unit"),
						SemanticRef: semanticRefOf(em),
					})
				}
			}
			submodels = append(submodels, sm)
		}
	}

	return assets, submodels
}

// identityOf resolves the entity id: "id" as string, or the nested
// v2-style {"identification": {"id": ...}} shape.
func identityOf(m map[string]any) string {
	if id := stringField(m, "id"); id != "" {
		return id
	}
	if ident, ok := m["identification"].(map[string]any); ok {
		return stringField(ident, "id")
	}
	return ""
}

// descriptionOf handles both plain-string and lang-string-list descriptions.
func descriptionOf(m map[string]any) string {
	switch d := m["description"].(type) {
	case string:
		return d
	case []any:
		for _, entry := range d {
			em, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if text := stringField(em, "text"); text != "" {
				return text
			}
		}
	}
	return ""
}

func kindOf(m map[string]any) string {
	if k := stringField(m, "kind"); k != "" {
		return k
	}
	return stringField(m, "assetKind")
}

func semanticRefOf(m map[string]any) string {
	ref, ok := m["semanticId"].(map[string]any)
	if !ok {
		return ""
	}
	keys, ok := ref["keys"].([]any)
	if !ok || len(keys) == 0 {
		return ""
	}
	if key, ok := keys[0].(map[string]any); ok {
		return stringField(key, "value")
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// xmlNode is a generic recursive XML element used for namespace-agnostic
// descriptor traversal.
type xmlNode struct {
	XMLName  xml.Name
	Content  string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

// parseXMLDescriptor walks an XML environment document for shell and
// submodel elements by local name, ignoring namespaces.
func parseXMLDescriptor(data []byte) ([]model.Asset, []model.Submodel) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, nil
	}

	var assets []model.Asset
	var submodels []model.Submodel
	walkXML(&root, func(n *xmlNode) {
		switch strings.ToLower(n.XMLName.Local) {
		case "assetadministrationshell":
			assets = append(assets, model.Asset{
				ID:          xmlIdentity(n),
				ShortID:     xmlChildText(n, "idShort"),
				Description: xmlDescription(n),
				Kind:        xmlChildText(n, "assetKind"),
			})
		case "submodel":
			sm := model.Submodel{
				ID:          xmlIdentity(n),
				ShortID:     xmlChildText(n, "idShort"),
				Description: xmlDescription(n),
				Kind:        xmlChildText(n, "kind"),
			}
			walkXML(n, func(c *xmlNode) {
				if strings.ToLower(c.XMLName.Local) == "property" {
					sm.Elements = append(sm.Elements, model.SubmodelElement{
						Name:  xmlChildText(c, "idShort"),
						Value: xmlChildText(c, "value"),
						Unit:  xmlChildText(c, "unit"),
					})
				}
			})
			submodels = append(submodels, sm)
		}
	})

	return assets, submodels
}

func walkXML(n *xmlNode, fn func(*xmlNode)) {
	for i := range n.Children {
		child := &n.Children[i]
		fn(child)
		walkXML(child, fn)
	}
}

func xmlIdentity(n *xmlNode) string {
	if id := xmlChildText(n, "id"); id != "" {
		return id
	}
	if ident := xmlChild(n, "identification"); ident != nil {
		return strings.TrimSpace(ident.Content)
	}
	return ""
}

func xmlDescription(n *xmlNode) string {
	desc := xmlChild(n, "description")
	if desc == nil {
		return ""
	}
	// Lang-string children win over bare chardata.
	for i := range desc.Children {
		if text := strings.TrimSpace(desc.Children[i].Content); text != "" {
			return text
		}
	}
	return strings.TrimSpace(desc.Content)
}

func xmlChild(n *xmlNode, local string) *xmlNode {
	for i := range n.Children {
		if strings.EqualFold(n.Children[i].XMLName.Local, local) {
			return &n.Children[i]
		}
	}
	return nil
}

func xmlChildText(n *xmlNode, local string) string {
	child := xmlChild(n, local)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Content)
}
