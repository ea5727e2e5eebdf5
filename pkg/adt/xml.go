package adt

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// usageReferenceRequestBody is the payload ADT expects on usageReferences.
const usageReferenceRequestBody = `<?xml version="1.0" encoding="ASCII"?>
<usagereferences:usageReferenceRequest xmlns:usagereferences="http://www.sap.com/adt/ris/usageReferences">
  <usagereferences:affectedObjects/>
</usagereferences:usageReferenceRequest>`

// UsageReferenceRequestBody returns the XML body for a usage-references query.
func UsageReferenceRequestBody() []byte {
	return []byte(usageReferenceRequestBody)
}

// StripXMLNamespaces removes specified namespace prefixes from XML for easier parsing.
// Usage: xml.Unmarshal([]byte(StripXMLNamespaces(data, "adtcore:")), &result)
func StripXMLNamespaces(data string, prefixes ...string) string {
	for _, prefix := range prefixes {
		data = strings.ReplaceAll(data, prefix, "")
	}
	return data
}

// SearchResult represents a single search result.
type SearchResult struct {
	URI            string `xml:"uri,attr" json:"uri"`
	Type           string `xml:"type,attr" json:"type"`
	Name           string `xml:"name,attr" json:"name"`
	PackageName    string `xml:"packageName,attr,omitempty" json:"packageName,omitempty"`
	Description    string `xml:"description,attr,omitempty" json:"description,omitempty"`
	ResponsiblePro string `xml:"responsiblePro,attr,omitempty" json:"responsible,omitempty"`
}

// SearchResults wraps search results from the ADT API.
type SearchResults struct {
	XMLName xml.Name       `xml:"objectReferences"`
	Results []SearchResult `xml:"objectReference"`
}

// ParseSearchResults parses XML search results.
func ParseSearchResults(data []byte) ([]SearchResult, error) {
	var results SearchResults
	if err := xml.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}
	return results.Results, nil
}

// PackageContent represents package contents response.
type PackageContent struct {
	Name        string          `json:"name"`
	SubPackages []string        `json:"subPackages,omitempty"`
	Objects     []PackageObject `json:"objects,omitempty"`
}

// PackageObject represents an object within a package.
type PackageObject struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	URI         string `json:"uri,omitempty"`
	Description string `json:"description,omitempty"`
}

// parsePackageNodeStructure parses the nodestructure XML response into PackageContent.
func parsePackageNodeStructure(data []byte, packageName string) (*PackageContent, error) {
	type nodeData struct {
		TreeContent struct {
			Nodes []struct {
				ObjectType string `xml:"OBJECT_TYPE"`
				ObjectName string `xml:"OBJECT_NAME"`
				ObjectURI  string `xml:"OBJECT_URI"`
				Desc       string `xml:"DESCRIPTION"`
			} `xml:"SEU_ADT_REPOSITORY_OBJ_NODE"`
		} `xml:"TREE_CONTENT"`
	}
	type abapValues struct {
		Data nodeData `xml:"DATA"`
	}
	type abapResponse struct {
		Values abapValues `xml:"values"`
	}

	var resp abapResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing nodestructure: %w", err)
	}

	pkg := &PackageContent{
		Name:        packageName,
		Objects:     []PackageObject{},
		SubPackages: []string{},
	}

	for _, node := range resp.Values.Data.TreeContent.Nodes {
		if node.ObjectName == "" {
			continue
		}
		if node.ObjectType == "DEVC/K" {
			pkg.SubPackages = append(pkg.SubPackages, node.ObjectName)
		} else {
			pkg.Objects = append(pkg.Objects, PackageObject{
				Type:        node.ObjectType,
				Name:        node.ObjectName,
				URI:         node.ObjectURI,
				Description: node.Desc,
			})
		}
	}

	return pkg, nil
}

// TableContentsResult represents the result of a table contents query.
type TableContentsResult struct {
	Columns []TableColumn    `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// TableColumn represents a column in table contents.
type TableColumn struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Length      int    `json:"length,omitempty"`
	IsKey       bool   `json:"isKey,omitempty"`
}

// parseTableContents parses the data preview XML response.
// Data comes column-major; rows are rebuilt by index.
func parseTableContents(data []byte) (*TableContentsResult, error) {
	type tableData struct {
		Columns []struct {
			Metadata struct {
				Name        string `xml:"name,attr"`
				Type        string `xml:"type,attr"`
				Description string `xml:"description,attr"`
				Length      int    `xml:"length,attr"`
				IsKey       bool   `xml:"keyAttribute,attr"`
			} `xml:"metadata"`
			DataSet struct {
				Data []string `xml:"data"`
			} `xml:"dataSet"`
		} `xml:"columns"`
	}

	xmlStr := StripXMLNamespaces(string(data), "dataPreview:")

	var td tableData
	if err := xml.Unmarshal([]byte(xmlStr), &td); err != nil {
		return nil, fmt.Errorf("parsing table data: %w", err)
	}

	result := &TableContentsResult{
		Columns: make([]TableColumn, len(td.Columns)),
		Rows:    []map[string]any{},
	}

	maxRows := 0
	for i, col := range td.Columns {
		result.Columns[i] = TableColumn{
			Name:        col.Metadata.Name,
			Type:        col.Metadata.Type,
			Description: col.Metadata.Description,
			Length:      col.Metadata.Length,
			IsKey:       col.Metadata.IsKey,
		}
		if len(col.DataSet.Data) > maxRows {
			maxRows = len(col.DataSet.Data)
		}
	}

	for rowIdx := 0; rowIdx < maxRows; rowIdx++ {
		row := make(map[string]any)
		for _, col := range td.Columns {
			if rowIdx < len(col.DataSet.Data) {
				row[col.Metadata.Name] = col.DataSet.Data[rowIdx]
			}
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}
