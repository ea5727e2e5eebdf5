package adt

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// UsageReference represents one object that uses the queried object.
type UsageReference struct {
	URI              string `json:"uri"`
	ObjectIdentifier string `json:"objectIdentifier,omitempty"`
	ParentURI        string `json:"parentUri,omitempty"`
	IsResult         bool   `json:"isResult"`
	UsageInformation string `json:"usageInformation,omitempty"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Description      string `json:"description,omitempty"`
	Responsible      string `json:"responsible,omitempty"`
	PackageName      string `json:"packageName,omitempty"`
}

// ParseUsageReferences parses a usageReferenceResult document.
func ParseUsageReferences(data []byte) ([]UsageReference, error) {
	xmlStr := StripXMLNamespaces(string(data), "usageReferences:", "adtcore:")

	type packageRef struct {
		Name string `xml:"name,attr"`
	}
	type adtObject struct {
		Type        string     `xml:"type,attr"`
		Name        string     `xml:"name,attr"`
		Responsible string     `xml:"responsible,attr"`
		Description string     `xml:"description,attr"`
		PackageRef  packageRef `xml:"packageRef"`
	}
	type referencedObject struct {
		URI              string    `xml:"uri,attr"`
		ObjectIdentifier string    `xml:"objectIdentifier,attr"`
		ParentURI        string    `xml:"parentUri,attr"`
		IsResult         bool      `xml:"isResult,attr"`
		UsageInformation string    `xml:"usageInformation,attr"`
		AdtObject        adtObject `xml:"adtObject"`
	}
	type response struct {
		Objects []referencedObject `xml:"referencedObjects>referencedObject"`
	}

	var resp response
	if err := xml.Unmarshal([]byte(xmlStr), &resp); err != nil {
		return nil, fmt.Errorf("parsing usage references: %w", err)
	}

	results := make([]UsageReference, 0, len(resp.Objects))
	for _, obj := range resp.Objects {
		ref := UsageReference{
			URI:              obj.URI,
			ObjectIdentifier: obj.ObjectIdentifier,
			ParentURI:        obj.ParentURI,
			IsResult:         obj.IsResult,
			UsageInformation: obj.UsageInformation,
			Name:             obj.AdtObject.Name,
			Type:             obj.AdtObject.Type,
			Description:      obj.AdtObject.Description,
			Responsible:      obj.AdtObject.Responsible,
			PackageName:      obj.AdtObject.PackageRef.Name,
		}
		if ref.Type == "" && ref.URI != "" {
			ref.Type = extractTypeFromURI(ref.URI)
		}
		results = append(results, ref)
	}

	return results, nil
}

// uriTypePatterns maps ADT URI fragments to object types, checked in order.
var uriTypePatterns = []struct {
	fragment string
	objType  string
}{
	{"/oo/classes/", "CLAS/OC"},
	{"/oo/interfaces/", "INTF/OI"},
	{"/programs/programs/", "PROG/P"},
	{"/programs/includes/", "PROG/I"},
	{"/fmodules/", "FUGR/FF"},
	{"/functions/groups/", "FUGR/F"},
	{"/ddic/tables/", "TABL/DT"},
	{"/ddic/structures/", "TABL/DS"},
	{"/ddic/ddl/sources/", "DDLS/DF"},
}

// extractTypeFromURI derives the object type from an ADT URI when the
// response omits it.
func extractTypeFromURI(uri string) string {
	for _, p := range uriTypePatterns {
		if strings.Contains(uri, p.fragment) {
			return p.objType
		}
	}
	return ""
}
