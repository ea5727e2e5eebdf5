package adt

import (
	"testing"
)

const usageReferencesResponse = `<?xml version="1.0" encoding="utf-8"?>
<usageReferences:usageReferenceResult xmlns:usageReferences="http://www.sap.com/adt/ris/usageReferences" numberOfResults="3">
  <usageReferences:referencedObjects>
    <usageReferences:referencedObject uri="/sap/bc/adt/programs/programs/sapbc_demo" isResult="true" usageInformation="gradeDirect">
      <usageReferences:adtObject adtcore:name="SAPBC_DEMO" adtcore:type="PROG/P" adtcore:responsible="SAP" adtcore:description="Booking demo" xmlns:adtcore="http://www.sap.com/adt/core">
        <adtcore:packageRef adtcore:name="SAPBC"/>
      </usageReferences:adtObject>
    </usageReferences:referencedObject>
    <usageReferences:referencedObject uri="/sap/bc/adt/functions/groups/zfg/fmodules/z_book" isResult="true">
      <usageReferences:adtObject adtcore:name="Z_BOOK" xmlns:adtcore="http://www.sap.com/adt/core"/>
    </usageReferences:referencedObject>
    <usageReferences:referencedObject uri="/sap/bc/adt/packages/sapbc" isResult="false">
      <usageReferences:adtObject adtcore:name="SAPBC" adtcore:type="DEVC/K" xmlns:adtcore="http://www.sap.com/adt/core"/>
    </usageReferences:referencedObject>
  </usageReferences:referencedObjects>
</usageReferences:usageReferenceResult>`

func TestParseUsageReferences(t *testing.T) {
	refs, err := ParseUsageReferences([]byte(usageReferencesResponse))
	if err != nil {
		t.Fatalf("ParseUsageReferences failed: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("got %d references, want 3", len(refs))
	}

	first := refs[0]
	if first.Name != "SAPBC_DEMO" || first.Type != "PROG/P" || !first.IsResult {
		t.Errorf("first = %+v", first)
	}
	if first.PackageName != "SAPBC" || first.Responsible != "SAP" || first.Description != "Booking demo" {
		t.Errorf("first details = %+v", first)
	}
	if first.UsageInformation != "gradeDirect" {
		t.Errorf("UsageInformation = %q", first.UsageInformation)
	}

	if refs[1].Type != "FUGR/FF" {
		t.Errorf("type from URI = %q, want FUGR/FF", refs[1].Type)
	}
	if refs[2].IsResult {
		t.Error("package entry should not be a result")
	}
}

func TestParseUsageReferences_Empty(t *testing.T) {
	refs, err := ParseUsageReferences([]byte(`<usageReferences:usageReferenceResult xmlns:usageReferences="http://www.sap.com/adt/ris/usageReferences"><usageReferences:referencedObjects/></usageReferences:usageReferenceResult>`))
	if err != nil {
		t.Fatalf("ParseUsageReferences failed: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("got %d references, want 0", len(refs))
	}

	if _, err := ParseUsageReferences([]byte("not xml <")); err == nil {
		t.Error("expected parse error")
	}
}

func TestExtractTypeFromURI(t *testing.T) {
	tests := map[string]string{
		"/sap/bc/adt/oo/classes/zcl_a":                     "CLAS/OC",
		"/sap/bc/adt/oo/interfaces/zif_a":                  "INTF/OI",
		"/sap/bc/adt/programs/programs/zprog":              "PROG/P",
		"/sap/bc/adt/programs/includes/zinc":               "PROG/I",
		"/sap/bc/adt/functions/groups/zfg/fmodules/z_fm":   "FUGR/FF",
		"/sap/bc/adt/functions/groups/zfg":                 "FUGR/F",
		"/sap/bc/adt/ddic/tables/sbook":                    "TABL/DT",
		"/sap/bc/adt/ddic/structures/bapiret2":             "TABL/DS",
		"/sap/bc/adt/ddic/ddl/sources/zi_booking":          "DDLS/DF",
		"/sap/bc/adt/vit/wb/object_type/trant/object_name": "",
	}
	for uri, want := range tests {
		if got := extractTypeFromURI(uri); got != want {
			t.Errorf("extractTypeFromURI(%q) = %q, want %q", uri, got, want)
		}
	}
}
