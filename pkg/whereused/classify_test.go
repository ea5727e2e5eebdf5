package whereused

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_Classify(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name string
		kind ResponseKind
		body string
		want OutcomeStatus
	}{
		{"usage references", KindXML, usageHitXML, StatusHit},
		{"empty container", KindXML, usageEmptyXML, StatusEmpty},
		{"empty body", KindXML, "", StatusEmpty},
		{"whitespace body", KindXML, "  \n\t ", StatusEmpty},
		{"short body with marker", KindXML, "<referencedObject/>", StatusEmpty},
		{"search result", KindXML, `<adtcore:objectReferences xmlns:adtcore="http://www.sap.com/adt/core"><adtcore:objectReference adtcore:name="ZPROG"/></adtcore:objectReferences>`, StatusHit},
		{"ambiguous xml", KindXML, `<?xml version="1.0"?><asx:abap xmlns:asx="http://www.sap.com/abapxml"><asx:values/></asx:abap>`, StatusEmpty},
		{"html error page", KindXML, `<html><body><h1>Logon failed</h1><p>Please try again later</p></body></html>`, StatusEmpty},
		{"json references", KindJSON, `{"references": [ {"name": "ZCL_CALLER", "type": "CLAS/OC"} ]}`, StatusHit},
		{"json empty list", KindJSON, `{"references": [], "count": 0, "message": "nothing found"}`, StatusEmpty},
		{"plain usage", KindPlain, "Object SBOOK is used in program SAPBC_DEMO (line 12)", StatusHit},
		{"plain without marker", KindPlain, "No entries were found for the selection criteria", StatusEmpty},
		{"xml markers do not apply to json", KindJSON, usageHitXML, StatusEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.kind, []byte(tt.body)))
		})
	}
}

func TestLoadMarkers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "markers.yaml")
	content := `minBodyLength: 5
plain:
  - '(?i)\bcalled\s+from\b'
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	m, err := LoadMarkers(path)
	require.NoError(t, err)
	assert.Equal(t, 5, m.MinBodyLength)
	assert.Equal(t, []string{`(?i)\bcalled\s+from\b`}, m.Plain)
	assert.Equal(t, DefaultMarkers().XML, m.XML, "sections missing from the file keep defaults")

	c, err := m.Compile()
	require.NoError(t, err)
	assert.Equal(t, StatusHit, c.Classify(KindPlain, []byte("FORM x called from ZPROG")))
	assert.Equal(t, StatusEmpty, c.Classify(KindPlain, []byte("SBOOK is used in ZPROG")))
}

func TestLoadMarkers_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadMarkers(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("xml: [unterminated"), 0o600))
	_, err = LoadMarkers(bad)
	assert.Error(t, err)

	negative := filepath.Join(dir, "negative.yaml")
	require.NoError(t, os.WriteFile(negative, []byte("minBodyLength: -1\n"), 0o600))
	_, err = LoadMarkers(negative)
	assert.ErrorContains(t, err, "minBodyLength")
}

func TestMarkers_CompileInvalidPattern(t *testing.T) {
	m := DefaultMarkers()
	m.JSON = append(m.JSON, `(unclosed`)
	m.Plain = append(m.Plain, `[bad`)

	_, err := m.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(unclosed")
	assert.Contains(t, err.Error(), "[bad")
}
