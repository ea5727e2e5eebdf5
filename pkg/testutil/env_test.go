package testutil

import (
	"os"
	"testing"
)

func TestSAPCredentials_Defaults(t *testing.T) {
	t.Setenv("SAP_URL", "https://sap.example.com:44300")
	t.Setenv("SAP_USER", "developer")
	t.Setenv("SAP_PASSWORD", "secret")
	t.Setenv("SAP_CLIENT", "")
	t.Setenv("SAP_LANGUAGE", "")
	t.Setenv("SAP_INSECURE", "true")

	c := SAPCredentials(t)
	if c.Client != "001" || c.Language != "EN" {
		t.Errorf("defaults = %s/%s", c.Client, c.Language)
	}
	if !c.Insecure {
		t.Error("Insecure should be true")
	}
	if c.URL != os.Getenv("SAP_URL") {
		t.Errorf("URL = %s", c.URL)
	}
}
