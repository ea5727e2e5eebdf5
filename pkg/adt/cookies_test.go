package adt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseCookieString(t *testing.T) {
	got := ParseCookieString("MYSAPSSO2=abc==; SAP_SESSIONID_A4H_001=xyz ; broken; =nameless; sap-usercontext=sap-client=001")

	want := map[string]string{
		"MYSAPSSO2":             "abc==",
		"SAP_SESSIONID_A4H_001": "xyz",
		"sap-usercontext":       "sap-client=001",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d cookies, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("cookie %s = %q, want %q", k, got[k], v)
		}
	}
}

func TestLoadCookiesFromFile(t *testing.T) {
	content := "# Netscape HTTP Cookie File\n" +
		"\n" +
		"sap.example.com\tFALSE\t/\tTRUE\t0\tMYSAPSSO2\tsso-token\n" +
		"#HttpOnly_sap.example.com\tFALSE\t/\tTRUE\t0\tSAP_SESSIONID_A4H_001\tsession\n" +
		"malformed line\n"

	path := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cookies, err := LoadCookiesFromFile(path)
	if err != nil {
		t.Fatalf("LoadCookiesFromFile failed: %v", err)
	}
	if len(cookies) != 2 {
		t.Fatalf("got %d cookies: %v", len(cookies), cookies)
	}
	if cookies["MYSAPSSO2"] != "sso-token" || cookies["SAP_SESSIONID_A4H_001"] != "session" {
		t.Errorf("cookies = %v", cookies)
	}
}

func TestLoadCookiesFromFile_Missing(t *testing.T) {
	if _, err := LoadCookiesFromFile(filepath.Join(t.TempDir(), "none.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
