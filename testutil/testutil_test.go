package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func TestRequestBuilder(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotCT string
	var gotBody map[string]any
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotAuth, gotCT = r.Header.Get("Authorization"), r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Test", "yes")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	w := NewRequest().
		POST("/login").
		WithAuth("token").
		WithJSON(map[string]string{"user": "a"}).
		Serve(h)

	AssertStatus(t, w, http.StatusOK)
	AssertMessage(t, w, "ok")
	AssertHeader(t, w, "X-Test", "yes")

	if gotMethod != "POST" || gotPath != "/login" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotAuth != "token" || gotCT != "application/json" {
		t.Errorf("headers: Authorization=%q Content-Type=%q", gotAuth, gotCT)
	}
	if gotBody["user"] != "a" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestRequestBuilder_Defaults(t *testing.T) {
	req, w := NewRequest().WithAuth("x").WithAuth("").Method("delete", "/x").Build()
	if req.Method != "DELETE" || req.URL.Path != "/x" {
		t.Errorf("request = %s %s", req.Method, req.URL.Path)
	}
	if req.Header.Get("Authorization") != "" {
		t.Error("WithAuth(\"\") should clear the header")
	}
	if w == nil {
		t.Error("Build() returned nil recorder")
	}
}
